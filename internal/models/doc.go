// Package models defines domain entities and persistence interfaces for albumsync.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): values decoded from the remote photo service
//   - [Album] : A named remote album; its title is the synchronization key
//   - [Asset] : An uploaded photo; its description carries the content hash marker
//   - [Permissions] : Visibility and interaction flags applied to an asset
//   - [UserInfo], [UploadStatus] : Account details and upload quota
//   - [UploadRequest] : Everything needed to upload one local file
//
// 2. Persistent Entities: Database-backed journal records
//   - [Run] : One invocation of upload, perms or fix with aggregate counts
//   - [RunItem] : The outcome of a single file, album or asset within a run
//
// The journal is an audit trail only. Synchronization state lives on the remote service.
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
