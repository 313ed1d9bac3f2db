// Package services defines the [AlbumService] interface for the remote photo-album service and implements it over REST.
//
// # AlbumService Interface
//
// The sync engine only depends on this abstraction, so tests substitute an in-memory fake.
//
// # PhotoService Implementation
//
// [PhotoService] is built on an imroc/req client:
//   - JSON bodies are encoded and decoded with goccy/go-json
//   - a bearer token comes from an [oauth2.TokenSource] on every request
//   - a [rate.Limiter] paces requests to stay under the service quota
//   - connect and total timeouts come from configuration; retries are disabled
//
// Uploads are multipart: the "asset" part carries the file, form fields carry title, tags, description and visibility.
//
// # Error Handling
//
// Error responses decode into [APIError], which unwraps to [shared.ErrRemoteOperation].
// A 404 on album endpoints additionally wraps [shared.ErrAlbumNotFound]; on asset endpoints [shared.ErrAssetNotFound].
//
// # API Mappings
//
// Wire payloads are private types converted to models.Album, models.Asset, models.UserInfo and models.UploadStatus
// before leaving the package, so callers never see untyped JSON.
package services
