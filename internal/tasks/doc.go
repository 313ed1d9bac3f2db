// Package tasks mirrors a local directory tree onto remote photo albums with real-time progress reporting.
//
// # Core Operations
//
// [AlbumEngine] exposes three operations that share one depth-first traversal:
//
//  1. [AlbumEngine.Upload] : Upload new files and keep albums in step with directories
//     - Derives each directory's album name from its path below the root
//     - Skips files whose content hash marker is already present in the album
//     - Creates the album from the first uploaded file, attaches the rest
//
//  2. [AlbumEngine.SyncPermissions] : Apply one visibility setting to every asset of a directory's album
//     - Directories without an album are visited but cost no remote calls
//
//  3. [AlbumEngine.FixAlbumNames] : Rename albums created before ordering prefixes were stripped
//     - "02 Vacation / 10 Beach" becomes "Vacation / Beach"
//
// Files and subdirectories are processed in lexicographic order. Work is strictly sequential.
//
// # Run State
//
// Remote state is cached for the length of one run in a [SyncContext] that callers create and pass in explicitly.
// Albums created, assets uploaded and albums renamed during the run update the cache so later directories see them.
//
// # Failures
//
// A failed upload, album creation or permission update is recorded as a failed item in the [RunSummary] and the
// run moves on. Failing to list a local directory or to fetch the album list ends the run with an error.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// Updates use select with default to prevent blocking.
//
// # Journal
//
// The optional [RunRecorder] interface persists each run and every item result as it happens
// (repositories.JournalAdapter). Journal errors are logged and never interrupt a run.
package tasks
