// Package repositories implements SQLite persistence for the run journal.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Runs support soft deletes via deleted_at timestamps and deleted runs are excluded from queries by default.
//
// Key Implementations:
//   - [RunRepository] : One row per upload, perms or fix invocation with status and item counts
//   - [RunItemRepository] : Append-only per-item outcomes of a run, ordered by position
//   - [JournalAdapter] : tasks.RunRecorder backed by the two repositories
//
// The journal is a record of what happened, never an input to sync decisions:
// whether a file is already uploaded is decided by the hash marker in the remote asset description.
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
