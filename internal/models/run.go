package models

import (
	"fmt"
	"time"
)

// Run commands
const (
	CommandUpload = "upload"
	CommandPerms  = "perms"
	CommandFix    = "fix"
)

// Run statuses
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunPartial   = "completed_with_errors"
	RunFailed    = "failed"
)

// Run is one journaled invocation of upload, perms or fix.
type Run struct {
	id             string
	sequence       int
	command        string
	root           string
	path           string
	status         string
	itemsSucceeded int
	itemsSkipped   int
	itemsFailed    int
	directories    int
	errorMessage   string
	startedAt      time.Time
	completedAt    *time.Time
	createdAt      time.Time
	updatedAt      time.Time
	deletedAt      *time.Time
}

// NewRun creates a running [Run] for command over path below root.
func NewRun(sequence int, command, root, path string) *Run {
	now := time.Now()
	return &Run{
		sequence:  sequence,
		command:   command,
		root:      root,
		path:      path,
		status:    RunRunning,
		startedAt: now,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *Run) ID() string { return r.id }
func (r *Run) Sequence() int { return r.sequence }
func (r *Run) Command() string { return r.command }
func (r *Run) Root() string { return r.root }
func (r *Run) Path() string { return r.path }
func (r *Run) Status() string { return r.status }
func (r *Run) ItemsSucceeded() int { return r.itemsSucceeded }
func (r *Run) ItemsSkipped() int { return r.itemsSkipped }
func (r *Run) ItemsFailed() int { return r.itemsFailed }
func (r *Run) Directories() int { return r.directories }
func (r *Run) ErrorMessage() string { return r.errorMessage }
func (r *Run) StartedAt() time.Time { return r.startedAt }
func (r *Run) CompletedAt() *time.Time { return r.completedAt }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time { return r.deletedAt }

func (r *Run) SetID(id string) { r.id = id }
func (r *Run) SetSequence(seq int) { r.sequence = seq }
func (r *Run) SetStatus(status string) { r.status = status }
func (r *Run) SetErrorMessage(msg string) { r.errorMessage = msg }
func (r *Run) SetStartedAt(t time.Time) { r.startedAt = t }
func (r *Run) SetCompletedAt(t *time.Time) { r.completedAt = t }
func (r *Run) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *Run) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *Run) SetDeletedAt(t *time.Time) { r.deletedAt = t }
func (r *Run) SetDirectories(n int) { r.directories = n }

// SetCounts records the item tallies of a run summary.
func (r *Run) SetCounts(succeeded, skipped, failed int) {
	r.itemsSucceeded = succeeded
	r.itemsSkipped = skipped
	r.itemsFailed = failed
}

// Complete marks the run finished, deriving its status from the failure count and err.
func (r *Run) Complete(err error) {
	now := time.Now()
	r.completedAt = &now
	switch {
	case err != nil:
		r.status = RunFailed
		r.errorMessage = err.Error()
	case r.itemsFailed > 0:
		r.status = RunPartial
	default:
		r.status = RunCompleted
	}
}

// Duration is the elapsed time of a completed run, or zero while running.
func (r *Run) Duration() time.Duration {
	if r.completedAt == nil {
		return 0
	}
	return r.completedAt.Sub(r.startedAt)
}

// Validate checks that the run names a known command and status.
func (r *Run) Validate() error {
	switch r.command {
	case CommandUpload, CommandPerms, CommandFix:
	default:
		return fmt.Errorf("invalid command: %q", r.command)
	}

	switch r.status {
	case RunRunning, RunCompleted, RunPartial, RunFailed:
	default:
		return fmt.Errorf("invalid status: %q", r.status)
	}

	if r.path == "" {
		return fmt.Errorf("path is required")
	}

	if r.itemsSucceeded < 0 || r.itemsSkipped < 0 || r.itemsFailed < 0 {
		return fmt.Errorf("item counts cannot be negative")
	}

	return nil
}

// RunItem is the journaled outcome of one engine step.
type RunItem struct {
	id           string
	runID        string
	position     int
	kind         string
	status       string
	path         string
	album        string
	assetID      string
	detail       string
	errorMessage string
	createdAt    time.Time
}

// NewRunItem creates a [RunItem] at position within the run identified by runID.
func NewRunItem(runID string, position int, kind, status, path, album string) *RunItem {
	return &RunItem{
		runID:     runID,
		position:  position,
		kind:      kind,
		status:    status,
		path:      path,
		album:     album,
		createdAt: time.Now(),
	}
}

func (i *RunItem) ID() string { return i.id }
func (i *RunItem) RunID() string { return i.runID }
func (i *RunItem) Position() int { return i.position }
func (i *RunItem) Kind() string { return i.kind }
func (i *RunItem) Status() string { return i.status }
func (i *RunItem) Path() string { return i.path }
func (i *RunItem) Album() string { return i.album }
func (i *RunItem) AssetID() string { return i.assetID }
func (i *RunItem) Detail() string { return i.detail }
func (i *RunItem) ErrorMessage() string { return i.errorMessage }
func (i *RunItem) CreatedAt() time.Time { return i.createdAt }

// UpdatedAt equals CreatedAt; items are immutable once recorded.
func (i *RunItem) UpdatedAt() time.Time { return i.createdAt }

func (i *RunItem) SetID(id string) { i.id = id }
func (i *RunItem) SetAssetID(id string) { i.assetID = id }
func (i *RunItem) SetDetail(detail string) { i.detail = detail }
func (i *RunItem) SetErrorMessage(msg string) { i.errorMessage = msg }
func (i *RunItem) SetCreatedAt(t time.Time) { i.createdAt = t }

// Validate checks that the item belongs to a run and has a kind and status.
func (i *RunItem) Validate() error {
	if i.runID == "" {
		return fmt.Errorf("run id is required")
	}
	if i.kind == "" {
		return fmt.Errorf("kind is required")
	}
	if i.status == "" {
		return fmt.Errorf("status is required")
	}
	if i.position < 0 {
		return fmt.Errorf("position cannot be negative")
	}
	return nil
}
