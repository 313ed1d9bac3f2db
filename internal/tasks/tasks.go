package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/albumsync/internal/localfs"
	"github.com/desertthunder/albumsync/internal/services"
	"github.com/desertthunder/albumsync/internal/shared"
)

// ItemKind identifies what a single [ItemResult] describes.
type ItemKind string

const (
	KindUpload     ItemKind = "upload"
	KindAlbum      ItemKind = "album"
	KindPermission ItemKind = "permission"
	KindRename     ItemKind = "rename"
)

// ItemStatus is the outcome of a single step.
type ItemStatus string

const (
	StatusSucceeded ItemStatus = "succeeded"
	StatusSkipped   ItemStatus = "skipped"
	StatusFailed    ItemStatus = "failed"
)

// ItemResult represents the outcome of one file, album or asset operation.
type ItemResult struct {
	Kind    ItemKind
	Status  ItemStatus
	Path    string // Local path the item came from
	Album   string // Canonical album name
	AssetID string // Remote asset, when one exists
	Detail  string // Short human-readable note
	Err     error  // Cause of a failure
}

// RunSummary accumulates the item results of one engine invocation.
type RunSummary struct {
	RunID       string // Journal ID, empty when no [RunRecorder] is configured
	Command     string
	Root        string
	Path        string
	Items       []ItemResult
	Succeeded   int
	Skipped     int
	Failed      int
	Directories int // Directories listed during the walk
	StartedAt   time.Time
	CompletedAt time.Time
}

// Count returns the number of items of kind with status.
func (s *RunSummary) Count(kind ItemKind, status ItemStatus) int {
	n := 0
	for _, item := range s.Items {
		if item.Kind == kind && item.Status == status {
			n++
		}
	}
	return n
}

// Filter returns the items with status, in the order they were recorded.
func (s *RunSummary) Filter(status ItemStatus) []ItemResult {
	var out []ItemResult
	for _, item := range s.Items {
		if item.Status == status {
			out = append(out, item)
		}
	}
	return out
}

// Duration is the wall time between start and completion.
func (s *RunSummary) Duration() time.Duration {
	if s.CompletedAt.IsZero() {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}

func (s *RunSummary) add(item ItemResult) {
	s.Items = append(s.Items, item)
	switch item.Status {
	case StatusSucceeded:
		s.Succeeded++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}

// RunRecorder journals runs and their items.
//
// Recording is best effort: failures are logged and never change the outcome of a run.
type RunRecorder interface {
	StartRun(command, root, path string) (string, error)
	RecordItem(runID string, position int, item ItemResult) error
	FinishRun(runID string, summary *RunSummary, runErr error) error
}

// EngineOptions configures an [AlbumEngine].
type EngineOptions struct {
	Service    services.AlbumService
	Filesystem localfs.Filesystem
	Root       string
	Logger     *log.Logger
	Recorder   RunRecorder // optional
}

// AlbumEngine mirrors a local directory tree onto remote albums.
//
// Three operations share one traversal: [AlbumEngine.Upload], [AlbumEngine.SyncPermissions] and [AlbumEngine.FixAlbumNames].
// Each takes the [SyncContext] for the current run explicitly and is strictly sequential.
type AlbumEngine struct {
	service  services.AlbumService
	fs       localfs.Filesystem
	root     string
	logger   *log.Logger
	recorder RunRecorder
}

// NewAlbumEngine creates a new AlbumEngine with the provided collaborators.
func NewAlbumEngine(opts EngineOptions) (*AlbumEngine, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("%w: album service is required", shared.ErrConfiguration)
	}
	if opts.Filesystem == nil {
		return nil, fmt.Errorf("%w: filesystem is required", shared.ErrConfiguration)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &AlbumEngine{
		service:  opts.Service,
		fs:       opts.Filesystem,
		root:     opts.Root,
		logger:   opts.Logger,
		recorder: opts.Recorder,
	}, nil
}

// NewSyncContext creates an empty per-run cache bound to this engine's service.
func (e *AlbumEngine) NewSyncContext(userID string) *SyncContext {
	return NewSyncContext(e.service, userID)
}

// albumName derives the canonical album name of a directory below the engine root.
func (e *AlbumEngine) albumName(path string, strip bool) string {
	return shared.MapPath(path, e.root, strip)
}

// visitFunc handles one listed directory.
type visitFunc func(ctx context.Context, listing *localfs.Listing) error

// walk lists path, hands the listing to visit and then descends into subdirectories in sorted order.
//
// Listing failures and errors returned by visit stop the walk and propagate to the caller.
func (e *AlbumEngine) walk(ctx context.Context, path string, recursive bool, summary *RunSummary, visit visitFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	listing, err := e.fs.ListEntries(path)
	if err != nil {
		return err
	}
	summary.Directories++

	if err := visit(ctx, listing); err != nil {
		return err
	}

	if !recursive {
		return nil
	}

	for _, dir := range listing.Directories {
		if err := e.walk(ctx, dir, recursive, summary, visit); err != nil {
			return err
		}
	}
	return nil
}

// begin creates the summary for a run and opens its journal entry.
func (e *AlbumEngine) begin(command, path string) *RunSummary {
	summary := &RunSummary{
		Command:   command,
		Root:      e.root,
		Path:      path,
		StartedAt: time.Now(),
	}

	if e.recorder != nil {
		id, err := e.recorder.StartRun(command, e.root, path)
		if err != nil {
			e.logger.Warn("failed to journal run", "command", command, "error", err)
		} else {
			summary.RunID = id
		}
	}
	return summary
}

// record appends item to the summary, logs it and journals it.
func (e *AlbumEngine) record(summary *RunSummary, item ItemResult) {
	position := len(summary.Items)
	summary.add(item)

	kv := []any{"kind", item.Kind, "album", item.Album, "file", item.Path}
	if item.AssetID != "" {
		kv = append(kv, "asset_id", item.AssetID)
	}

	switch item.Status {
	case StatusFailed:
		e.logger.Error(item.Detail, append(kv, "error", item.Err)...)
	case StatusSkipped:
		e.logger.Debug(item.Detail, kv...)
	default:
		e.logger.Info(item.Detail, kv...)
	}

	if e.recorder != nil && summary.RunID != "" {
		if err := e.recorder.RecordItem(summary.RunID, position, item); err != nil {
			e.logger.Warn("failed to journal item", "run", summary.RunID, "error", err)
		}
	}
}

// finish stamps the summary and closes its journal entry.
func (e *AlbumEngine) finish(summary *RunSummary, runErr error) {
	summary.CompletedAt = time.Now()

	e.logger.Info("run finished",
		"command", summary.Command,
		"directories", summary.Directories,
		"succeeded", summary.Succeeded,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"duration", summary.Duration().Round(time.Millisecond),
	)

	if e.recorder != nil && summary.RunID != "" {
		if err := e.recorder.FinishRun(summary.RunID, summary, runErr); err != nil {
			e.logger.Warn("failed to journal run completion", "run", summary.RunID, "error", err)
		}
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
