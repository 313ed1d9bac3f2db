package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/albumsync/internal/formatter"
	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/shared"
	"github.com/desertthunder/albumsync/internal/tasks"
)

// syncOperation runs one engine operation against a prepared engine and cache.
type syncOperation func(ctx context.Context, engine *tasks.AlbumEngine, sc *tasks.SyncContext, path string, progress chan<- tasks.ProgressUpdate) (*tasks.RunSummary, error)

// Upload mirrors a folder onto remote albums.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	public := r.config.Library.Public && !cmd.Bool("private")

	return r.runSync(ctx, cmd, cmd.StringArg("folder"),
		func(ctx context.Context, engine *tasks.AlbumEngine, sc *tasks.SyncContext, path string, progress chan<- tasks.ProgressUpdate) (*tasks.RunSummary, error) {
			return engine.Upload(ctx, sc, path, public, progress)
		})
}

// Perms applies a permission mask to every asset in the folder's albums.
func (r *Runner) Perms(ctx context.Context, cmd *cli.Command) error {
	mask := cmd.StringArg("mask")
	if mask == "" {
		return fmt.Errorf("%w: mask", shared.ErrMissingArgument)
	}

	perms, err := models.ParsePermissions(mask)
	if err != nil {
		return err
	}
	recursive := !cmd.Bool("no-recursive")

	return r.runSync(ctx, cmd, cmd.StringArg("folder"),
		func(ctx context.Context, engine *tasks.AlbumEngine, sc *tasks.SyncContext, path string, progress chan<- tasks.ProgressUpdate) (*tasks.RunSummary, error) {
			return engine.SyncPermissions(ctx, sc, path, recursive, perms, progress)
		})
}

// Fix renames albums whose titles still carry numeric ordering prefixes.
func (r *Runner) Fix(ctx context.Context, cmd *cli.Command) error {
	return r.runSync(ctx, cmd, cmd.StringArg("folder"),
		func(ctx context.Context, engine *tasks.AlbumEngine, sc *tasks.SyncContext, path string, progress chan<- tasks.ProgressUpdate) (*tasks.RunSummary, error) {
			return engine.FixAlbumNames(ctx, sc, path, progress)
		})
}

// runSync validates the folder, wires an engine and renders the summary.
//
// A run with failed items returns an error so the process exits non-zero.
func (r *Runner) runSync(ctx context.Context, cmd *cli.Command, folder string, op syncOperation) error {
	path, root, err := r.resolveFolder(folder)
	if err != nil {
		return err
	}

	service, err := r.albumService()
	if err != nil {
		return err
	}
	if r.config.Credentials.UserID == "" {
		return fmt.Errorf("%w: %w: user_id", shared.ErrConfiguration, shared.ErrMissingCredentials)
	}

	recorder := r.recorder(cmd)
	defer r.Close()

	engine, err := tasks.NewAlbumEngine(tasks.EngineOptions{
		Service:    service,
		Filesystem: r.library(),
		Root:       root,
		Logger:     r.logger,
		Recorder:   recorder,
	})
	if err != nil {
		return err
	}

	useJSON := cmd.Bool("json")
	progressCh := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progressCh {
			if useJSON {
				continue
			}
			switch update.Phase {
			case tasks.ScanDirectory:
				r.writePlain("%s\n", update.Message)
			default:
				r.writePlain("  %s\n", update.Message)
			}
		}
	}()

	summary, runErr := op(ctx, engine, engine.NewSyncContext(r.config.Credentials.UserID), path, progressCh)
	close(progressCh)
	wg.Wait()

	if summary != nil {
		if useJSON {
			data, err := formatter.SummaryToJSON(summary)
			if err != nil {
				return err
			}
			if err := r.writeBytes(append(data, '\n')); err != nil {
				return err
			}
		} else {
			r.writePlain("\n")
			if err := r.writeBytes(formatter.SummaryToText(summary, cmd.Bool("verbose"))); err != nil {
				return err
			}
		}
	}

	if runErr != nil {
		return runErr
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d items failed", shared.ErrRemoteOperation, summary.Failed, len(summary.Items))
	}
	return nil
}
