package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/albumsync/internal/formatter"
	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/repositories"
	"github.com/desertthunder/albumsync/internal/shared"
)

// HistoryList lists journaled runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	defer r.Close()

	runs, err := repositories.NewRunRepository(db).List(map[string]any{
		"command": cmd.String("command"),
		"status":  cmd.String("status"),
		"limit":   cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	return r.writeBytes(formatter.RunsToText(runs))
}

// HistoryShow renders one run and its items, to stdout or to a report file.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	defer r.Close()

	run, err := r.findRun(db, cmd.StringArg("run"))
	if err != nil {
		return err
	}

	items, err := repositories.NewRunItemRepository(db).ListByRun(run.ID(), cmd.String("status"))
	if err != nil {
		return err
	}

	if cmd.IsSet("output") {
		path, err := formatter.WriteRunReport(run, items, cmd.String("output"))
		if err != nil {
			return err
		}
		r.logger.Info("report written", "path", path, "items", len(items))
		return r.writePlain("Report written to %s\n", path)
	}

	data, err := formatter.RenderRun(run, items, cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}
	return r.writeBytes(data)
}

// HistoryDelete removes a run from the history.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	defer r.Close()

	run, err := r.findRun(db, cmd.StringArg("run"))
	if err != nil {
		return err
	}

	if err := repositories.NewRunRepository(db).Delete(run.ID()); err != nil {
		return err
	}
	r.logger.Info("run deleted", "id", run.ID(), "sequence", run.Sequence())
	return r.writePlain("Deleted run #%d\n", run.Sequence())
}

// findRun resolves a run by sequence number or ID.
func (r *Runner) findRun(db *sql.DB, ref string) (*models.Run, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: run", shared.ErrMissingArgument)
	}

	runs := repositories.NewRunRepository(db)
	if seq, err := strconv.Atoi(ref); err == nil {
		return runs.GetBySequence(seq)
	}
	return runs.Get(ref)
}
