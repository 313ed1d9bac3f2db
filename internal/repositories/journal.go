package repositories

import (
	"fmt"

	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/tasks"
)

// JournalAdapter implements tasks.RunRecorder using RunRepository and RunItemRepository.
//
// Runs are written when they start, so an interrupted run stays visible in history with status "running".
type JournalAdapter struct {
	runs  *RunRepository
	items *RunItemRepository
}

// NewJournalAdapter creates a new JournalAdapter with the given repositories
func NewJournalAdapter(runs *RunRepository, items *RunItemRepository) *JournalAdapter {
	return &JournalAdapter{runs: runs, items: items}
}

// StartRun creates a running entry and returns its ID.
func (a *JournalAdapter) StartRun(command, root, path string) (string, error) {
	run := models.NewRun(0, command, root, path)
	if err := a.runs.Create(run); err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return run.ID(), nil
}

// RecordItem stores one item result at position.
func (a *JournalAdapter) RecordItem(runID string, position int, result tasks.ItemResult) error {
	item := models.NewRunItem(runID, position, string(result.Kind), string(result.Status), result.Path, result.Album)
	item.SetAssetID(result.AssetID)
	item.SetDetail(result.Detail)
	if result.Err != nil {
		item.SetErrorMessage(result.Err.Error())
	}
	return a.items.Create(item)
}

// FinishRun stores the final counts and derives the run status from failures and runErr.
func (a *JournalAdapter) FinishRun(runID string, summary *tasks.RunSummary, runErr error) error {
	run, err := a.runs.Get(runID)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	run.SetCounts(summary.Succeeded, summary.Skipped, summary.Failed)
	run.SetDirectories(summary.Directories)
	run.Complete(runErr)

	return a.runs.Update(run)
}

var _ tasks.RunRecorder = (*JournalAdapter)(nil)
