package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/shared"
)

const runItemColumns = `
	id, run_id, position, kind, status, path, album,
	asset_id, detail, error_message, created_at
`

// RunItemRepository stores the per-item outcomes of journaled runs.
//
// Items are append-only: they are written once and removed only with their run.
type RunItemRepository struct {
	db *sql.DB
}

// NewRunItemRepository creates a new RunItemRepository with the given database connection
func NewRunItemRepository(db *sql.DB) *RunItemRepository {
	return &RunItemRepository{db: db}
}

// Create inserts an item with a generated ID
func (r *RunItemRepository) Create(item *models.RunItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO run_items (
			id, run_id, position, kind, status, path, album,
			asset_id, detail, error_message, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		id,
		item.RunID(),
		item.Position(),
		item.Kind(),
		item.Status(),
		item.Path(),
		item.Album(),
		nullString(item.AssetID()),
		nullString(item.Detail()),
		nullString(item.ErrorMessage()),
		item.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run item: %w", err)
	}

	item.SetID(id)
	return nil
}

// ListByRun returns the items of runID in the order they were recorded.
//
// With status set, only items with that status are returned.
func (r *RunItemRepository) ListByRun(runID, status string) ([]*models.RunItem, error) {
	query := `SELECT ` + runItemColumns + ` FROM run_items WHERE run_id = ?`
	args := []any{runID}

	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY position ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run items: %w", err)
	}
	defer rows.Close()

	var items []*models.RunItem
	for rows.Next() {
		item, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// DeleteByRun permanently removes the items of runID and returns how many were removed.
func (r *RunItemRepository) DeleteByRun(runID string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM run_items WHERE run_id = ?`, runID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete run items: %w", err)
	}
	return result.RowsAffected()
}

func (r *RunItemRepository) scan(row scanner) (*models.RunItem, error) {
	var (
		id           string
		runID        string
		position     int
		kind         string
		status       string
		path         string
		album        string
		assetID      sql.NullString
		detail       sql.NullString
		errorMessage sql.NullString
		createdAt    time.Time
	)

	err := row.Scan(
		&id, &runID, &position, &kind, &status, &path, &album,
		&assetID, &detail, &errorMessage, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run item: %w", err)
	}

	item := models.NewRunItem(runID, position, kind, status, path, album)
	item.SetID(id)
	item.SetAssetID(assetID.String)
	item.SetDetail(detail.String)
	item.SetErrorMessage(errorMessage.String)
	item.SetCreatedAt(createdAt)

	return item, nil
}
