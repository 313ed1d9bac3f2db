// package formatter renders run summaries, journaled runs and remote album data as text, Markdown, CSV and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/tasks"
)

// Report formats accepted by [WriteRunReport]
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

// SummaryToText renders a run summary: counts, then failures. With verbose set every item is listed.
func SummaryToText(summary *tasks.RunSummary, verbose bool) []byte {
	var buf bytes.Buffer

	heading := fmt.Sprintf("%s %s", summary.Command, summary.Path)
	buf.WriteString(styles.Title(heading) + "\n")
	buf.WriteString(fmt.Sprintf("Directories: %d  Succeeded: %d  Skipped: %d  Failed: %d  Duration: %s\n",
		summary.Directories, summary.Succeeded, summary.Skipped, summary.Failed,
		summary.Duration().Round(time.Millisecond)))

	items := summary.Filter(tasks.StatusFailed)
	label := "Failures"
	if verbose {
		items = summary.Items
		label = "Items"
	}

	if len(items) > 0 {
		buf.WriteString("\n" + label + ":\n")
		for _, item := range items {
			buf.WriteString("  " + itemLine(string(item.Status), string(item.Kind), item.Path, item.Album, item.Detail, errString(item.Err)) + "\n")
		}
	}

	if summary.RunID != "" {
		buf.WriteString("\n" + styles.Help("journaled as "+summary.RunID) + "\n")
	}

	return buf.Bytes()
}

type itemJSON struct {
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	Path    string `json:"path"`
	Album   string `json:"album,omitempty"`
	AssetID string `json:"asset_id,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

type summaryJSON struct {
	RunID       string     `json:"run_id,omitempty"`
	Command     string     `json:"command"`
	Root        string     `json:"root"`
	Path        string     `json:"path"`
	Directories int        `json:"directories"`
	Succeeded   int        `json:"succeeded"`
	Skipped     int        `json:"skipped"`
	Failed      int        `json:"failed"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt time.Time  `json:"completed_at"`
	Items       []itemJSON `json:"items"`
}

// SummaryToJSON encodes a run summary with all of its items.
func SummaryToJSON(summary *tasks.RunSummary) ([]byte, error) {
	out := summaryJSON{
		RunID:       summary.RunID,
		Command:     summary.Command,
		Root:        summary.Root,
		Path:        summary.Path,
		Directories: summary.Directories,
		Succeeded:   summary.Succeeded,
		Skipped:     summary.Skipped,
		Failed:      summary.Failed,
		StartedAt:   summary.StartedAt,
		CompletedAt: summary.CompletedAt,
		Items:       make([]itemJSON, 0, len(summary.Items)),
	}
	for _, item := range summary.Items {
		out.Items = append(out.Items, itemJSON{
			Kind:    string(item.Kind),
			Status:  string(item.Status),
			Path:    item.Path,
			Album:   item.Album,
			AssetID: item.AssetID,
			Detail:  item.Detail,
			Error:   errString(item.Err),
		})
	}
	return MarshalJSON(out, true)
}

// RunsToText renders the history table, newest first.
func RunsToText(runs []*models.Run) []byte {
	if len(runs) == 0 {
		return []byte("No runs recorded.\n")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "COMMAND", "STATUS", "OK", "SKIP", "FAIL", "STARTED", "PATH")

	for _, run := range runs {
		t.Row(
			strconv.Itoa(run.Sequence()),
			run.Command(),
			run.Status(),
			strconv.Itoa(run.ItemsSucceeded()),
			strconv.Itoa(run.ItemsSkipped()),
			strconv.Itoa(run.ItemsFailed()),
			humanize.Time(run.StartedAt()),
			run.Path(),
		)
	}

	return []byte(t.String() + "\n")
}

// RunToText renders one journaled run and its items.
func RunToText(run *models.Run, items []*models.RunItem) []byte {
	var buf bytes.Buffer

	buf.WriteString(styles.Title(fmt.Sprintf("Run #%d: %s %s", run.Sequence(), run.Command(), run.Path())) + "\n")
	buf.WriteString(fmt.Sprintf("Status: %s\n", styles.Status(run.Status())))
	buf.WriteString(fmt.Sprintf("Started: %s\n", run.StartedAt().Format(time.RFC3339)))
	if run.CompletedAt() != nil {
		buf.WriteString(fmt.Sprintf("Duration: %s\n", run.Duration().Round(time.Millisecond)))
	}
	buf.WriteString(fmt.Sprintf("Directories: %d  Succeeded: %d  Skipped: %d  Failed: %d\n",
		run.Directories(), run.ItemsSucceeded(), run.ItemsSkipped(), run.ItemsFailed()))
	if run.ErrorMessage() != "" {
		buf.WriteString(fmt.Sprintf("Error: %s\n", run.ErrorMessage()))
	}

	if len(items) > 0 {
		buf.WriteString("\n")
		for _, item := range items {
			buf.WriteString(itemLine(item.Status(), item.Kind(), item.Path(), item.Album(), item.Detail(), item.ErrorMessage()) + "\n")
		}
	}

	return buf.Bytes()
}

// RunToMarkdown renders one journaled run as a Markdown report.
func RunToMarkdown(run *models.Run, items []*models.RunItem) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Run #%d: %s\n\n", run.Sequence(), run.Command()))
	buf.WriteString(fmt.Sprintf("**Path**: `%s`\n", run.Path()))
	buf.WriteString(fmt.Sprintf("**Status**: %s\n", run.Status()))
	buf.WriteString(fmt.Sprintf("**Started**: %s\n", run.StartedAt().Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("**Items**: %d succeeded, %d skipped, %d failed in %d directories\n",
		run.ItemsSucceeded(), run.ItemsSkipped(), run.ItemsFailed(), run.Directories()))
	if run.ErrorMessage() != "" {
		buf.WriteString(fmt.Sprintf("**Error**: %s\n", run.ErrorMessage()))
	}

	buf.WriteString("\n## Items\n\n")
	if len(items) == 0 {
		buf.WriteString("_No items recorded._\n")
		return buf.Bytes()
	}

	buf.WriteString("| # | Kind | Status | Album | Path | Detail |\n")
	buf.WriteString("|---|------|--------|-------|------|--------|\n")
	for _, item := range items {
		detail := item.Detail()
		if item.ErrorMessage() != "" {
			detail += ": " + item.ErrorMessage()
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			item.Position()+1, item.Kind(), item.Status(), mdEscape(item.Album()), mdEscape(item.Path()), mdEscape(detail)))
	}

	return buf.Bytes()
}

// RunToCSV converts run items to CSV with columns: Position, Kind, Status, Path, Album, AssetID, Detail, Error
func RunToCSV(items []*models.RunItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Kind", "Status", "Path", "Album", "AssetID", "Detail", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			strconv.Itoa(item.Position()),
			item.Kind(),
			item.Status(),
			item.Path(),
			item.Album(),
			item.AssetID(),
			item.Detail(),
			item.ErrorMessage(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

type runJSON struct {
	ID          string     `json:"id"`
	Sequence    int        `json:"sequence"`
	Command     string     `json:"command"`
	Root        string     `json:"root"`
	Path        string     `json:"path"`
	Status      string     `json:"status"`
	Succeeded   int        `json:"succeeded"`
	Skipped     int        `json:"skipped"`
	Failed      int        `json:"failed"`
	Directories int        `json:"directories"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Items       []itemJSON `json:"items"`
}

// RunToJSON encodes one journaled run and its items.
func RunToJSON(run *models.Run, items []*models.RunItem) ([]byte, error) {
	out := runJSON{
		ID:          run.ID(),
		Sequence:    run.Sequence(),
		Command:     run.Command(),
		Root:        run.Root(),
		Path:        run.Path(),
		Status:      run.Status(),
		Succeeded:   run.ItemsSucceeded(),
		Skipped:     run.ItemsSkipped(),
		Failed:      run.ItemsFailed(),
		Directories: run.Directories(),
		Error:       run.ErrorMessage(),
		StartedAt:   run.StartedAt(),
		CompletedAt: run.CompletedAt(),
		Items:       make([]itemJSON, 0, len(items)),
	}
	for _, item := range items {
		out.Items = append(out.Items, itemJSON{
			Kind:    item.Kind(),
			Status:  item.Status(),
			Path:    item.Path(),
			Album:   item.Album(),
			AssetID: item.AssetID(),
			Detail:  item.Detail(),
			Error:   item.ErrorMessage(),
		})
	}
	return MarshalJSON(out, true)
}

// FormatFromPath picks a report format from a file extension, defaulting to text.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

// RenderRun renders a run in format.
func RenderRun(run *models.Run, items []*models.RunItem, format string) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return RunToMarkdown(run, items), nil
	case FormatCSV:
		return RunToCSV(items)
	case FormatJSON:
		return RunToJSON(run, items)
	case FormatText, "":
		return RunToText(run, items), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// WriteRunReport writes a run report, choosing the format from the file extension.
//
// Defaults to run_{sequence}.md in the working directory.
func WriteRunReport(run *models.Run, items []*models.RunItem, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("run_%d.md", run.Sequence())
	}

	data, err := RenderRun(run, items, FormatFromPath(path))
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

// AlbumsToText renders the album list sorted by title.
func AlbumsToText(albums []models.Album) []byte {
	if len(albums) == 0 {
		return []byte("No albums.\n")
	}

	sorted := slices.Clone(albums)
	slices.SortFunc(sorted, func(a, b models.Album) int { return strings.Compare(a.Title, b.Title) })

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "ASSETS", "TITLE")
	for _, album := range sorted {
		t.Row(album.ID, strconv.Itoa(album.AssetCount), album.Title)
	}

	return []byte(t.String() + "\n")
}

// AlbumToText renders an album with its assets.
func AlbumToText(album models.Album, assets []models.Asset) []byte {
	var buf bytes.Buffer

	buf.WriteString(styles.Title(album.Title) + "\n")
	buf.WriteString(fmt.Sprintf("ID: %s\n", album.ID))
	if album.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", album.Description))
	}
	if album.PrimaryAssetID != "" {
		buf.WriteString(fmt.Sprintf("Primary asset: %s\n", album.PrimaryAssetID))
	}
	buf.WriteString(fmt.Sprintf("Assets: %d\n", len(assets)))

	for i, asset := range assets {
		buf.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, asset.ID, asset.Title))
	}

	return buf.Bytes()
}

// AssetToText renders a single asset.
func AssetToText(asset *models.Asset) []byte {
	var buf bytes.Buffer

	buf.WriteString(styles.Title(asset.Title) + "\n")
	buf.WriteString(fmt.Sprintf("ID: %s\n", asset.ID))
	if asset.Tags != "" {
		buf.WriteString(fmt.Sprintf("Tags: %s\n", asset.Tags))
	}
	if asset.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", asset.Description))
	}
	buf.WriteString(fmt.Sprintf("Visibility: %s\n", asset.Permissions))

	return buf.Bytes()
}

// UserToText renders the account profile.
func UserToText(user *models.UserInfo) []byte {
	var buf bytes.Buffer

	name := user.Username
	if user.RealName != "" {
		name = fmt.Sprintf("%s (%s)", user.Username, user.RealName)
	}
	buf.WriteString(styles.Title(name) + "\n")
	buf.WriteString(fmt.Sprintf("ID: %s\n", user.ID))
	if user.PhotosURL != "" {
		buf.WriteString(fmt.Sprintf("Photos: %s\n", user.PhotosURL))
	}
	buf.WriteString(fmt.Sprintf("Assets: %s\n", humanize.Comma(int64(user.AssetCount))))

	return buf.Bytes()
}

// UploadStatusToText renders the upload quota in human-readable sizes.
func UploadStatusToText(status *models.UploadStatus) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Bandwidth: %s used of %s (%s remaining)\n",
		bytesString(status.BandwidthUsed), bytesString(status.BandwidthMax), bytesString(status.BandwidthRemaining)))
	buf.WriteString(fmt.Sprintf("Max file size: %s\n", bytesString(status.FileSizeMax)))

	return buf.Bytes()
}

func itemLine(status, kind, path, album, detail, errMsg string) string {
	line := fmt.Sprintf("%-9s %-10s %s", styles.Status(status), kind, path)
	if album != "" {
		line += fmt.Sprintf(" → %q", album)
	}
	if detail != "" {
		line += ": " + detail
	}
	if errMsg != "" {
		line += ": " + errMsg
	}
	return line
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func bytesString(n int64) string {
	if n < 0 {
		return "unlimited"
	}
	return humanize.Bytes(uint64(n))
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
