package tasks

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	ScanDirectory Phase = iota
	UploadFile
	CreateAlbum
	SetPermissions
	RenameAlbum
)

func (p Phase) String() string {
	switch p {
	case ScanDirectory:
		return "scan_directory"
	case UploadFile:
		return "upload_file"
	case CreateAlbum:
		return "create_album"
	case SetPermissions:
		return "set_permissions"
	case RenameAlbum:
		return "rename_album"
	default:
		return ""
	}
}

func scanDirectoryUpdate(path, album string, files int) ProgressUpdate {
	msg := fmt.Sprintf("Scanning %s (%d files)", path, files)
	if album != "" {
		msg = fmt.Sprintf("Scanning %s → %q (%d files)", path, album, files)
	}
	return ProgressUpdate{
		Phase:   ScanDirectory,
		Total:   files,
		Message: msg,
	}
}

func uploadFileUpdate(step, total int, path string, size int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Uploading %s (%s)...", step, total, filepath.Base(path), humanize.Bytes(uint64(max(size, 0)))),
	}
}

func skipFileUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s already synchronized", step, total, filepath.Base(path)),
	}
}

func createAlbumUpdate(album, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateAlbum,
		Message: fmt.Sprintf("Album created: %s (ID: %s)", album, id),
		Data:    id,
	}
}

func setPermissionsUpdate(step, total int, album, assetID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SetPermissions,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: asset %s", step, total, album, assetID),
	}
}

func renameAlbumUpdate(from, to string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenameAlbum,
		Message: fmt.Sprintf("Renaming %q → %q", from, to),
	}
}
