package tasks

import (
	"context"

	"github.com/desertthunder/albumsync/internal/localfs"
	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/shared"
)

// FixAlbumNames renames albums that still carry numeric ordering prefixes.
//
// For every directory below path whose album name changes when "<digits>_" prefixes are stripped,
// an album titled with the unstripped name is renamed to the stripped one. Every subdirectory is
// visited whether or not a rename happened.
func (e *AlbumEngine) FixAlbumNames(ctx context.Context, sc *SyncContext, path string, progress chan<- ProgressUpdate) (*RunSummary, error) {
	path = shared.NormalizePath(path)
	summary := e.begin(models.CommandFix, path)

	err := e.walk(ctx, path, true, summary, func(ctx context.Context, listing *localfs.Listing) error {
		return e.renameDirectory(ctx, sc, listing, summary, progress)
	})

	e.finish(summary, err)
	return summary, err
}

func (e *AlbumEngine) renameDirectory(ctx context.Context, sc *SyncContext, listing *localfs.Listing, summary *RunSummary, progress chan<- ProgressUpdate) error {
	stripped := e.albumName(listing.Path, true)
	full := e.albumName(listing.Path, false)
	if stripped == full {
		return nil
	}

	album, ok, err := sc.Album(ctx, full)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if _, taken, _ := sc.Album(ctx, stripped); taken {
		e.logger.Warn("an album already uses the new name", "album", stripped)
	}

	sendProgress(progress, renameAlbumUpdate(full, stripped))
	e.logger.Info("renaming album", "from", full, "to", stripped, "id", album.ID)

	item := ItemResult{Kind: KindRename, Path: listing.Path, Album: stripped}
	if err := e.service.RenameAlbum(ctx, album.ID, stripped); err != nil {
		item.Album = full
		item.Status, item.Detail, item.Err = StatusFailed, "rename failed", err
		e.record(summary, item)
		return nil
	}

	sc.RenameAlbum(full, stripped)
	item.Status, item.Detail = StatusSucceeded, "renamed from "+full
	e.record(summary, item)
	return nil
}
