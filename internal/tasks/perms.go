package tasks

import (
	"context"

	"github.com/desertthunder/albumsync/internal/localfs"
	"github.com/desertthunder/albumsync/internal/models"
)

// SyncPermissions applies perms to every asset in the album of path and, when recursive is set,
// of every directory below it.
//
// Directories without a matching album cost no remote calls but are still descended into.
// Each failed asset is recorded and the run continues.
func (e *AlbumEngine) SyncPermissions(ctx context.Context, sc *SyncContext, path string, recursive bool, perms models.Permissions, progress chan<- ProgressUpdate) (*RunSummary, error) {
	summary := e.begin(models.CommandPerms, path)

	err := e.walk(ctx, path, recursive, summary, func(ctx context.Context, listing *localfs.Listing) error {
		return e.permissionsDirectory(ctx, sc, listing, perms, summary, progress)
	})

	e.finish(summary, err)
	return summary, err
}

func (e *AlbumEngine) permissionsDirectory(ctx context.Context, sc *SyncContext, listing *localfs.Listing, perms models.Permissions, summary *RunSummary, progress chan<- ProgressUpdate) error {
	name := e.albumName(listing.Path, false)
	if name == "" {
		return nil
	}

	album, ok, err := sc.Album(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		e.logger.Debug("no album for directory", "path", listing.Path, "album", name)
		return nil
	}

	assets, err := sc.Assets(ctx, album.ID, false)
	if err != nil {
		e.record(summary, ItemResult{
			Kind:   KindAlbum,
			Status: StatusFailed,
			Path:   listing.Path,
			Album:  name,
			Detail: "failed to list album assets",
			Err:    err,
		})
		return nil
	}

	sendProgress(progress, scanDirectoryUpdate(listing.Path, name, len(assets)))
	for i, asset := range assets {
		sendProgress(progress, setPermissionsUpdate(i+1, len(assets), name, asset.ID))

		item := ItemResult{Kind: KindPermission, Path: listing.Path, Album: name, AssetID: asset.ID}
		if err := e.service.SetAssetPermissions(ctx, asset.ID, perms); err != nil {
			item.Status, item.Detail, item.Err = StatusFailed, "failed to set permissions", err
		} else {
			item.Status, item.Detail = StatusSucceeded, "permissions set to "+perms.String()
		}
		e.record(summary, item)
	}
	return nil
}
