package tasks

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/desertthunder/albumsync/internal/localfs"
	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/shared"
)

// Upload mirrors path and every directory below it onto remote albums.
//
// Each directory's files are uploaded in sorted order before its subdirectories are visited.
// Files whose content hash marker is already present in the directory's album are skipped,
// so re-running Upload on an unchanged tree uploads nothing.
// The public flag applies to every upload in the tree, subdirectories included.
//
// The returned summary is non-nil even when err is not: it holds every item processed before the failure.
func (e *AlbumEngine) Upload(ctx context.Context, sc *SyncContext, path string, public bool, progress chan<- ProgressUpdate) (*RunSummary, error) {
	summary := e.begin(models.CommandUpload, path)
	perms := models.VisibilityPermissions(public)

	err := e.walk(ctx, path, true, summary, func(ctx context.Context, listing *localfs.Listing) error {
		return e.uploadDirectory(ctx, sc, listing, perms, summary, progress)
	})

	e.finish(summary, err)
	return summary, err
}

func (e *AlbumEngine) uploadDirectory(ctx context.Context, sc *SyncContext, listing *localfs.Listing, perms models.Permissions, summary *RunSummary, progress chan<- ProgressUpdate) error {
	name := e.albumName(listing.Path, false)
	sendProgress(progress, scanDirectoryUpdate(listing.Path, name, len(listing.Files)))

	if len(listing.Files) == 0 {
		return nil
	}

	if name == "" {
		for _, file := range listing.Files {
			e.record(summary, ItemResult{
				Kind:   KindUpload,
				Status: StatusSkipped,
				Path:   file,
				Detail: "files in the library root belong to no album",
			})
		}
		return nil
	}

	// Album list failures are fatal: continuing without it would create duplicate albums.
	if _, _, err := sc.Album(ctx, name); err != nil {
		return err
	}

	known, err := sc.KnownHashes(ctx, name)
	if err != nil {
		e.record(summary, ItemResult{
			Kind:   KindAlbum,
			Status: StatusFailed,
			Path:   listing.Path,
			Album:  name,
			Detail: "failed to list album assets, skipping directory files",
			Err:    err,
		})
		return nil
	}

	total := len(listing.Files)
	for i, file := range listing.Files {
		item := ItemResult{Kind: KindUpload, Path: file, Album: name}

		hash, err := e.fs.ContentHash(file)
		if err != nil {
			item.Status, item.Detail, item.Err = StatusFailed, "failed to hash file", err
			e.record(summary, item)
			continue
		}

		tag := shared.HashTag(hash)
		if known.Contains(tag) {
			sendProgress(progress, skipFileUpdate(i+1, total, file))
			item.Status, item.Detail = StatusSkipped, "already synchronized"
			e.record(summary, item)
			continue
		}

		asset, err := e.uploadFile(ctx, file, tag, perms, i+1, total, progress)
		if err != nil {
			item.Status, item.Detail, item.Err = StatusFailed, "upload failed", err
			e.record(summary, item)
			continue
		}
		item.AssetID = asset.ID
		known.Add(tag)

		created, err := e.placeAsset(ctx, sc, name, asset)
		if err != nil {
			item.Status, item.Detail, item.Err = StatusFailed, "uploaded but not added to album", err
			e.record(summary, item)
			continue
		}

		if created {
			album, _, _ := sc.Album(ctx, name)
			sendProgress(progress, createAlbumUpdate(name, album.ID))
			e.record(summary, ItemResult{
				Kind:    KindAlbum,
				Status:  StatusSucceeded,
				Path:    listing.Path,
				Album:   name,
				AssetID: asset.ID,
				Detail:  "album created",
			})
		}

		item.Status, item.Detail = StatusSucceeded, "uploaded"
		e.record(summary, item)
	}
	return nil
}

// uploadFile streams file to the remote service.
func (e *AlbumEngine) uploadFile(ctx context.Context, file, tag string, perms models.Permissions, step, total int, progress chan<- ProgressUpdate) (models.Asset, error) {
	info, err := e.fs.Stat(file)
	if err != nil {
		return models.Asset{}, err
	}

	rc, err := e.fs.Open(file)
	if err != nil {
		return models.Asset{}, err
	}
	defer rc.Close()

	sendProgress(progress, uploadFileUpdate(step, total, file, info.Size()))
	e.logger.Debug("uploading", "file", file, "size", humanize.Bytes(uint64(max(info.Size(), 0))))

	title := shared.AssetTitle(file)
	asset := models.Asset{
		Title:       title,
		Tags:        shared.AssetTags(title),
		Description: tag,
		Permissions: perms,
	}

	id, err := e.service.UploadAsset(ctx, models.UploadRequest{
		FileName:    filepath.Base(file),
		Content:     rc,
		Size:        info.Size(),
		Title:       asset.Title,
		Tags:        asset.Tags,
		Description: asset.Description,
		Permissions: perms,
	})
	if err != nil {
		return models.Asset{}, err
	}
	if id == "" {
		return models.Asset{}, fmt.Errorf("%w: upload returned no asset id", shared.ErrRemoteOperation)
	}

	asset.ID = id
	return asset, nil
}

// placeAsset attaches asset to the album called name, creating the album when it does not exist yet.
//
// A failed creation leaves the album absent in sc, so the next uploaded file attempts creation again.
func (e *AlbumEngine) placeAsset(ctx context.Context, sc *SyncContext, name string, asset models.Asset) (created bool, err error) {
	album, ok, err := sc.Album(ctx, name)
	if err != nil {
		return false, err
	}

	if ok {
		if err := e.service.AddAssetToAlbum(ctx, album.ID, asset.ID); err != nil {
			return false, fmt.Errorf("failed to add asset to album %s: %w", album.ID, err)
		}
		sc.AddAsset(name, asset)
		return false, nil
	}

	id, err := e.service.CreateAlbum(ctx, name, asset.ID, "")
	if err != nil {
		return false, fmt.Errorf("failed to create album: %w", err)
	}
	if id == "" {
		return false, fmt.Errorf("%w: album creation returned no id", shared.ErrRemoteOperation)
	}

	sc.AddAlbum(models.Album{ID: id, Title: name, PrimaryAssetID: asset.ID, AssetCount: 1}, asset)
	return true, nil
}
