package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/albumsync/internal/formatter"
	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/shared"
)

// Albums lists the account's albums.
func (r *Runner) Albums(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("browse") {
		return r.Browse(ctx)
	}

	service, err := r.albumService()
	if err != nil {
		return err
	}

	albums, err := service.ListAlbums(ctx, r.config.Credentials.UserID)
	if err != nil {
		return fmt.Errorf("failed to list albums: %w", err)
	}
	r.logger.Debug("listed albums", "count", len(albums))

	if cmd.Bool("json") {
		if albums == nil {
			albums = []models.Album{}
		}
		return r.writeJSON(albums, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.AlbumsToText(albums))
}

// Album shows one album and its assets.
func (r *Runner) Album(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: album id", shared.ErrMissingArgument)
	}

	service, err := r.albumService()
	if err != nil {
		return err
	}

	albums, err := service.ListAlbums(ctx, r.config.Credentials.UserID)
	if err != nil {
		return fmt.Errorf("failed to list albums: %w", err)
	}

	var album *models.Album
	for i := range albums {
		if albums[i].ID == id {
			album = &albums[i]
			break
		}
	}
	if album == nil {
		return fmt.Errorf("%w: %s", shared.ErrAlbumNotFound, id)
	}

	assets, err := service.ListAlbumAssets(ctx, id, cmd.Bool("full"))
	if err != nil {
		return fmt.Errorf("failed to list assets of album %s: %w", id, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Album  models.Album   `json:"album"`
			Assets []models.Asset `json:"assets"`
		}{*album, assets}, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.AlbumToText(*album, assets))
}

// Asset shows one asset.
func (r *Runner) Asset(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: asset id", shared.ErrMissingArgument)
	}

	service, err := r.albumService()
	if err != nil {
		return err
	}

	asset, err := service.GetAssetInfo(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get asset %s: %w", id, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(asset, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.AssetToText(asset))
}

// Whoami shows the configured account.
func (r *Runner) Whoami(ctx context.Context, cmd *cli.Command) error {
	service, err := r.albumService()
	if err != nil {
		return err
	}

	user, err := service.GetUserInfo(ctx, r.config.Credentials.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user info: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.UserToText(user))
}

// Status shows the remaining upload quota.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	service, err := r.albumService()
	if err != nil {
		return err
	}

	status, err := service.GetUploadStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get upload status: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.UploadStatusToText(status))
}
