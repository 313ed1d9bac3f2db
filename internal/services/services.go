// package services defines interface AlbumService for interacting with the remote photo service
package services

import (
	"context"

	"github.com/desertthunder/albumsync/internal/models"
)

// AlbumService defines the remote photo-album operations albumsync depends on.
//
// Every method blocks until the remote call completes. Failures wrap [shared.ErrRemoteOperation].
type AlbumService interface {
	// ListAlbums returns every album owned by userID.
	ListAlbums(ctx context.Context, userID string) ([]models.Album, error)

	// CreateAlbum creates an album with primaryAssetID as its first member and returns the new album ID.
	CreateAlbum(ctx context.Context, title, primaryAssetID, description string) (string, error)

	// AddAssetToAlbum attaches an uploaded asset to an existing album.
	AddAssetToAlbum(ctx context.Context, albumID, assetID string) error

	// RenameAlbum changes an album's title.
	RenameAlbum(ctx context.Context, albumID, newTitle string) error

	// ListAlbumAssets returns the album's assets. With full set, descriptions are included.
	ListAlbumAssets(ctx context.Context, albumID string, full bool) ([]models.Asset, error)

	// UploadAsset uploads a file and returns the new asset ID.
	UploadAsset(ctx context.Context, req models.UploadRequest) (string, error)

	// SetAssetPermissions replaces an asset's visibility and interaction permissions.
	SetAssetPermissions(ctx context.Context, assetID string, perms models.Permissions) error

	// GetAssetInfo returns a single asset.
	GetAssetInfo(ctx context.Context, assetID string) (*models.Asset, error)

	// GetUserInfo returns the account profile for userID.
	GetUserInfo(ctx context.Context, userID string) (*models.UserInfo, error)

	// GetUploadStatus returns the authenticated account's upload quota.
	GetUploadStatus(ctx context.Context) (*models.UploadStatus, error)
}
