package testing

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/shared"
)

// FakeAlbumService is an in-memory [services.AlbumService] that records every call.
//
// Uploaded assets exist on their own until they are attached to an album, the same as on the real service.
// Errors are injected per call through the Err* fields.
type FakeAlbumService struct {
	albums  []models.Album
	members map[string][]string // album ID → asset IDs
	assets  map[string]models.Asset
	nextID  int

	User   *models.UserInfo
	Status *models.UploadStatus

	Calls    []string // "<Method> <argument>" in call order
	Uploaded []string // uploaded file names in order
	Contents map[string]string

	ListAlbumsCalls    int
	CreateAlbumCalls   int
	AddAssetCalls      int
	RenameCalls        int
	ListAssetsCalls    int
	UploadCalls        int
	PermissionCalls    int
	GetAssetInfoCalls  int
	GetUserInfoCalls   int
	UploadStatusCalls  int
	PermissionsApplied map[string]models.Permissions

	ListAlbumsErr  error
	ListAssetsErr  error
	UploadErr      map[string]error // by file name
	CreateAlbumErr []error          // consumed one per call, nil entries succeed
	AddAssetErr    error
	RenameErr      error
	PermissionErr  map[string]error // by asset ID
}

// NewFakeAlbumService creates an empty fake.
func NewFakeAlbumService() *FakeAlbumService {
	return &FakeAlbumService{
		members:            make(map[string][]string),
		assets:             make(map[string]models.Asset),
		Contents:           make(map[string]string),
		UploadErr:          make(map[string]error),
		PermissionErr:      make(map[string]error),
		PermissionsApplied: make(map[string]models.Permissions),
	}
}

func (f *FakeAlbumService) id(prefix string) string {
	f.nextID++
	return prefix + strconv.Itoa(f.nextID)
}

// SeedAlbum adds an existing album holding assets and returns its ID.
func (f *FakeAlbumService) SeedAlbum(title string, assets ...models.Asset) string {
	id := f.id("album-")
	album := models.Album{ID: id, Title: title, AssetCount: len(assets)}
	for i, asset := range assets {
		if asset.ID == "" {
			asset.ID = f.id("asset-")
		}
		if i == 0 {
			album.PrimaryAssetID = asset.ID
		}
		f.assets[asset.ID] = asset
		f.members[id] = append(f.members[id], asset.ID)
	}
	f.albums = append(f.albums, album)
	return id
}

// Albums returns the current albums in creation order.
func (f *FakeAlbumService) Albums() []models.Album {
	out := make([]models.Album, len(f.albums))
	copy(out, f.albums)
	return out
}

// AlbumByTitle returns the first album titled title.
func (f *FakeAlbumService) AlbumByTitle(title string) (models.Album, bool) {
	for _, album := range f.albums {
		if album.Title == title {
			return album, true
		}
	}
	return models.Album{}, false
}

// AlbumAssets returns the full assets attached to albumID.
func (f *FakeAlbumService) AlbumAssets(albumID string) []models.Asset {
	var out []models.Asset
	for _, id := range f.members[albumID] {
		out = append(out, f.assets[id])
	}
	return out
}

func (f *FakeAlbumService) ListAlbums(ctx context.Context, userID string) ([]models.Album, error) {
	f.ListAlbumsCalls++
	f.Calls = append(f.Calls, "ListAlbums "+userID)
	if f.ListAlbumsErr != nil {
		return nil, f.ListAlbumsErr
	}
	return f.Albums(), nil
}

func (f *FakeAlbumService) CreateAlbum(ctx context.Context, title, primaryAssetID, description string) (string, error) {
	f.CreateAlbumCalls++
	f.Calls = append(f.Calls, "CreateAlbum "+title)
	if len(f.CreateAlbumErr) > 0 {
		err := f.CreateAlbumErr[0]
		f.CreateAlbumErr = f.CreateAlbumErr[1:]
		if err != nil {
			return "", err
		}
	}
	if _, ok := f.assets[primaryAssetID]; !ok {
		return "", fmt.Errorf("%w: %s", shared.ErrAssetNotFound, primaryAssetID)
	}

	id := f.id("album-")
	f.albums = append(f.albums, models.Album{
		ID:             id,
		Title:          title,
		Description:    description,
		PrimaryAssetID: primaryAssetID,
		AssetCount:     1,
	})
	f.members[id] = []string{primaryAssetID}
	return id, nil
}

func (f *FakeAlbumService) AddAssetToAlbum(ctx context.Context, albumID, assetID string) error {
	f.AddAssetCalls++
	f.Calls = append(f.Calls, "AddAssetToAlbum "+albumID+" "+assetID)
	if f.AddAssetErr != nil {
		return f.AddAssetErr
	}
	for i := range f.albums {
		if f.albums[i].ID == albumID {
			f.albums[i].AssetCount++
			f.members[albumID] = append(f.members[albumID], assetID)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", shared.ErrAlbumNotFound, albumID)
}

func (f *FakeAlbumService) RenameAlbum(ctx context.Context, albumID, newTitle string) error {
	f.RenameCalls++
	f.Calls = append(f.Calls, "RenameAlbum "+albumID+" "+newTitle)
	if f.RenameErr != nil {
		return f.RenameErr
	}
	for i := range f.albums {
		if f.albums[i].ID == albumID {
			f.albums[i].Title = newTitle
			return nil
		}
	}
	return fmt.Errorf("%w: %s", shared.ErrAlbumNotFound, albumID)
}

func (f *FakeAlbumService) ListAlbumAssets(ctx context.Context, albumID string, full bool) ([]models.Asset, error) {
	f.ListAssetsCalls++
	f.Calls = append(f.Calls, "ListAlbumAssets "+albumID)
	if f.ListAssetsErr != nil {
		return nil, f.ListAssetsErr
	}
	assets := f.AlbumAssets(albumID)
	if !full {
		for i := range assets {
			assets[i] = models.Asset{ID: assets[i].ID, Title: assets[i].Title}
		}
	}
	return assets, nil
}

func (f *FakeAlbumService) UploadAsset(ctx context.Context, req models.UploadRequest) (string, error) {
	f.UploadCalls++
	f.Calls = append(f.Calls, "UploadAsset "+req.FileName)
	if err := f.UploadErr[req.FileName]; err != nil {
		return "", err
	}

	var content []byte
	if req.Content != nil {
		b, err := io.ReadAll(req.Content)
		if err != nil {
			return "", err
		}
		content = b
	}

	id := f.id("asset-")
	f.assets[id] = models.Asset{
		ID:          id,
		Title:       req.Title,
		Tags:        req.Tags,
		Description: req.Description,
		Permissions: req.Permissions,
	}
	f.Uploaded = append(f.Uploaded, req.FileName)
	f.Contents[id] = string(content)
	return id, nil
}

func (f *FakeAlbumService) SetAssetPermissions(ctx context.Context, assetID string, perms models.Permissions) error {
	f.PermissionCalls++
	f.Calls = append(f.Calls, "SetAssetPermissions "+assetID)
	if err := f.PermissionErr[assetID]; err != nil {
		return err
	}
	asset, ok := f.assets[assetID]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrAssetNotFound, assetID)
	}
	asset.Permissions = perms
	f.assets[assetID] = asset
	f.PermissionsApplied[assetID] = perms
	return nil
}

func (f *FakeAlbumService) GetAssetInfo(ctx context.Context, assetID string) (*models.Asset, error) {
	f.GetAssetInfoCalls++
	f.Calls = append(f.Calls, "GetAssetInfo "+assetID)
	asset, ok := f.assets[assetID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrAssetNotFound, assetID)
	}
	return &asset, nil
}

func (f *FakeAlbumService) GetUserInfo(ctx context.Context, userID string) (*models.UserInfo, error) {
	f.GetUserInfoCalls++
	f.Calls = append(f.Calls, "GetUserInfo "+userID)
	if f.User != nil {
		return f.User, nil
	}
	return &models.UserInfo{ID: userID, Username: "fake", AssetCount: len(f.assets)}, nil
}

func (f *FakeAlbumService) GetUploadStatus(ctx context.Context) (*models.UploadStatus, error) {
	f.UploadStatusCalls++
	f.Calls = append(f.Calls, "GetUploadStatus")
	if f.Status != nil {
		return f.Status, nil
	}
	return &models.UploadStatus{}, nil
}
