package tasks

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/services"
	"github.com/desertthunder/albumsync/internal/shared"
)

type assetKey struct {
	albumID string
	full    bool
}

// SyncContext is the per-run cache of remote state.
//
// The album list is fetched on first use and kept for the whole run; asset lists are fetched once per album.
// Both are updated in place as the engine creates albums, uploads assets and renames albums, so later
// directories in the same run see those changes without another remote call.
//
// A SyncContext belongs to a single run and is not safe for concurrent use.
type SyncContext struct {
	service services.AlbumService
	userID  string
	loaded  bool
	albums  map[string]models.Album
	assets  map[assetKey][]models.Asset
	hashes  map[string]mapset.Set[string]
}

// NewSyncContext creates an empty cache for userID's albums.
func NewSyncContext(service services.AlbumService, userID string) *SyncContext {
	return &SyncContext{
		service: service,
		userID:  userID,
		albums:  make(map[string]models.Album),
		assets:  make(map[assetKey][]models.Asset),
		hashes:  make(map[string]mapset.Set[string]),
	}
}

// Album resolves an album by exact title, loading the full album list on first use.
//
// When several albums share a title the first one listed wins.
func (sc *SyncContext) Album(ctx context.Context, title string) (models.Album, bool, error) {
	if err := sc.load(ctx); err != nil {
		return models.Album{}, false, err
	}
	album, ok := sc.albums[title]
	return album, ok, nil
}

func (sc *SyncContext) load(ctx context.Context) error {
	if sc.loaded {
		return nil
	}

	albums, err := sc.service.ListAlbums(ctx, sc.userID)
	if err != nil {
		return fmt.Errorf("failed to list albums: %w", err)
	}

	for _, album := range albums {
		if _, dup := sc.albums[album.Title]; !dup {
			sc.albums[album.Title] = album
		}
	}
	sc.loaded = true
	return nil
}

// AddAlbum caches a newly created album together with its primary asset.
func (sc *SyncContext) AddAlbum(album models.Album, primary models.Asset) {
	sc.albums[album.Title] = album
	sc.assets[assetKey{album.ID, true}] = []models.Asset{primary}
	sc.assets[assetKey{album.ID, false}] = []models.Asset{primary}
	sc.knownSet(album.Title).Append(shared.HashTags(primary.Description)...)
}

// AddAsset records an asset attached to the album titled title.
func (sc *SyncContext) AddAsset(title string, asset models.Asset) {
	if album, ok := sc.albums[title]; ok {
		album.AssetCount++
		sc.albums[title] = album
		for _, full := range []bool{true, false} {
			key := assetKey{album.ID, full}
			if cached, ok := sc.assets[key]; ok {
				sc.assets[key] = append(cached, asset)
			}
		}
	}
	sc.knownSet(title).Append(shared.HashTags(asset.Description)...)
}

// RenameAlbum moves the cache entry of oldTitle to newTitle.
func (sc *SyncContext) RenameAlbum(oldTitle, newTitle string) {
	album, ok := sc.albums[oldTitle]
	if !ok {
		return
	}
	delete(sc.albums, oldTitle)
	album.Title = newTitle
	sc.albums[newTitle] = album

	if set, ok := sc.hashes[oldTitle]; ok {
		delete(sc.hashes, oldTitle)
		sc.hashes[newTitle] = set
	}
}

// Assets returns the assets of albumID, fetching them on first use.
//
// A cached full listing also satisfies a shallow request.
func (sc *SyncContext) Assets(ctx context.Context, albumID string, full bool) ([]models.Asset, error) {
	if cached, ok := sc.assets[assetKey{albumID, full}]; ok {
		return cached, nil
	}
	if !full {
		if cached, ok := sc.assets[assetKey{albumID, true}]; ok {
			return cached, nil
		}
	}

	assets, err := sc.service.ListAlbumAssets(ctx, albumID, full)
	if err != nil {
		return nil, err
	}
	sc.assets[assetKey{albumID, full}] = assets
	return assets, nil
}

// KnownHashes returns the content hash markers already present in the album titled title.
//
// Only the album with exactly this title is consulted. Assets of the same content in other albums,
// or in an album renamed outside albumsync, are not seen.
func (sc *SyncContext) KnownHashes(ctx context.Context, title string) (mapset.Set[string], error) {
	if set, ok := sc.hashes[title]; ok {
		return set, nil
	}

	album, ok, err := sc.Album(ctx, title)
	if err != nil {
		return nil, err
	}

	set := mapset.NewThreadUnsafeSet[string]()
	if ok {
		assets, err := sc.Assets(ctx, album.ID, true)
		if err != nil {
			return nil, err
		}
		for _, asset := range assets {
			set.Append(shared.HashTags(asset.Description)...)
		}
	}

	sc.hashes[title] = set
	return set, nil
}

func (sc *SyncContext) knownSet(title string) mapset.Set[string] {
	set, ok := sc.hashes[title]
	if !ok {
		set = mapset.NewThreadUnsafeSet[string]()
		sc.hashes[title] = set
	}
	return set
}
