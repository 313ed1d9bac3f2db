package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/shared"
)

var (
	_ list.Item = albumItem{}
	_ list.Item = assetItem{}
)

// albumItem wraps [models.Album] to implement [list.Item].
type albumItem struct {
	album models.Album
}

func (i albumItem) FilterValue() string { return i.album.Title }
func (i albumItem) Title() string       { return i.album.Title }
func (i albumItem) Description() string {
	desc := fmt.Sprintf("%d assets", i.album.AssetCount)
	if i.album.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.album.Description)
	}
	return desc
}

// assetItem wraps [models.Asset] to implement [list.Item].
type assetItem struct {
	asset models.Asset
}

func (i assetItem) FilterValue() string { return i.asset.Title }
func (i assetItem) Title() string       { return i.asset.Title }
func (i assetItem) Description() string {
	desc := i.asset.Permissions.String()
	if i.synced() {
		desc = fmt.Sprintf("%s • synced", desc)
	}
	return desc
}

// synced reports whether the description carries a content hash marker.
func (i assetItem) synced() bool {
	return len(shared.HashTags(i.asset.Description)) > 0
}
