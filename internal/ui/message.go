package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/albumsync/internal/models"
)

// MsgKind enumerates all message types in the browser.
type MsgKind int

// Msg represents all possible messages in the browser (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgAlbumsFetched MsgKind = iota
	MsgAssetsFetched
)

type albumsResult struct {
	albums []models.Album
	err    error
}

type assetsResult struct {
	album  models.Album
	assets []models.Asset
	err    error
}

// albumsFetchedMsg is the constructor for [MsgAlbumsFetched]
func albumsFetchedMsg(albums []models.Album, err error) Msg {
	return Msg{kind: MsgAlbumsFetched, data: albumsResult{albums, err}}
}

// assetsFetchedMsg is the constructor for [MsgAssetsFetched]
func assetsFetchedMsg(album models.Album, assets []models.Asset, err error) Msg {
	return Msg{kind: MsgAssetsFetched, data: assetsResult{album, assets, err}}
}
