package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/albumsync/internal/formatter"
	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/services"
)

var (
	errStyle  = formatter.NewBold("#FF0000")
	infoStyle = formatter.NewEm("#626262")
)

// ViewState represents the current view in the browser.
type ViewState int

const (
	AlbumListView ViewState = iota
	AssetListView
)

// Model represents the browser state.
type Model struct {
	ctx       context.Context
	view      ViewState
	service   services.AlbumService
	userID    string
	width     int
	height    int
	albumList list.Model
	assetList list.Model
	selected  *models.Album
	loading   bool
	err       error
	fatal     bool
	help      help.Model
	keys      keyMap
}

// NewModel creates a browser over the albums owned by userID.
func NewModel(ctx context.Context, service services.AlbumService, userID string) *Model {
	albums := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	albums.Title = "Albums"
	assets := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	assets.Title = "Assets"

	return &Model{
		ctx:       ctx,
		view:      AlbumListView,
		service:   service,
		userID:    userID,
		albumList: albums,
		assetList: assets,
		loading:   true,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// State returns the current view.
func (m *Model) State() ViewState { return m.view }

// Err returns the error that ended the program, if listing albums failed.
func (m *Model) Err() error {
	if m.fatal {
		return m.err
	}
	return nil
}

// Init fetches the album list.
func (m *Model) Init() tea.Cmd {
	return m.fetchAlbums()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.albumList.SetSize(msg.Width-4, msg.Height-8)
		m.assetList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case AlbumListView:
			return m.handleAlbumListKeys(msg)
		case AssetListView:
			return m.handleAssetListKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgAlbumsFetched:
			return m.handleAlbumsFetched(msg.data.(albumsResult))
		case MsgAssetsFetched:
			return m.handleAssetsFetched(msg.data.(assetsResult))
		}
	}

	return m.updateLists(msg)
}

// View renders the current list with its contextual help.
func (m *Model) View() string {
	var body string
	var keys []key.Binding

	switch m.view {
	case AssetListView:
		body = m.assetList.View()
		keys = []key.Binding{m.keys.back, m.keys.refresh, m.keys.quit}
	default:
		body = m.albumList.View()
		keys = []key.Binding{m.keys.enter, m.keys.refresh, m.keys.quit}
	}

	switch {
	case m.err != nil:
		body = fmt.Sprintf("%s\n\n%s", errStyle.Render(fmt.Sprintf("Error: %v", m.err)), body)
	case m.loading:
		body = fmt.Sprintf("%s\n\n%s", infoStyle.Render("Loading..."), body)
	}

	return fmt.Sprintf("%s\n\n%s", body, m.help.ShortHelpView(keys))
}

func (m *Model) handleAlbumsFetched(res albumsResult) (tea.Model, tea.Cmd) {
	m.loading = false
	if res.err != nil {
		m.err = res.err
		m.fatal = true
		return m, tea.Quit
	}

	items := make([]list.Item, len(res.albums))
	for i, album := range res.albums {
		items[i] = albumItem{album: album}
	}
	m.albumList.Title = fmt.Sprintf("Albums (%d)", len(res.albums))
	return m, m.albumList.SetItems(items)
}

func (m *Model) handleAssetsFetched(res assetsResult) (tea.Model, tea.Cmd) {
	m.loading = false
	if res.err != nil {
		m.err = res.err
		m.view = AlbumListView
		return m, nil
	}

	album := res.album
	m.selected = &album
	items := make([]list.Item, len(res.assets))
	for i, asset := range res.assets {
		items[i] = assetItem{asset: asset}
	}
	m.assetList.Title = fmt.Sprintf("Assets in '%s'", album.Title)
	m.assetList.ResetFilter()
	m.assetList.ResetSelected()
	m.view = AssetListView
	return m, m.assetList.SetItems(items)
}

func (m *Model) handleAlbumListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.albumList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		m.err = nil
		m.loading = true
		return m, m.fetchAlbums()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.albumList.SelectedItem().(albumItem); ok {
			m.err = nil
			m.loading = true
			return m, m.fetchAssets(item.album)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleAssetListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.assetList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.assetList.FilterState() == list.FilterApplied {
			return m.updateLists(msg)
		}
		m.view = AlbumListView
		m.selected = nil
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		if m.selected == nil {
			return m, nil
		}
		m.err = nil
		m.loading = true
		return m, m.fetchAssets(*m.selected)
	}

	return m.updateLists(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case AlbumListView:
		m.albumList, cmd = m.albumList.Update(msg)
	case AssetListView:
		m.assetList, cmd = m.assetList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchAlbums() tea.Cmd {
	return func() tea.Msg {
		albums, err := m.service.ListAlbums(m.ctx, m.userID)
		return albumsFetchedMsg(albums, err)
	}
}

func (m *Model) fetchAssets(album models.Album) tea.Cmd {
	return func() tea.Msg {
		assets, err := m.service.ListAlbumAssets(m.ctx, album.ID, true)
		return assetsFetchedMsg(album, assets, err)
	}
}
