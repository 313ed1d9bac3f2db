// Package ui implements an interactive album browser using bubbletea's Elm architecture.
//
// The browser has two views:
//  1. [AlbumListView] : Browse and filter remote albums
//  2. [AssetListView] : Inspect the assets of the selected album
//
// The [Model] implements bubbletea's Init/Update/View pattern and receives fetch results through the [Msg] union.
// Assets carrying a content hash marker are flagged as synced, so the browser shows which photos albumsync uploaded.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help from charmbracelet/bubbles/help.
package ui
