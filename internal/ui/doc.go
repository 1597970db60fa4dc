// Package ui implements an interactive terminal browser for the tracked catalog using bubbletea's Elm architecture.
//
// The TUI provides a small multi-view workflow:
//  1. [ArtistListView] : Browse tracked artists
//  2. [ReleaseListView] : Inspect an artist's stored releases and their verification state
//  3. [ConfirmView] : Confirm a check of every artist for new releases
//  4. [SyncView] : Monitor progress updates while artists are checked
//  5. [ResultView] : Display the releases that were confirmed and any failed artists
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the sync engine.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, s, y/n, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
