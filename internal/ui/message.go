package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgArtistsFetched MsgKind = iota
	MsgReleasesFetched
	MsgProgressUpdate
	MsgSyncComplete
)

type artistsFetched struct {
	artists []models.Artist
	err     error
}

type releasesFetched struct {
	artist   models.Artist
	releases []models.Release
	err      error
}

type syncComplete struct {
	report *tasks.SyncReport
	err    error
}

// artistsFetchedMsg is the constructor for [MsgArtistsFetched]
func artistsFetchedMsg(artists []models.Artist, err error) Msg {
	return Msg{kind: MsgArtistsFetched, data: artistsFetched{artists, err}}
}

// releasesFetchedMsg is the constructor for [MsgReleasesFetched]
func releasesFetchedMsg(artist models.Artist, releases []models.Release, err error) Msg {
	return Msg{kind: MsgReleasesFetched, data: releasesFetched{artist, releases, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// syncCompleteMsg is the constructor for [MsgSyncComplete]
func syncCompleteMsg(report *tasks.SyncReport, err error) Msg {
	return Msg{kind: MsgSyncComplete, data: syncComplete{report, err}}
}
