package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/qbx/internal/formatter"
	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ArtistListView ViewState = iota
	ReleaseListView
	ConfirmView
	SyncView
	ResultView
)

// Library is the read side of the store the browser needs.
type Library interface {
	ListArtists() ([]models.Artist, error)
	ArtistReleases(artistID int64) ([]models.Release, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	library      Library
	engine       tasks.SyncEngine
	width        int
	height       int
	artistList   list.Model
	artists      []models.Artist
	releaseList  list.Model
	selected     *models.Artist
	progressChan chan tasks.ProgressUpdate
	doneChan     chan syncComplete
	progress     tasks.ProgressUpdate
	report       *tasks.SyncReport
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, library Library, engine tasks.SyncEngine) *Model {
	return &Model{
		ctx:         ctx,
		view:        ArtistListView,
		library:     library,
		engine:      engine,
		artistList:  list.New(nil, list.NewDefaultDelegate(), 0, 0),
		releaseList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init initializes the TUI by loading stored artists.
func (m *Model) Init() tea.Cmd {
	return m.fetchArtists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.artistList.SetSize(m.listSize())
		m.releaseList.SetSize(m.listSize())
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ArtistListView:
			return m.handleArtistListKeys(msg)
		case ReleaseListView:
			return m.handleReleaseListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case SyncView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgArtistsFetched:
		data := msg.data.(artistsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.artists = formatter.SortArtists(data.artists)
		items := make([]list.Item, len(m.artists))
		for i, a := range m.artists {
			items[i] = artistItem{artist: a}
		}
		m.artistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.artistList.Title = fmt.Sprintf("Tracked Artists (%d)", len(m.artists))
		m.artistList.SetSize(m.listSize())
		m.view = ArtistListView
		return m, nil

	case MsgReleasesFetched:
		data := msg.data.(releasesFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		artist := data.artist
		m.selected = &artist
		items := make([]list.Item, len(data.releases))
		for i, rel := range data.releases {
			items[i] = releaseItem{release: rel}
		}
		m.releaseList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.releaseList.Title = fmt.Sprintf("Releases by '%s'", artist.Name)
		m.releaseList.SetSize(m.listSize())
		m.view = ReleaseListView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgSyncComplete:
		data := msg.data.(syncComplete)
		m.report = data.report
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.doneChan = nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ArtistListView:
		return m.renderArtistList()
	case ReleaseListView:
		return m.renderReleaseList()
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleArtistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.artistList.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.sync):
			if m.err == nil {
				m.view = ConfirmView
			}
			return m, nil
		case key.Matches(msg, m.keys.enter):
			if pick, ok := m.artistList.SelectedItem().(artistItem); ok {
				return m, m.fetchReleases(pick.artist)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.artistList, cmd = m.artistList.Update(msg)
	return m, cmd
}

func (m *Model) handleReleaseListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.releaseList.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.back):
			m.view = ArtistListView
			m.selected = nil
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.releaseList, cmd = m.releaseList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = ArtistListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = SyncView
		m.progress = tasks.ProgressUpdate{}
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.report = nil
		m.err = nil
		m.selected = nil
		return m, m.fetchArtists()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ArtistListView:
		m.artistList, cmd = m.artistList.Update(msg)
	case ReleaseListView:
		m.releaseList, cmd = m.releaseList.Update(msg)
	}
	return m, cmd
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-8, 0)
}

func (m *Model) fetchArtists() tea.Cmd {
	return func() tea.Msg {
		artists, err := m.library.ListArtists()
		return artistsFetchedMsg(artists, err)
	}
}

func (m *Model) fetchReleases(artist models.Artist) tea.Cmd {
	return func() tea.Msg {
		releases, err := m.library.ArtistReleases(artist.ID)
		return releasesFetchedMsg(artist, releases, err)
	}
}

// startSync runs the engine in the background. Progress is drained by waitForProgress
// and the result is delivered once the progress channel closes.
func (m *Model) startSync() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan syncComplete, 1)
	m.progressChan = progress
	m.doneChan = done

	go func() {
		report, err := m.engine.SyncAll(m.ctx, progress)
		close(progress)
		done <- syncComplete{report: report, err: err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		if progress == nil {
			return syncCompleteMsg(m.report, m.err)
		}

		update, ok := <-progress
		if !ok {
			result := <-done
			return syncCompleteMsg(result.report, result.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderArtistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.sync, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	if len(m.artists) == 0 {
		empty := styles.warn.Render("No artists tracked yet. Add one with `qbx load <artist_id>`.")
		return fmt.Sprintf("%s\n\n%s", empty, helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.artistList.View(), helpView)
}

func (m *Model) renderReleaseList() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.releaseList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Check all artists for new releases?")
	info := fmt.Sprintf("\nArtists: %d\n", len(m.artists))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Checking Artists")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchArtists:
		phase = "Loading artists..."
	case tasks.CheckArtist:
		phase = fmt.Sprintf("Checking artists (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.FetchTracks:
		phase = "Fetching tracks..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Check failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.report == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	title := styles.ok.Render("✓ Check Complete")
	if len(m.report.Failed()) > 0 {
		title = styles.warn.Render(fmt.Sprintf("Check finished with %d failed artists", len(m.report.Failed())))
	}

	var b strings.Builder
	if err := formatter.WriteSync(&b, m.report); err != nil {
		return styles.err.Render(err.Error())
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, b.String(), helpView)
}
