package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/shared"
	"github.com/desertthunder/qbx/internal/tasks"
)

type fakeLibrary struct {
	artists  []models.Artist
	releases map[int64][]models.Release
	err      error
}

func (f *fakeLibrary) ListArtists() ([]models.Artist, error) { return f.artists, f.err }

func (f *fakeLibrary) ArtistReleases(artistID int64) ([]models.Release, error) {
	return f.releases[artistID], f.err
}

type fakeEngine struct {
	report *tasks.SyncReport
	err    error
}

func (f *fakeEngine) LoadArtist(ctx context.Context, artistID int64) (*tasks.LoadResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeEngine) SyncAll(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.SyncReport, error) {
	progress <- tasks.ProgressUpdate{Phase: tasks.CheckArtist, Step: 1, Total: 1, Message: "[1/1] AVRALIZE"}
	return f.report, f.err
}

func newTestModel(lib *fakeLibrary, engine *fakeEngine) *Model {
	m := NewModel(context.Background(), lib, engine)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.Update(m.Init()())
	return m
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func testLibrary() *fakeLibrary {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &fakeLibrary{
		artists: []models.Artist{{ID: 2, Name: "bicep"}, {ID: 1, Name: "AVRALIZE"}},
		releases: map[int64][]models.Release{
			1: {{ID: "r1", Title: "helium", Kind: models.KindAlbum, CreatedAt: now, Verified: true, CheckedAt: &now}},
		},
	}
}

func TestNewModel(t *testing.T) {
	m := NewModel(context.Background(), &fakeLibrary{}, &fakeEngine{})
	if m.view != ArtistListView {
		t.Errorf("view = %v, want ArtistListView", m.view)
	}
	if m.Init() == nil {
		t.Error("Init should return a command")
	}
}

func TestArtistsFetched(t *testing.T) {
	m := newTestModel(testLibrary(), &fakeEngine{})

	if len(m.artists) != 2 {
		t.Fatalf("artists = %d, want 2", len(m.artists))
	}
	if m.artists[0].Name != "AVRALIZE" {
		t.Errorf("artists[0] = %q, want AVRALIZE", m.artists[0].Name)
	}
	if !strings.Contains(m.View(), "Tracked Artists (2)") {
		t.Errorf("expected list title in view, got:\n%s", m.View())
	}
}

func TestArtistsFetchError(t *testing.T) {
	m := newTestModel(&fakeLibrary{err: errors.New("db gone")}, &fakeEngine{})

	if m.err == nil {
		t.Fatal("expected error to be recorded")
	}
	if !strings.Contains(m.View(), "db gone") {
		t.Errorf("expected error in view, got %q", m.View())
	}
}

func TestEmptyLibrary(t *testing.T) {
	m := newTestModel(&fakeLibrary{}, &fakeEngine{})
	if !strings.Contains(m.View(), "No artists tracked yet") {
		t.Errorf("expected empty message, got %q", m.View())
	}
}

func TestBrowseReleases(t *testing.T) {
	m := newTestModel(testLibrary(), &fakeEngine{})

	_, cmd := m.Update(keyPress("enter"))
	if cmd == nil {
		t.Fatal("enter should fetch releases")
	}
	m.Update(cmd())

	if m.view != ReleaseListView {
		t.Fatalf("view = %v, want ReleaseListView", m.view)
	}
	if m.selected == nil || m.selected.ID != 1 {
		t.Fatalf("selected = %+v, want artist 1", m.selected)
	}
	if !strings.Contains(m.View(), "helium") {
		t.Errorf("expected release in view, got:\n%s", m.View())
	}

	m.Update(keyPress("esc"))
	if m.view != ArtistListView {
		t.Errorf("view = %v, want ArtistListView after esc", m.view)
	}
}

func TestConfirmCancel(t *testing.T) {
	m := newTestModel(testLibrary(), &fakeEngine{})

	m.Update(keyPress("s"))
	if m.view != ConfirmView {
		t.Fatalf("view = %v, want ConfirmView", m.view)
	}
	if !strings.Contains(m.View(), "Artists: 2") {
		t.Errorf("expected artist count in confirm view, got %q", m.View())
	}

	m.Update(keyPress("n"))
	if m.view != ArtistListView {
		t.Errorf("view = %v, want ArtistListView", m.view)
	}
}

func runSync(t *testing.T, m *Model) {
	t.Helper()
	m.Update(keyPress("s"))
	_, cmd := m.Update(keyPress("y"))
	if m.view != SyncView {
		t.Fatalf("view = %v, want SyncView", m.view)
	}

	for i := 0; i < 10 && m.view != ResultView; i++ {
		if cmd == nil {
			t.Fatal("sync stopped without a result")
		}
		_, cmd = m.Update(cmd())
	}
	if m.view != ResultView {
		t.Fatal("sync never completed")
	}
}

func TestSyncFlow(t *testing.T) {
	report := &tasks.SyncReport{Outcomes: []tasks.ArtistOutcome{{
		Artist:    models.Artist{ID: 1, Name: "AVRALIZE"},
		Confirmed: []tasks.ConfirmedRelease{{Release: models.Release{ID: "r9", Title: "neon"}, Tracks: 3}},
	}}}
	m := newTestModel(testLibrary(), &fakeEngine{report: report})

	runSync(t, m)

	if m.progress.Phase != tasks.CheckArtist {
		t.Errorf("progress phase = %v, want check_artist", m.progress.Phase)
	}
	view := m.View()
	for _, want := range []string{"Check Complete", "Found 1 new release for AVRALIZE", "neon"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in result view, got:\n%s", want, view)
		}
	}

	_, cmd := m.Update(keyPress("r"))
	if cmd == nil {
		t.Fatal("restart should reload artists")
	}
	m.Update(cmd())
	if m.view != ArtistListView || m.report != nil {
		t.Errorf("expected reset to artist list, view = %v report = %v", m.view, m.report)
	}
}

func TestSyncFailure(t *testing.T) {
	m := newTestModel(testLibrary(), &fakeEngine{err: shared.ErrSyncFailed})

	runSync(t, m)

	if !strings.Contains(m.View(), "Check failed") {
		t.Errorf("expected failure in view, got %q", m.View())
	}
}

func TestReleaseItem(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	item := releaseItem{release: models.Release{Title: "ghost", Kind: models.KindLive, CreatedAt: now, CheckedAt: &now}}

	if item.Title() != "ghost" || item.FilterValue() != "ghost" {
		t.Errorf("unexpected title %q", item.Title())
	}
	if !strings.Contains(item.Description(), "pending") {
		t.Errorf("expected pending status, got %q", item.Description())
	}
}
