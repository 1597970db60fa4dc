// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/repositories"
	"github.com/desertthunder/qbx/internal/shared"
)

// MockCatalog is a test double for [services.Catalog]. It is safe for concurrent use.
//
// Pages and Tracks may be changed between calls to simulate the catalog evolving.
// A release missing from Tracks behaves like a 404 and yields no tracks.
type MockCatalog struct {
	mu sync.Mutex

	Pages        map[int64]*models.ArtistPage
	Tracks       map[string][]models.Track
	PageErrs     map[int64]error
	TrackErrs    map[string]error
	CreateErr    error
	NextPlaylist int64
	TrackCalls   []string
	CreatedLists []CreatedPlaylist
	artistCalls  map[int64]int
}

// CreatedPlaylist records one CreatePlaylist call.
type CreatedPlaylist struct {
	ID       int64
	Name     string
	TrackIDs []int64
}

// NewMockCatalog returns an empty catalog whose first playlist id is 1000.
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Pages:        map[int64]*models.ArtistPage{},
		Tracks:       map[string][]models.Track{},
		PageErrs:     map[int64]error{},
		TrackErrs:    map[string]error{},
		NextPlaylist: 1000,
		artistCalls:  map[int64]int{},
	}
}

// SetArtist replaces the artist's page.
func (m *MockCatalog) SetArtist(id int64, name string, releases ...models.ReleaseSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pages[id] = &models.ArtistPage{ID: id, Name: name, Releases: releases}
}

// AddRelease appends a release to an existing artist page.
func (m *MockCatalog) AddRelease(artistID int64, r models.ReleaseSummary, tracks ...models.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page := m.Pages[artistID]
	page.Releases = append(page.Releases, r)
	if len(tracks) > 0 {
		m.Tracks[r.ID] = tracks
	}
}

// SetTracks replaces a release's tracks.
func (m *MockCatalog) SetTracks(releaseID string, tracks ...models.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tracks[releaseID] = tracks
}

// ArtistCalls reports how many times the artist page was fetched.
func (m *MockCatalog) ArtistCalls(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.artistCalls[id]
}

func (m *MockCatalog) ArtistPage(ctx context.Context, artistID int64) (*models.ArtistPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artistCalls[artistID]++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.PageErrs[artistID]; err != nil {
		return nil, err
	}
	page, ok := m.Pages[artistID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", shared.ErrArtistNotFound, artistID)
	}
	cp := *page
	cp.Releases = slices.Clone(page.Releases)
	return &cp, nil
}

func (m *MockCatalog) ReleaseTracks(ctx context.Context, releaseID string) ([]models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrackCalls = append(m.TrackCalls, releaseID)
	if err := m.TrackErrs[releaseID]; err != nil {
		return nil, err
	}
	return slices.Clone(m.Tracks[releaseID]), nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, name string, trackIDs []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	id := m.NextPlaylist
	m.NextPlaylist++
	m.CreatedLists = append(m.CreatedLists, CreatedPlaylist{ID: id, Name: name, TrackIDs: slices.Clone(trackIDs)})
	return id, nil
}

func (m *MockCatalog) Name() string { return "mock" }

// NewTestStore opens an in-memory database with migrations applied and closes it with the test.
func NewTestStore(t *testing.T) *repositories.Store {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return repositories.NewStore(db)
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock stopped at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
