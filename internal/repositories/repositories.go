// package repositories provides persistence layer implementations for all model types.
package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/shared"
)

// Store aggregates the repositories behind one database handle.
type Store struct {
	db        *sql.DB
	Artists   *ArtistRepository
	Releases  *ReleaseRepository
	Tracks    *TrackRepository
	Playlists *PlaylistRepository
}

// NewStore creates a Store over db. Migrations must already be applied.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		Artists:   NewArtistRepository(db),
		Releases:  NewReleaseRepository(db),
		Tracks:    NewTrackRepository(db),
		Playlists: NewPlaylistRepository(db),
	}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) UpsertArtist(a models.Artist) error { return s.Artists.Upsert(a) }

func (s *Store) ListArtists() ([]models.Artist, error) { return s.Artists.List() }

func (s *Store) ArtistReleaseIDs(artistID int64) ([]string, error) {
	return s.Artists.ReleaseIDs(artistID)
}

func (s *Store) ArtistReleases(artistID int64) ([]models.Release, error) {
	return s.Releases.ForArtist(artistID)
}

func (s *Store) PendingReleases(artistID int64) ([]models.Release, error) {
	return s.Releases.Pending(artistID)
}

func (s *Store) InsertReleases(artistID int64, releases []models.Release) (int, error) {
	return s.Releases.InsertForArtist(artistID, releases)
}

func (s *Store) AddReleaseTracks(releaseID string, tracks []models.Track) error {
	return s.Tracks.AddToRelease(releaseID, tracks)
}

func (s *Store) VerifyReleases(ids []string, at time.Time) (int, error) {
	return s.Releases.Verify(ids, at)
}

func (s *Store) ReviveReleases(ids []string, at time.Time) (int, error) {
	return s.Releases.Revive(ids, at)
}

func (s *Store) MarkChecked(ids []string, at time.Time) error {
	return s.Releases.MarkChecked(ids, at)
}

func (s *Store) TrackIDsSince(since *time.Time) ([]int64, error) {
	return s.Tracks.IDsSince(since)
}

func (s *Store) LatestPlaylist() (*models.Playlist, error) { return s.Playlists.Latest() }

func (s *Store) CreatePlaylist(p models.Playlist) error { return s.Playlists.Create(p) }

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(ids []string, prefix ...any) []any {
	args := make([]any, 0, len(prefix)+len(ids))
	args = append(args, prefix...)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

func validate(m models.Model) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := shared.ParseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
