package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/shared"
)

// TrackRepository persists tracks and their release membership.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// AddToRelease inserts tracks and links them to the release in one transaction.
func (r *TrackRepository) AddToRelease(releaseID string, tracks []models.Track) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tracks {
		if _, err := tx.Exec("INSERT OR IGNORE INTO tracks (id, title) VALUES (?, ?)", t.ID, t.Title); err != nil {
			return fmt.Errorf("failed to insert track %d: %w", t.ID, err)
		}

		_, err := tx.Exec("INSERT OR IGNORE INTO tracks_2_releases (release_id, track_id) VALUES (?, ?)", releaseID, t.ID)
		if err != nil {
			return fmt.Errorf("failed to link track %d to release %q: %w", t.ID, releaseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tracks: %w", err)
	}

	return nil
}

// ForRelease returns the release's tracks ordered by id.
func (r *TrackRepository) ForRelease(releaseID string) ([]models.Track, error) {
	query := `
		SELECT t.id, t.title
		FROM tracks t
		JOIN tracks_2_releases tr ON tr.track_id = t.id
		WHERE tr.release_id = ?
		ORDER BY t.id ASC
	`

	rows, err := r.db.Query(query, releaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.Title); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// IDsSince returns the distinct ids of tracks on verified releases created at or after since.
// A nil since selects every verified track. Ids are ordered by release created_at, then track id.
func (r *TrackRepository) IDsSince(since *time.Time) ([]int64, error) {
	query := `
		SELECT tr.track_id
		FROM tracks_2_releases tr
		JOIN releases r ON r.id = tr.release_id
		WHERE r.verified = 1
	`
	var args []any
	if since != nil {
		query += " AND r.created_at >= ?"
		args = append(args, shared.FormatTime(*since))
	}
	query += " GROUP BY tr.track_id ORDER BY MIN(r.created_at) ASC, tr.track_id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist tracks: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan track id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}
