package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/shared"
)

// ReleaseRepository persists releases and their verification state.
type ReleaseRepository struct {
	db *sql.DB
}

// NewReleaseRepository creates a new ReleaseRepository with the given database connection
func NewReleaseRepository(db *sql.DB) *ReleaseRepository {
	return &ReleaseRepository{db: db}
}

const releaseColumns = "r.id, r.title, r.release_type_id, r.created_at, r.verified, r.checked_at"

// InsertForArtist inserts releases and associates them with the artist in one transaction.
//
// Existing releases keep their stored title, kind, and state; only the association is added.
// Returns the number of release rows actually inserted.
func (r *ReleaseRepository) InsertForArtist(artistID int64, releases []models.Release) (int, error) {
	for _, rel := range releases {
		if err := validate(rel); err != nil {
			return 0, fmt.Errorf("release %q: %w", rel.ID, err)
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, rel := range releases {
		createdAt := rel.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		var checkedAt any
		if rel.CheckedAt != nil {
			checkedAt = shared.FormatTime(*rel.CheckedAt)
		}

		res, err := tx.Exec(`
			INSERT OR IGNORE INTO releases (id, title, release_type_id, created_at, verified, checked_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, rel.ID, rel.Title, rel.Kind, shared.FormatTime(createdAt), rel.Verified, checkedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to insert release %q: %w", rel.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}

		_, err = tx.Exec("INSERT OR IGNORE INTO artists_2_releases (artist_id, release_id) VALUES (?, ?)", artistID, rel.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to associate release %q with artist %d: %w", rel.ID, artistID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit releases: %w", err)
	}

	return inserted, nil
}

// Get retrieves a release by id.
func (r *ReleaseRepository) Get(id string) (*models.Release, error) {
	row := r.db.QueryRow("SELECT "+releaseColumns+" FROM releases r WHERE r.id = ?", id)
	rel, err := scanRelease(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("release not found: %s", id)
	}
	return rel, err
}

// ForArtist returns the artist's releases, oldest first.
func (r *ReleaseRepository) ForArtist(artistID int64) ([]models.Release, error) {
	query := `
		SELECT ` + releaseColumns + `
		FROM releases r
		JOIN artists_2_releases ar ON ar.release_id = r.id
		WHERE ar.artist_id = ?
		ORDER BY r.created_at ASC, r.id ASC
	`
	return r.list(query, artistID)
}

// Pending returns the artist's releases that were checked without finding tracks.
func (r *ReleaseRepository) Pending(artistID int64) ([]models.Release, error) {
	query := `
		SELECT ` + releaseColumns + `
		FROM releases r
		JOIN artists_2_releases ar ON ar.release_id = r.id
		WHERE ar.artist_id = ? AND r.verified = 0 AND r.checked_at IS NOT NULL
		ORDER BY r.created_at ASC, r.id ASC
	`
	return r.list(query, artistID)
}

// Verify marks releases verified. Releases without a track association are left untouched.
// Unverified rows stored before at, such as another artist's baseline, are re-dated to at so
// the next playlist selects them. Returns the number of releases updated.
func (r *ReleaseRepository) Verify(ids []string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	stamp := shared.FormatTime(at)
	query := `
		UPDATE releases SET verified = 1, checked_at = NULL,
			created_at = CASE WHEN verified = 0 AND created_at < ? THEN ? ELSE created_at END
		WHERE id IN (` + placeholders(len(ids)) + `)
		AND EXISTS (SELECT 1 FROM tracks_2_releases tr WHERE tr.release_id = releases.id)
	`
	return r.update(query, stringArgs(ids, stamp, stamp), "verify")
}

// Revive verifies previously bogus releases and moves their created_at to at, so they are
// selected by the next playlist.
func (r *ReleaseRepository) Revive(ids []string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE releases SET verified = 1, checked_at = NULL, created_at = ?
		WHERE verified = 0 AND id IN (` + placeholders(len(ids)) + `)
		AND EXISTS (SELECT 1 FROM tracks_2_releases tr WHERE tr.release_id = releases.id)
	`
	return r.update(query, stringArgs(ids, shared.FormatTime(at)), "revive")
}

// MarkChecked records a track check that found no tracks.
func (r *ReleaseRepository) MarkChecked(ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE releases SET checked_at = ?
		WHERE verified = 0 AND id IN (` + placeholders(len(ids)) + `)
	`
	_, err := r.update(query, stringArgs(ids, shared.FormatTime(at)), "mark checked")
	return err
}

func (r *ReleaseRepository) update(query string, args []any, op string) (int, error) {
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to %s releases: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(rows), nil
}

func (r *ReleaseRepository) list(query string, args ...any) ([]models.Release, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query releases: %w", err)
	}
	defer rows.Close()

	var releases []models.Release
	for rows.Next() {
		rel, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		releases = append(releases, *rel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return releases, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRelease(s scanner) (*models.Release, error) {
	var (
		rel       models.Release
		createdAt string
		checkedAt sql.NullString
	)

	err := s.Scan(&rel.ID, &rel.Title, &rel.Kind, &createdAt, &rel.Verified, &checkedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan release: %w", err)
	}

	if rel.CreatedAt, err = shared.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("release %q: %w", rel.ID, err)
	}
	if rel.CheckedAt, err = parseNullTime(checkedAt); err != nil {
		return nil, fmt.Errorf("release %q: %w", rel.ID, err)
	}

	return &rel, nil
}
