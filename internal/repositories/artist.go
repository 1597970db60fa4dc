package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/shared"
)

// ArtistRepository persists followed artists.
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new ArtistRepository with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Upsert inserts the artist or refreshes the stored name.
func (r *ArtistRepository) Upsert(artist models.Artist) error {
	if err := validate(artist); err != nil {
		return err
	}

	query := `
		INSERT INTO artists (id, name) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name
	`
	if _, err := r.db.Exec(query, artist.ID, artist.Name); err != nil {
		return fmt.Errorf("failed to upsert artist %d: %w", artist.ID, err)
	}
	return nil
}

// Get retrieves an artist by id.
func (r *ArtistRepository) Get(id int64) (*models.Artist, error) {
	return r.scanOne(r.db.QueryRow("SELECT id, name FROM artists WHERE id = ?", id), fmt.Sprint(id))
}

// GetByName retrieves an artist by name, ignoring case.
func (r *ArtistRepository) GetByName(name string) (*models.Artist, error) {
	query := "SELECT id, name FROM artists WHERE name = ? COLLATE NOCASE ORDER BY id LIMIT 1"
	return r.scanOne(r.db.QueryRow(query, name), name)
}

// List returns every artist ordered by id.
func (r *ArtistRepository) List() ([]models.Artist, error) {
	rows, err := r.db.Query("SELECT id, name FROM artists ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var artists []models.Artist
	for rows.Next() {
		var a models.Artist
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return artists, nil
}

// ReleaseIDs returns the ids of every release associated with the artist.
func (r *ArtistRepository) ReleaseIDs(artistID int64) ([]string, error) {
	rows, err := r.db.Query("SELECT release_id FROM artists_2_releases WHERE artist_id = ? ORDER BY release_id", artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query release ids for artist %d: %w", artistID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan release id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

func (r *ArtistRepository) scanOne(row *sql.Row, key string) (*models.Artist, error) {
	var a models.Artist
	err := row.Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}
	return &a, nil
}
