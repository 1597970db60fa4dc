package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/shared"
)

// PlaylistRepository persists playlists created on the catalog.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a playlist. A zero CreatedAt is stamped with the current time.
func (r *PlaylistRepository) Create(playlist models.Playlist) error {
	createdAt := playlist.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := "INSERT INTO playlists (id, name, created_at) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, playlist.ID, playlist.Name, shared.FormatTime(createdAt)); err != nil {
		return fmt.Errorf("failed to insert playlist %d: %w", playlist.ID, err)
	}

	return nil
}

// Latest returns the most recently created playlist, or nil when none exists.
func (r *PlaylistRepository) Latest() (*models.Playlist, error) {
	row := r.db.QueryRow("SELECT id, name, created_at FROM playlists ORDER BY created_at DESC, id DESC LIMIT 1")

	p, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// List returns every playlist, newest first.
func (r *PlaylistRepository) List() ([]models.Playlist, error) {
	rows, err := r.db.Query("SELECT id, name, created_at FROM playlists ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

func scanPlaylist(s scanner) (*models.Playlist, error) {
	var (
		p         models.Playlist
		createdAt string
	)

	err := s.Scan(&p.ID, &p.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	if p.CreatedAt, err = shared.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("playlist %d: %w", p.ID, err)
	}

	return &p, nil
}
