package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/qbx/internal/models"
)

// PlaylistNameLayout formats the creation date used as the playlist name.
const PlaylistNameLayout = "2006-01-02"

// PlaylistResult describes one GeneratePlaylist call.
type PlaylistResult struct {
	Playlist *models.Playlist // nil when Skipped
	TrackIDs []int64
	Since    *time.Time // low-water mark, nil when no playlist existed
	Skipped  bool       // no eligible tracks, nothing written
}

// GeneratePlaylist selects tracks of verified releases created at or after the latest playlist,
// creates a catalog playlist named with the current date, and records it locally.
//
// The local row is written only after the catalog accepted both the playlist and its tracks.
func (e *CatalogEngine) GeneratePlaylist(ctx context.Context, progress chan<- ProgressUpdate) (*PlaylistResult, error) {
	latest, err := e.store.LatestPlaylist()
	if err != nil {
		return nil, err
	}

	result := &PlaylistResult{}
	if latest != nil {
		since := latest.CreatedAt
		result.Since = &since
	}

	ids, err := e.store.TrackIDsSince(result.Since)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, selectTracksUpdate(len(ids)))

	if len(ids) == 0 {
		e.logger.Info("no new tracks", "since", result.Since)
		result.Skipped = true
		return result, nil
	}
	result.TrackIDs = ids

	now := e.now()
	name := now.Format(PlaylistNameLayout)
	sendProgress(progress, createPlaylistUpdate(name, len(ids)))

	id, err := e.catalog.CreatePlaylist(ctx, name, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist %s: %w", name, err)
	}

	playlist := models.Playlist{ID: id, Name: name, CreatedAt: now}
	if err := e.store.CreatePlaylist(playlist); err != nil {
		return nil, fmt.Errorf("playlist %d was created remotely but not recorded: %w", id, err)
	}

	e.logger.Info("created playlist", "name", name, "id", id, "tracks", len(ids))
	result.Playlist = &playlist
	return result, nil
}

var _ PlaylistBuilder = (*CatalogEngine)(nil)
