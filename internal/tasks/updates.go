package tasks

import (
	"fmt"

	"github.com/desertthunder/qbx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchArtists Phase = iota
	CheckArtist
	FetchTracks
	SelectTracks
	CreatePlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchArtists:
		return "fetch_artists"
	case CheckArtist:
		return "check_artist"
	case FetchTracks:
		return "fetch_tracks"
	case SelectTracks:
		return "select_tracks"
	case CreatePlaylist:
		return "create_playlist"
	default:
		return ""
	}
}

func fetchArtistsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchArtists,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Checking %d artists", total),
	}
}

func checkArtistUpdate(step, total int, artist models.Artist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckArtist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, artist.Name),
		Data:    artist,
	}
}

func artistDoneUpdate(step, total int, outcome *ArtistOutcome) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✓ %s (%d new)", step, total, outcome.Artist.Name, len(outcome.Confirmed))
	if outcome.Err != nil {
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, outcome.Artist.Name, outcome.Err)
	}
	return ProgressUpdate{
		Phase:   CheckArtist,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    outcome,
	}
}

func fetchTracksUpdate(step, total int, rel models.Release) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching tracks for %s...", rel.Title),
	}
}

func selectTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SelectTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Selected %d tracks", count),
	}
}

func createPlaylistUpdate(name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %s with %d tracks...", name, count),
	}
}
