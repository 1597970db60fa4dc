// package services defines interface Catalog for the remote music catalog
package services

import (
	"context"

	"github.com/desertthunder/qbx/internal/models"
)

// Catalog is the remote music catalog consumed by the reconciliation engine and playlist builder.
type Catalog interface {
	// ArtistPage fetches an artist's display name and releases, flattened across kind groups in catalog order.
	ArtistPage(ctx context.Context, artistID int64) (*models.ArtistPage, error)

	// ReleaseTracks fetches the first page of tracks for a release.
	// A release the catalog cannot find yields an empty slice and no error.
	ReleaseTracks(ctx context.Context, releaseID string) ([]models.Track, error)

	// CreatePlaylist creates a private playlist, adds the tracks, and returns the playlist id.
	CreatePlaylist(ctx context.Context, name string, trackIDs []int64) (int64, error)

	// Name returns the name of the catalog (e.g., "Qobuz")
	Name() string
}
