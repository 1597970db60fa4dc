// package tasks implements the reconciliation engine and playlist builder.
//
// Operations return structured results and emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers. Rendering is left to the formatter package.
package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/services"
	"github.com/desertthunder/qbx/internal/shared"
)

// Store is the persistence the engines depend on. [repositories.Store] implements it.
type Store interface {
	UpsertArtist(a models.Artist) error
	ListArtists() ([]models.Artist, error)
	ArtistReleaseIDs(artistID int64) ([]string, error)
	PendingReleases(artistID int64) ([]models.Release, error)
	InsertReleases(artistID int64, releases []models.Release) (int, error)
	AddReleaseTracks(releaseID string, tracks []models.Track) error
	VerifyReleases(ids []string, at time.Time) (int, error)
	ReviveReleases(ids []string, at time.Time) (int, error)
	MarkChecked(ids []string, at time.Time) error
	TrackIDsSince(since *time.Time) ([]int64, error)
	LatestPlaylist() (*models.Playlist, error)
	CreatePlaylist(p models.Playlist) error
}

// SyncEngine keeps the store's view of each artist's discography in step with the catalog.
type SyncEngine interface {
	// LoadArtist records an artist and its current releases as an unverified baseline.
	LoadArtist(ctx context.Context, artistID int64) (*LoadResult, error)

	// SyncAll diffs every known artist against the catalog and confirms new releases by their tracks.
	SyncAll(ctx context.Context, progress chan<- ProgressUpdate) (*SyncReport, error)
}

// PlaylistBuilder turns confirmed tracks into a catalog playlist.
type PlaylistBuilder interface {
	// GeneratePlaylist creates a playlist of every verified track added since the previous playlist.
	GeneratePlaylist(ctx context.Context, progress chan<- ProgressUpdate) (*PlaylistResult, error)
}

// Options tunes a [CatalogEngine].
type Options struct {
	Workers         int              // artists processed concurrently during SyncAll, minimum 1
	RetryUnverified bool             // re-check releases that previously had no tracks
	Logger          *log.Logger      // defaults to a stderr logger
	Now             func() time.Time // defaults to time.Now
}

// CatalogEngine implements [SyncEngine] and [PlaylistBuilder].
type CatalogEngine struct {
	catalog         services.Catalog
	store           Store
	logger          *log.Logger
	workers         int
	retryUnverified bool
	now             func() time.Time
}

// NewCatalogEngine creates an engine over the given catalog and store.
func NewCatalogEngine(catalog services.Catalog, store Store, opts Options) *CatalogEngine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &CatalogEngine{
		catalog:         catalog,
		store:           store,
		logger:          opts.Logger,
		workers:         opts.Workers,
		retryUnverified: opts.RetryUnverified,
		now:             opts.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
