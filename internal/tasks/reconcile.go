package tasks

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/shared"
	"golang.org/x/sync/errgroup"
)

// LoadResult describes one LoadArtist call.
type LoadResult struct {
	Artist   models.Artist
	Loaded   int // releases listed by the catalog
	Inserted int // releases that were not already stored
}

// ConfirmedRelease is a release whose tracks were fetched and stored during a sync.
type ConfirmedRelease struct {
	Release models.Release
	Tracks  int
	Revived bool // previously checked without tracks
}

// ArtistOutcome is the result of checking one artist.
type ArtistOutcome struct {
	Artist     models.Artist
	Candidates []models.ReleaseSummary // remote releases not known before this run, catalog order
	Confirmed  []ConfirmedRelease      // releases with tracks, fetch order
	Bogus      []models.Release        // releases the catalog listed without tracks
	Err        error
}

// SyncReport collects the outcome of every artist in artist-id order.
type SyncReport struct {
	RunID    string
	Outcomes []ArtistOutcome
}

// NewReleases counts confirmed releases across all artists.
func (r *SyncReport) NewReleases() int {
	n := 0
	for _, o := range r.Outcomes {
		n += len(o.Confirmed)
	}
	return n
}

// Failed returns the outcomes that ended in an error.
func (r *SyncReport) Failed() []ArtistOutcome {
	var failed []ArtistOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// LoadArtist fetches the artist page, upserts the artist, and stores every listed release as an
// unverified baseline in one transaction. Catalog errors abort before anything is written.
func (e *CatalogEngine) LoadArtist(ctx context.Context, artistID int64) (*LoadResult, error) {
	page, err := e.catalog.ArtistPage(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artist %d: %w", artistID, err)
	}

	artist := models.Artist{ID: artistID, Name: page.Name}
	if err := e.store.UpsertArtist(artist); err != nil {
		return nil, err
	}

	now := e.now()
	releases := make([]models.Release, len(page.Releases))
	for i, r := range page.Releases {
		releases[i] = models.Release{ID: r.ID, Title: r.Title, Kind: r.Kind, CreatedAt: now}
	}

	inserted, err := e.store.InsertReleases(artistID, releases)
	if err != nil {
		return nil, fmt.Errorf("failed to store releases for %s: %w", artist.Name, err)
	}

	e.logger.Info("loaded artist", "artist", artist.Name, "id", artistID, "releases", len(releases), "inserted", inserted)
	return &LoadResult{Artist: artist, Loaded: len(releases), Inserted: inserted}, nil
}

// SyncAll checks every stored artist. Failures are isolated per artist and recorded in the outcome;
// an error is returned only when every artist failed.
func (e *CatalogEngine) SyncAll(ctx context.Context, progress chan<- ProgressUpdate) (*SyncReport, error) {
	report := &SyncReport{RunID: shared.GenerateID()}
	logger := shared.WithLogger(e.logger, "run", report.RunID)

	artists, err := e.store.ListArtists()
	if err != nil {
		return nil, err
	}

	total := len(artists)
	sendProgress(progress, fetchArtistsUpdate(total))
	logger.Info("starting sync", "artists", total, "workers", e.workers)

	report.Outcomes = make([]ArtistOutcome, total)
	if total == 0 {
		return report, nil
	}

	var (
		g    errgroup.Group
		done atomic.Int32
	)
	g.SetLimit(e.workers)

	for i, artist := range artists {
		g.Go(func() error {
			sendProgress(progress, checkArtistUpdate(i+1, total, artist))

			outcome := e.syncArtist(ctx, artist, progress, shared.WithLogger(logger, "artist", artist.Name))
			report.Outcomes[i] = outcome

			sendProgress(progress, artistDoneUpdate(int(done.Add(1)), total, &outcome))
			return nil
		})
	}
	_ = g.Wait()

	failed := report.Failed()
	logger.Info("sync finished", "new", report.NewReleases(), "failed", len(failed))

	if len(failed) == total {
		return report, fmt.Errorf("%w: all %d artists failed, first error: %w", shared.ErrSyncFailed, total, failed[0].Err)
	}
	return report, nil
}

// syncArtist runs the diff, track check, and verify steps for one artist.
//
// Releases confirmed before an error are still verified so their tracks are not orphaned.
func (e *CatalogEngine) syncArtist(ctx context.Context, artist models.Artist, progress chan<- ProgressUpdate, logger *log.Logger) ArtistOutcome {
	out := ArtistOutcome{Artist: artist}

	known, err := e.store.ArtistReleaseIDs(artist.ID)
	if err != nil {
		out.Err = err
		logger.Error("failed to read known releases", "err", err)
		return out
	}

	page, err := e.catalog.ArtistPage(ctx, artist.ID)
	if err != nil {
		out.Err = fmt.Errorf("failed to fetch artist page: %w", err)
		logger.Error("failed to check artist", "err", err)
		return out
	}

	if page.Name != "" && page.Name != artist.Name {
		out.Artist.Name = page.Name
		if err := e.store.UpsertArtist(out.Artist); err != nil {
			out.Err = err
			return out
		}
		logger.Info("artist renamed", "name", page.Name)
	}

	out.Candidates = diffReleases(page.Releases, known)

	var retry []models.Release
	if e.retryUnverified {
		if retry, err = e.store.PendingReleases(artist.ID); err != nil {
			out.Err = err
			return out
		}
	}

	if len(out.Candidates) == 0 && len(retry) == 0 {
		logger.Debug("no new releases")
		return out
	}

	now := e.now()
	candidates := make([]models.Release, len(out.Candidates))
	for i, c := range out.Candidates {
		candidates[i] = models.Release{ID: c.ID, Title: c.Title, Kind: c.Kind, CreatedAt: now, CheckedAt: &now}
	}

	if len(candidates) > 0 {
		if _, err := e.store.InsertReleases(artist.ID, candidates); err != nil {
			out.Err = err
			return out
		}
	}

	checks := make([]trackCheck, 0, len(candidates)+len(retry))
	for _, r := range candidates {
		checks = append(checks, trackCheck{release: r})
	}
	for _, r := range retry {
		checks = append(checks, trackCheck{release: r, revive: true})
	}

	for i, p := range checks {
		sendProgress(progress, fetchTracksUpdate(i+1, len(checks), p.release))

		tracks, err := e.catalog.ReleaseTracks(ctx, p.release.ID)
		if err != nil {
			out.Err = fmt.Errorf("failed to fetch tracks for %q: %w", p.release.Title, err)
			break
		}

		if len(tracks) == 0 {
			logger.Debug("release has no tracks", "release", p.release.ID, "title", p.release.Title)
			out.Bogus = append(out.Bogus, p.release)
			continue
		}

		if err := e.store.AddReleaseTracks(p.release.ID, tracks); err != nil {
			out.Err = err
			break
		}
		out.Confirmed = append(out.Confirmed, ConfirmedRelease{Release: p.release, Tracks: len(tracks), Revived: p.revive})
	}

	if err := e.settle(&out, now); err != nil && out.Err == nil {
		out.Err = err
	}

	if out.Err != nil {
		logger.Error("failed to check artist", "err", out.Err, "confirmed", len(out.Confirmed))
	} else if len(out.Confirmed) > 0 {
		logger.Info("found new releases", "count", len(out.Confirmed))
	}
	return out
}

type trackCheck struct {
	release models.Release
	revive  bool
}

// settle writes the verification state gathered by the track checks. Confirmed new releases
// are dated at the sync time of their insertion.
func (e *CatalogEngine) settle(out *ArtistOutcome, inserted time.Time) error {
	at := e.now()

	var fresh, revived []string
	for i := range out.Confirmed {
		c := &out.Confirmed[i]
		c.Release.Verified = true
		c.Release.CheckedAt = nil
		if c.Revived {
			c.Release.CreatedAt = at
			revived = append(revived, c.Release.ID)
		} else {
			c.Release.CreatedAt = inserted
			fresh = append(fresh, c.Release.ID)
		}
	}

	bogus := make([]string, len(out.Bogus))
	for i := range out.Bogus {
		out.Bogus[i].CheckedAt = &at
		bogus[i] = out.Bogus[i].ID
	}

	if _, err := e.store.VerifyReleases(fresh, inserted); err != nil {
		return err
	}
	if _, err := e.store.ReviveReleases(revived, at); err != nil {
		return err
	}
	return e.store.MarkChecked(bogus, at)
}

// diffReleases returns the remote releases whose ids are not in known, in catalog order.
// A release listed under more than one kind group is returned once.
func diffReleases(remote []models.ReleaseSummary, known []string) []models.ReleaseSummary {
	seen := make(map[string]struct{}, len(known)+len(remote))
	for _, id := range known {
		seen[id] = struct{}{}
	}

	var out []models.ReleaseSummary
	for _, r := range remote {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

var _ SyncEngine = (*CatalogEngine)(nil)
