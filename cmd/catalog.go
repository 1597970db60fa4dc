package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/qbx/internal/formatter"
	"github.com/desertthunder/qbx/internal/shared"
	"github.com/desertthunder/qbx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Load records an artist and its current releases as the baseline for future checks.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) error {
	artistID, err := parseArtistID(cmd.StringArg("artist_id"))
	if err != nil {
		return err
	}

	s, err := r.open(sessionOpts{catalog: true, lock: true})
	if err != nil {
		return err
	}
	defer s.Close()

	r.logger.Info("loading artist", "artist_id", artistID)
	result, err := s.engine.LoadArtist(ctx, artistID)
	if err != nil {
		return err
	}
	r.logger.Debug("artist loaded", "artist", result.Artist.Name, "listed", result.Loaded, "inserted", result.Inserted)

	return formatter.WriteLoad(r.output, result)
}

// Check diffs every tracked artist against the catalog and reports confirmed new releases.
func (r *Runner) Check(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(sessionOpts{catalog: true, lock: true})
	if err != nil {
		return err
	}
	defer s.Close()

	return r.check(ctx, s)
}

// GenPlaylist creates a playlist from verified tracks added since the previous playlist.
func (r *Runner) GenPlaylist(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(sessionOpts{catalog: true, lock: true})
	if err != nil {
		return err
	}
	defer s.Close()

	return r.genPlaylist(ctx, s)
}

// CheckGen runs [Runner.Check] then [Runner.GenPlaylist] under one lock.
//
// A sync where every artist failed stops before the playlist step.
func (r *Runner) CheckGen(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(sessionOpts{catalog: true, lock: true})
	if err != nil {
		return err
	}
	defer s.Close()

	if err := r.check(ctx, s); err != nil {
		return err
	}
	if err := r.writePlain("\n"); err != nil {
		return err
	}
	return r.genPlaylist(ctx, s)
}

// List prints tracked artists sorted by name.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(sessionOpts{})
	if err != nil {
		return err
	}
	defer s.Close()

	artists, err := s.store.ListArtists()
	if err != nil {
		return err
	}
	return formatter.WriteArtists(r.output, artists)
}

// Show prints the stored releases of the artist with the given name.
func (r *Runner) Show(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: artist name", shared.ErrMissingArgument)
	}

	s, err := r.open(sessionOpts{})
	if err != nil {
		return err
	}
	defer s.Close()

	artist, err := s.store.Artists.GetByName(name)
	if err != nil {
		return err
	}
	releases, err := s.store.ArtistReleases(artist.ID)
	if err != nil {
		return err
	}
	return formatter.WriteArtistDetail(r.output, *artist, releases)
}

// Playlists prints the playlists generated so far.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(sessionOpts{})
	if err != nil {
		return err
	}
	defer s.Close()

	playlists, err := s.store.Playlists.List()
	if err != nil {
		return err
	}
	return formatter.WritePlaylists(r.output, playlists)
}

func (r *Runner) check(ctx context.Context, s *session) error {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := r.watchProgress(progressCh)

	report, err := s.engine.SyncAll(ctx, progressCh)
	close(progressCh)
	<-done

	if report != nil {
		r.logger.Debug("sync finished", "run_id", report.RunID, "new", report.NewReleases(), "failed", len(report.Failed()))
		if werr := formatter.WriteSync(r.output, report); werr != nil {
			return werr
		}
	}
	return err
}

func (r *Runner) genPlaylist(ctx context.Context, s *session) error {
	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := r.watchProgress(progressCh)

	result, err := s.engine.GeneratePlaylist(ctx, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}
	return formatter.WritePlaylist(r.output, result)
}

func parseArtistID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: artist_id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: artist_id must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}
