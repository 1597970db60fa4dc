package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/shared"
	tu "github.com/desertthunder/qbx/internal/testing"
)

type fixture struct {
	config  *shared.Config
	catalog *tu.MockCatalog
	clock   *tu.Clock
	output  *bytes.Buffer
	runner  *Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "music.db3")

	f := &fixture{
		config:  config,
		catalog: tu.NewMockCatalog(),
		clock:   tu.NewClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
		output:  &bytes.Buffer{},
	}
	f.runner = NewRunner(RunnerOpts{
		Config:   config,
		Catalog:  f.catalog,
		Logger:   shared.NewLogger(io.Discard),
		Output:   f.output,
		Progress: io.Discard,
		Now:      f.clock.Now,
	})
	return f
}

// run executes args against a fresh command tree and returns what was written to the output.
func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	f.output.Reset()
	err := newApp(f.runner).Run(context.Background(), append([]string{"qbx"}, args...))
	return f.output.String(), err
}

func (f *fixture) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := f.run(t, args...)
	if err != nil {
		t.Fatalf("qbx %s failed: %v", strings.Join(args, " "), err)
	}
	return out
}

func avralize(f *fixture) {
	releases := make([]models.ReleaseSummary, 7)
	for i := range releases {
		releases[i] = models.ReleaseSummary{ID: fmt.Sprintf("base-%d", i), Title: fmt.Sprintf("old %d", i), Kind: models.KindAlbum}
	}
	f.catalog.SetArtist(123, "AVRALIZE", releases...)
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			catalog := tu.NewMockCatalog()

			runner := NewRunner(RunnerOpts{Config: config, Logger: logger, Output: output, Catalog: catalog})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config != nil {
				t.Error("expected config to be loaded lazily")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.progress == nil {
				t.Error("expected progress writer to be set")
			}
			if runner.lookupEnv == nil {
				t.Error("expected env lookup to be set")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted text", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("Hello %s %d", "world", 42); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "Hello world 42" {
				t.Errorf("expected 'Hello world 42', got %s", output.String())
			}
		})

		t.Run("returns error on write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})
}

func TestConfigure(t *testing.T) {
	env := func(vars map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		}
	}

	t.Run("loads file then environment", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		dbPath := filepath.Join(dir, "from-file.db3")
		content := fmt.Sprintf("[database]\npath = %q\n\n[sync]\nworkers = 3\n", dbPath)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		runner := NewRunner(RunnerOpts{
			Logger:    shared.NewLogger(io.Discard),
			Output:    &bytes.Buffer{},
			LookupEnv: env(map[string]string{shared.EnvAuthToken: "tok", shared.EnvLogLevel: "debug"}),
		})
		if err := newApp(runner).Run(context.Background(), []string{"qbx", "--config", path, "list"}); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if runner.config == nil {
			t.Fatal("expected config to be loaded")
		}
		if runner.config.Database.Path != dbPath {
			t.Errorf("expected file database path, got %s", runner.config.Database.Path)
		}
		if runner.config.Sync.Workers != 3 {
			t.Errorf("expected 3 workers, got %d", runner.config.Sync.Workers)
		}
		if runner.config.Catalog.AuthToken != "tok" {
			t.Errorf("expected env token, got %q", runner.config.Catalog.AuthToken)
		}
		if runner.config.LogLevel().String() != "debug" {
			t.Errorf("expected debug level, got %s", runner.config.LogLevel())
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Logger:    shared.NewLogger(io.Discard),
			Output:    &bytes.Buffer{},
			LookupEnv: env(map[string]string{shared.EnvLogLevel: "loud"}),
		})
		missing := filepath.Join(t.TempDir(), "absent.toml")

		err := newApp(runner).Run(context.Background(), []string{"qbx", "--config", missing, "list"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("preset config is kept", func(t *testing.T) {
		f := newFixture(t)
		f.mustRun(t, "list")
		if f.runner.config != f.config {
			t.Error("expected preset config to be used")
		}
	})
}

func TestCatalogCommands(t *testing.T) {
	t.Run("list with no artists prints nothing", func(t *testing.T) {
		f := newFixture(t)
		if out := f.mustRun(t, "list"); out != "" {
			t.Errorf("expected empty output, got %q", out)
		}
	})

	t.Run("load prints the artist and release count", func(t *testing.T) {
		f := newFixture(t)
		avralize(f)

		out := f.mustRun(t, "load", "123")
		if want := "Loading data for 'AVRALIZE'\nLoaded 7 releases\n"; out != want {
			t.Errorf("expected %q, got %q", want, out)
		}

		if out := f.mustRun(t, "list"); out != "AVRALIZE\n" {
			t.Errorf("expected artist listed, got %q", out)
		}
	})

	t.Run("list sorts case-insensitively", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.SetArtist(1, "zeta")
		f.catalog.SetArtist(2, "Alpha")
		f.catalog.SetArtist(3, "beta")
		for _, id := range []string{"1", "2", "3"} {
			f.mustRun(t, "load", id)
		}

		if out := f.mustRun(t, "ls"); out != "Alpha\nbeta\nzeta\n" {
			t.Errorf("unexpected order %q", out)
		}
	})

	t.Run("check reports confirmed releases", func(t *testing.T) {
		f := newFixture(t)
		avralize(f)
		f.mustRun(t, "load", "123")

		f.clock.Advance(time.Hour)
		f.catalog.AddRelease(123, models.ReleaseSummary{ID: "new-1", Title: "helium", Kind: models.KindEpSingle}, models.Track{ID: 501, Title: "helium"})

		out := f.mustRun(t, "check")
		if want := "Checking 1 artists\n\nFound 1 new release for AVRALIZE\n  • helium\n"; out != want {
			t.Errorf("expected %q, got %q", want, out)
		}

		out = f.mustRun(t, "check")
		if want := "Checking 1 artists\n\nNo new music found\n"; out != want {
			t.Errorf("expected %q, got %q", want, out)
		}
	})

	t.Run("playlist generation is windowed by the previous playlist", func(t *testing.T) {
		f := newFixture(t)
		avralize(f)
		f.mustRun(t, "load", "123")

		if out := f.mustRun(t, "gen-playlist"); out != "No new tracks. Skipping playlist creation\n" {
			t.Errorf("baseline releases must not be collected, got %q", out)
		}

		f.clock.Advance(time.Hour)
		f.catalog.AddRelease(123, models.ReleaseSummary{ID: "new-1", Title: "helium", Kind: models.KindAlbum},
			models.Track{ID: 501, Title: "a"}, models.Track{ID: 502, Title: "b"})
		f.mustRun(t, "check")

		f.clock.Advance(time.Hour)
		if out := f.mustRun(t, "gen-playlist"); out != "Created playlist: 2024-03-01\n" {
			t.Errorf("unexpected output %q", out)
		}
		if len(f.catalog.CreatedLists) != 1 || len(f.catalog.CreatedLists[0].TrackIDs) != 2 {
			t.Fatalf("expected one playlist with two tracks, got %+v", f.catalog.CreatedLists)
		}

		f.clock.Advance(time.Hour)
		if out := f.mustRun(t, "gen-playlist"); out != "No new tracks. Skipping playlist creation\n" {
			t.Errorf("expected skip after playlist, got %q", out)
		}

		out := f.mustRun(t, "playlists")
		if !strings.Contains(out, "2024-03-01") || !strings.Contains(out, "1000") {
			t.Errorf("expected playlist history, got %q", out)
		}
	})

	t.Run("check-gen runs both steps", func(t *testing.T) {
		f := newFixture(t)
		avralize(f)
		f.mustRun(t, "load", "123")

		f.clock.Advance(time.Hour)
		f.catalog.AddRelease(123, models.ReleaseSummary{ID: "new-1", Title: "helium", Kind: models.KindAlbum}, models.Track{ID: 501, Title: "a"})

		out := f.mustRun(t, "check-gen")
		want := "Checking 1 artists\n\nFound 1 new release for AVRALIZE\n  • helium\n\nCreated playlist: 2024-03-01\n"
		if out != want {
			t.Errorf("expected %q, got %q", want, out)
		}
	})

	t.Run("list-artist shows release states", func(t *testing.T) {
		f := newFixture(t)
		avralize(f)
		f.mustRun(t, "load", "123")

		f.clock.Advance(time.Hour)
		f.catalog.AddRelease(123, models.ReleaseSummary{ID: "new-1", Title: "helium", Kind: models.KindAlbum}, models.Track{ID: 501, Title: "a"})
		f.catalog.AddRelease(123, models.ReleaseSummary{ID: "ghost-1", Title: "ghost", Kind: models.KindAlbum})
		f.mustRun(t, "check")

		out := f.mustRun(t, "list-artist", "avralize")
		for _, want := range []string{"AVRALIZE (123)", "helium", "verified", "ghost", "pending", "baseline"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("list-artist unknown name", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.run(t, "list-artist", "nobody"); !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
	})
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "load without id", args: []string{"load"}, want: shared.ErrMissingArgument},
		{name: "load with bad id", args: []string{"load", "abc"}, want: shared.ErrInvalidArgument},
		{name: "load with zero id", args: []string{"load", "0"}, want: shared.ErrInvalidArgument},
		{name: "load unknown artist", args: []string{"load", "999"}, want: shared.ErrArtistNotFound},
		{name: "list-artist without name", args: []string{"list-artist"}, want: shared.ErrMissingArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if _, err := f.run(t, tt.args...); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("check fails when every artist fails", func(t *testing.T) {
		f := newFixture(t)
		avralize(f)
		f.mustRun(t, "load", "123")
		f.catalog.PageErrs[123] = shared.ErrTimeout

		out, err := f.run(t, "check")
		if !errors.Is(err, shared.ErrSyncFailed) {
			t.Fatalf("expected ErrSyncFailed, got %v", err)
		}
		if !strings.Contains(out, "Failed to check AVRALIZE") {
			t.Errorf("expected failure line, got %q", out)
		}
	})

	t.Run("catalog commands need credentials", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Database.Path = filepath.Join(t.TempDir(), "music.db3")
		runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})

		err := newApp(runner).Run(context.Background(), []string{"qbx", "check"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}

		if err := newApp(runner).Run(context.Background(), []string{"qbx", "list"}); err != nil {
			t.Errorf("list should not need credentials, got %v", err)
		}
	})

	t.Run("held lock blocks mutating commands", func(t *testing.T) {
		f := newFixture(t)
		lock := shared.NewRunLock(f.config.Database.Path)
		if err := lock.Acquire(); err != nil {
			t.Fatalf("acquire: %v", err)
		}
		defer lock.Release()

		if _, err := f.run(t, "check"); !errors.Is(err, shared.ErrLocked) {
			t.Errorf("expected ErrLocked, got %v", err)
		}
		if _, err := f.run(t, "list"); err != nil {
			t.Errorf("read commands should not need the lock, got %v", err)
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("database", func(t *testing.T) {
		f := newFixture(t)
		out := f.mustRun(t, "setup", "database")

		want := fmt.Sprintf("Database ready at %s (schema version 0)\n", f.config.Database.Path)
		if out != want {
			t.Errorf("expected %q, got %q", want, out)
		}
		tu.AssertFileExists(t, f.config.Database.Path)
	})

	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Logger:    shared.NewLogger(io.Discard),
			Output:    output,
			LookupEnv: func(string) (string, bool) { return "", false },
		})

		if err := newApp(runner).Run(context.Background(), []string{"qbx", "--config", path, "setup", "config"}); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), "Config written to "+path) {
			t.Errorf("unexpected output %q", output.String())
		}

		loaded, err := shared.LoadConfig(path)
		if err != nil {
			t.Fatalf("written config does not load: %v", err)
		}
		if loaded.Database.Path != "music.db3" {
			t.Errorf("expected default database path, got %s", loaded.Database.Path)
		}

		if err := newApp(runner).Run(context.Background(), []string{"qbx", "--config", path, "setup", "config"}); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("config at default path", func(t *testing.T) {
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		tu.MustChdir(t, t.TempDir())
		t.Cleanup(func() { tu.MustChdir(t, wd) })

		runner := NewRunner(RunnerOpts{
			Logger:    shared.NewLogger(io.Discard),
			Output:    &bytes.Buffer{},
			LookupEnv: func(string) (string, bool) { return "", false },
		})
		if err := newApp(runner).Run(context.Background(), []string{"qbx", "setup", "config"}); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}

		content := tu.MustReadFile(t, "config.toml")
		for _, section := range []string{"[catalog]", "[database]", "[sync]", "[log]"} {
			if !strings.Contains(content, section) {
				t.Errorf("expected %s in written config", section)
			}
		}
	})
}

// qobuzStub serves the four catalog endpoints from in-memory state.
type qobuzStub struct {
	mu       sync.Mutex
	releases []map[string]string
	tracks   map[string][]map[string]any
	added    []string
}

func (s *qobuzStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/artist/page", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-App-Id") != "app" || r.Header.Get("X-User-Auth-Token") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{
			"id":       123,
			"name":     map[string]string{"display": "AVRALIZE"},
			"releases": []map[string]any{{"type": "album", "items": s.releases}},
		})
	})
	mux.HandleFunc("/album/get", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		tracks, ok := s.tracks[r.URL.Query().Get("album_id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"tracks": map[string]any{"items": tracks}})
	})
	mux.HandleFunc("/playlist/create", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 77})
	})
	mux.HandleFunc("/playlist/addTracks", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		s.mu.Lock()
		s.added = append(s.added, r.PostForm.Get("track_ids"))
		s.mu.Unlock()
		w.Write([]byte(`{"id": 77}`))
	})
	return mux
}

func TestQobuzEndToEnd(t *testing.T) {
	stub := &qobuzStub{
		releases: []map[string]string{{"id": "a1", "title": "first"}},
		tracks:   map[string][]map[string]any{},
	}
	server := httptest.NewServer(stub.handler(t))
	defer server.Close()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "music.db3")
	config.Catalog.APIBase = server.URL
	config.Catalog.AppID = "app"
	config.Catalog.AuthToken = "tok"
	config.Catalog.RateLimit = 1000

	clock := tu.NewClock(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:   config,
		Logger:   shared.NewLogger(io.Discard),
		Output:   output,
		Progress: io.Discard,
		Now:      clock.Now,
	})
	run := func(args ...string) string {
		t.Helper()
		output.Reset()
		if err := newApp(runner).Run(context.Background(), append([]string{"qbx"}, args...)); err != nil {
			t.Fatalf("qbx %v failed: %v", args, err)
		}
		return output.String()
	}

	if out := run("load", "123"); out != "Loading data for 'AVRALIZE'\nLoaded 1 releases\n" {
		t.Errorf("unexpected load output %q", out)
	}

	stub.mu.Lock()
	stub.releases = append(stub.releases, map[string]string{"id": "b2", "title": "second"}, map[string]string{"id": "c3", "title": "phantom"})
	stub.tracks["b2"] = []map[string]any{{"id": 11, "title": "one"}, {"id": 12, "title": "two"}}
	stub.mu.Unlock()

	clock.Advance(time.Minute)
	if out := run("check"); out != "Checking 1 artists\n\nFound 1 new release for AVRALIZE\n  • second\n" {
		t.Errorf("unexpected check output %q", out)
	}

	clock.Advance(time.Minute)
	if out := run("gen-playlist"); out != "Created playlist: 2024-05-10\n" {
		t.Errorf("unexpected playlist output %q", out)
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.added) != 1 || stub.added[0] != "11,12" {
		t.Errorf("expected tracks 11,12 added, got %v", stub.added)
	}
}
