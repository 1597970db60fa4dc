package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/qbx/internal/repositories"
	"github.com/desertthunder/qbx/internal/services"
	"github.com/desertthunder/qbx/internal/shared"
	"github.com/desertthunder/qbx/internal/tasks"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	catalog   services.Catalog
	logger    *log.Logger
	output    io.Writer
	progress  io.Writer
	lookupEnv func(string) (string, bool)
	now       func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config              // skips config loading when set
	Catalog   services.Catalog            // defaults to a [services.QobuzService] built from Config
	Logger    *log.Logger
	Output    io.Writer                   // command results, defaults to stdout
	Progress  io.Writer                   // progress lines, defaults to stderr when it is a terminal
	LookupEnv func(string) (string, bool) // defaults to [os.LookupEnv]
	Now       func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			opts.Progress = os.Stderr
		}
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}

	return &Runner{
		config:    opts.Config,
		catalog:   opts.Catalog,
		logger:    opts.Logger,
		output:    opts.Output,
		progress:  opts.Progress,
		lookupEnv: opts.LookupEnv,
		now:       opts.Now,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		loadCommand, checkCommand, listCommand, showCommand, playlistsCommand,
		genPlaylistCommand, checkGenCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Configure loads the configuration once before any command runs: the file named by --config
// (when present), then environment overrides, then validation.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config == nil {
		config, err := r.loadConfig(cmd.String("config"), cmd.IsSet("config"))
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	shared.SetLogLevel(r.logger, r.config.LogLevel())
	return ctx, nil
}

func (r *Runner) loadConfig(path string, explicit bool) (*shared.Config, error) {
	config := shared.DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, err
		}
		r.logger.Debug("loaded config", "path", path)
	} else if explicit {
		r.logger.Warn("config file not found, using defaults", "path", path)
	}

	config.ApplyEnv(r.lookupEnv)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// sessionOpts selects what a command needs from [Runner.open].
type sessionOpts struct {
	catalog bool // build the catalog client and engine
	lock    bool // hold the run lock for the duration of the command
}

// session bundles the resources of one command invocation.
type session struct {
	db     *sql.DB
	store  *repositories.Store
	engine *tasks.CatalogEngine
	lock   *shared.RunLock
}

// open prepares the database (migrations included) and, on request, the run lock and catalog engine.
func (r *Runner) open(opts sessionOpts) (*session, error) {
	if r.config == nil {
		return nil, fmt.Errorf("%w: configuration not loaded", shared.ErrMissingConfig)
	}

	catalog := r.catalog
	if opts.catalog && catalog == nil {
		if err := r.config.Catalog.RequireCredentials(); err != nil {
			return nil, err
		}
		catalog = services.NewQobuzServiceFromConfig(r.config.Catalog)
	}

	s := &session{}
	if opts.lock {
		s.lock = shared.NewRunLock(r.config.Database.Path)
		if err := s.lock.Acquire(); err != nil {
			return nil, err
		}
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, 1, 1)
	s.db = db

	applied, err := shared.RunMigrations(db)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if applied > 0 {
		r.logger.Debug("applied migrations", "count", applied, "path", r.config.Database.Path)
	}

	s.store = repositories.NewStore(db)
	if opts.catalog {
		s.engine = tasks.NewCatalogEngine(catalog, s.store, tasks.Options{
			Workers:         r.config.Sync.Workers,
			RetryUnverified: r.config.Sync.RetryUnverified,
			Logger:          r.logger,
			Now:             r.now,
		})
	}
	return s, nil
}

// Close releases the database and lock.
func (s *session) Close() error {
	var errs []error
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	if s.lock != nil {
		errs = append(errs, s.lock.Release())
	}
	return errors.Join(errs...)
}

// watchProgress prints updates until ch is closed. The returned channel closes once printing is done.
func (r *Runner) watchProgress(ch <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range ch {
			switch update.Phase {
			case tasks.FetchTracks:
				fmt.Fprintf(r.progress, "   %s\n", update.Message)
			default:
				fmt.Fprintf(r.progress, "%s\n", update.Message)
			}
		}
	}()
	return done
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
