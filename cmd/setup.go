package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/qbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	s, err := r.open(sessionOpts{lock: true})
	if err != nil {
		return err
	}
	defer s.Close()

	version, err := shared.SchemaVersion(s.db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("Database ready at %s (schema version %d)\n", r.config.Database.Path, version)
}

// SetupConfig writes the embedded example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	if err := r.writePlain("✓ Config written to %s\n", path); err != nil {
		return err
	}
	return r.writePlain("Set %s and %s (or edit [catalog]) before running 'qbx load'.\n", shared.EnvAppID, shared.EnvAuthToken)
}
