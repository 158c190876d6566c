package main

import (
	"context"

	"github.com/desertthunder/drivebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the ledger database and runs pending migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.logger.Info("database ready", "path", r.config.Database.Path)
	return r.writePlain("✓ Database initialized at %s\n", r.config.Database.Path)
}

// SetupConfig writes the example configuration file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	output := cmd.String("output")
	if err := shared.CreateConfigFile(output); err != nil {
		return err
	}
	return r.writePlain("✓ Wrote %s\n", output)
}
