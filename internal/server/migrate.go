// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/passreset/internal/config"
	"codeberg.org/oliverandrich/passreset/internal/database"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

// openSQLite opens the SQLite store for schema commands. Opening applies
// pending migrations.
func openSQLite(cmd *cli.Command) (*sqlx.DB, error) {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	if cfg.Database.Driver != config.DriverSQLite {
		return nil, fmt.Errorf("migrations apply to the %s driver only, got %q", config.DriverSQLite, cfg.Database.Driver)
	}
	return database.Open(cfg.Database.DSN)
}

// MigrateUp applies pending migrations and reports the schema version.
func MigrateUp(ctx context.Context, cmd *cli.Command) error {
	db, err := openSQLite(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return logVersion(ctx, db)
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, cmd *cli.Command) error {
	db, err := openSQLite(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := database.MigrateDown(ctx, db.DB); err != nil {
		return err
	}
	return logVersion(ctx, db)
}

func logVersion(ctx context.Context, db *sqlx.DB) error {
	version, err := database.Version(ctx, db.DB)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	slog.Info("schema version", "version", version)
	return nil
}
