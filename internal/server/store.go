// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/passreset/internal/config"
	"codeberg.org/oliverandrich/passreset/internal/database"
	"codeberg.org/oliverandrich/passreset/internal/repository"
	"codeberg.org/oliverandrich/passreset/internal/repository/mongodb"
)

// OpenStore opens the credential store selected by the database driver.
// The returned close function releases it.
func OpenStore(ctx context.Context, cfg *config.DatabaseConfig) (repository.UserStore, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := database.Open(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				slog.Error("failed to close database", "error", err)
			}
		}
		return repository.New(db), closeFn, nil

	case config.DriverMongoDB:
		store := mongodb.New(cfg.MongoURI, cfg.MongoDatabase)
		if err := store.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		closeFn := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(closeCtx); err != nil {
				slog.Error("failed to close mongodb", "error", err)
			}
		}
		return store, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
