// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/passreset/internal/config"
	"codeberg.org/oliverandrich/passreset/internal/services/auth"
	"github.com/urfave/cli/v3"
)

// UserFlags are the flags of the create-user command.
func UserFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "email",
			Usage:    "Email address of the new user",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Usage:    "Initial password of the new user",
			Required: true,
			Sources:  cli.EnvVars("CREATE_USER_PASSWORD"),
		},
	}
}

// CreateUser adds a user to the credential store.
func CreateUser(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	store, closeStore, err := OpenStore(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	user, err := auth.NewService(store).Register(ctx, cmd.String("email"), cmd.String("password"))
	var pve *auth.PasswordValidationError
	switch {
	case err == nil:
	case errors.As(err, &pve):
		for _, e := range pve.Errors {
			slog.Error("password rejected", "code", e.Code, "reason", e.Message)
		}
		return err
	default:
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "user_id", user.ID, "email", user.Email)
	return nil
}
