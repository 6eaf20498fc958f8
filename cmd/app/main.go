// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"

	"codeberg.org/oliverandrich/passreset/internal/config"
	"codeberg.org/oliverandrich/passreset/internal/server"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal(err)
	}

	cmd := &cli.Command{
		Name:   "passreset",
		Usage:  "Serve the login and password reset pages",
		Flags:  config.Flags(),
		Action: server.Run,
		Commands: []*cli.Command{
			{
				Name:   "create-user",
				Usage:  "Add a user to the credential store",
				Flags:  server.UserFlags(),
				Action: server.CreateUser,
			},
			{
				Name:  "migrate",
				Usage: "Manage the SQLite schema",
				Commands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "Apply pending migrations",
						Action: server.MigrateUp,
					},
					{
						Name:   "down",
						Usage:  "Roll back the most recent migration",
						Action: server.MigrateDown,
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
