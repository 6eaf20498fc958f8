// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

// ErrConfigurationMissing is returned when a required setting has no value.
var ErrConfigurationMissing = errors.New("configuration missing")

// Database drivers supported by the credential store.
const (
	DriverSQLite  = "sqlite"
	DriverMongoDB = "mongodb"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Token    TokenConfig
	SMTP     SMTPConfig
	Flash    FlashConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string // website URL used in reset links
	MaxBodySize int    // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	Driver        string // sqlite, mongodb
	DSN           string // SQLite path
	MongoURI      string
	MongoDatabase string
}

type TokenConfig struct {
	Secret string // HMAC secret for reset tokens
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host     string
	Port     int
	Username string
	Password string // app password for Gmail
	From     string
	FromName string
	TLS      bool
	Timeout  time.Duration
}

type FlashConfig struct {
	Key string // 32-byte hex string for HMAC signing, random if empty
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     strings.TrimSuffix(cmd.String("base-url"), "/"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			Driver:        strings.ToLower(cmd.String("database-driver")),
			DSN:           cmd.String("database-dsn"),
			MongoURI:      cmd.String("mongodb-uri"),
			MongoDatabase: cmd.String("mongodb-database"),
		},
		Token: TokenConfig{
			Secret: cmd.String("token-secret"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
			Timeout:  cmd.Duration("smtp-timeout"),
		},
		Flash: FlashConfig{
			Key: cmd.String("flash-key"),
		},
	}

	applySMTPDefaults(cfg)

	return cfg
}

// applySMTPDefaults uses the login name as sender, the way Gmail expects it.
func applySMTPDefaults(cfg *Config) {
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}
}

// Validate reports every required setting that is empty.
// The server must not start with a config that fails here, since it
// would sign tokens with an empty key or send undeliverable mail.
func (c *Config) Validate() error {
	var missing []string

	if c.Server.BaseURL == "" {
		missing = append(missing, "base-url")
	}
	if c.Token.Secret == "" {
		missing = append(missing, "token-secret")
	}
	if c.SMTP.Host == "" {
		missing = append(missing, "smtp-host")
	}
	if c.SMTP.Username == "" {
		missing = append(missing, "smtp-username")
	}
	if c.SMTP.Password == "" {
		missing = append(missing, "smtp-password")
	}
	if c.SMTP.From == "" {
		missing = append(missing, "smtp-from")
	}

	switch c.Database.Driver {
	case DriverSQLite:
	case DriverMongoDB:
		if c.Database.MongoURI == "" {
			missing = append(missing, "mongodb-uri")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, strings.Join(missing, ", "))
	}
	return nil
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Public website URL used to build reset links",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), cli.EnvVar("WEBSITE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		// Database flags
		&cli.StringFlag{
			Name:    "database-driver",
			Value:   DriverSQLite,
			Usage:   "Credential store backend (sqlite, mongodb)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DRIVER"), toml.TOML("database.driver", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/app.db",
			Usage:   "SQLite database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		&cli.StringFlag{
			Name:    "mongodb-uri",
			Value:   "mongodb://localhost:27017",
			Usage:   "MongoDB connection string",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MONGODB_URI"), toml.TOML("database.mongodb_uri", configFile)),
		},
		&cli.StringFlag{
			Name:    "mongodb-database",
			Value:   "passreset",
			Usage:   "MongoDB database name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MONGODB_DATABASE"), toml.TOML("database.mongodb_database", configFile)),
		},
		// Token flags
		&cli.StringFlag{
			Name:    "token-secret",
			Usage:   "Secret used to sign password reset tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TOKEN_SECRET"), toml.TOML("token.secret", configFile)),
		},
		// SMTP flags
		&cli.StringFlag{
			Name:    "smtp-host",
			Value:   "smtp.gmail.com",
			Usage:   "SMTP server host",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP server port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP login (sender account)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), cli.EnvVar("EMAIL_USERNAME"), toml.TOML("smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password or app password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), cli.EnvVar("EMAIL_PASSWORD"), toml.TOML("smtp.password", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Usage:   "Sender address (defaults to smtp-username)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM"), toml.TOML("smtp.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Usage:   "Sender display name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM_NAME"), toml.TOML("smtp.from_name", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP (implicit TLS on port 465, STARTTLS otherwise)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("smtp.tls", configFile)),
		},
		&cli.DurationFlag{
			Name:    "smtp-timeout",
			Value:   15 * time.Second,
			Usage:   "Timeout for SMTP dial and send",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TIMEOUT"), toml.TOML("smtp.timeout", configFile)),
		},
		// Flash flags
		&cli.StringFlag{
			Name:    "flash-key",
			Usage:   "Flash cookie signing key (32-byte hex, random per process if empty)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FLASH_KEY"), toml.TOML("flash.key", configFile)),
		},
	}
}
