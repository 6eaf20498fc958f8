// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/passreset/internal/config"
	"codeberg.org/oliverandrich/passreset/internal/flash"
	"codeberg.org/oliverandrich/passreset/internal/handlers"
	"codeberg.org/oliverandrich/passreset/internal/i18n"
	"codeberg.org/oliverandrich/passreset/internal/metrics"
	"codeberg.org/oliverandrich/passreset/internal/repository"
	"codeberg.org/oliverandrich/passreset/internal/services/auth"
	"codeberg.org/oliverandrich/passreset/internal/services/email"
	"codeberg.org/oliverandrich/passreset/internal/services/reset"
	"codeberg.org/oliverandrich/passreset/internal/services/token"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"database_driver", cfg.Database.Driver,
	)

	store, closeStore, err := OpenStore(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	sender, err := email.NewService(&cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to create email service: %w", err)
	}

	e, err := New(cfg, store, sender, metrics.NewRegistry())
	if err != nil {
		return err
	}

	return startWithGracefulShutdown(ctx, e, cfg)
}

// New builds the Echo instance with all services, middleware and routes.
func New(cfg *config.Config, store repository.UserStore, sender reset.Sender, reg *prometheus.Registry) (*echo.Echo, error) {
	// i18n
	if err := i18n.Init(); err != nil {
		return nil, fmt.Errorf("failed to init i18n: %w", err)
	}

	tokens, err := token.NewService([]byte(cfg.Token.Secret))
	if err != nil {
		return nil, err
	}

	flashKey, err := flash.KeyFromHex(cfg.Flash.Key)
	if err != nil {
		return nil, err
	}
	secure := strings.HasPrefix(cfg.Server.BaseURL, "https://")

	h := handlers.New(
		auth.NewService(store),
		reset.NewService(store, tokens, sender, cfg.Server.BaseURL),
		flash.New(flashKey, secure),
		metrics.New(reg),
	)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	// Middleware
	setupMiddleware(e, cfg)

	// Routes
	setupRoutes(e, h, reg)

	return e, nil
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers, reg *prometheus.Registry) {
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(reg)))

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/login")
	})
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.POST("/login/reset", h.RequestResetLink)
	e.GET("/resetpassword", h.ResetPasswordPage)
	e.POST("/resetpassword", h.ResetPassword)
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Channel for server errors
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "addr", addr, "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
