// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/passreset/internal/flash"
	"codeberg.org/oliverandrich/passreset/internal/metrics"
	"codeberg.org/oliverandrich/passreset/internal/services/auth"
	"codeberg.org/oliverandrich/passreset/internal/services/reset"
	"github.com/labstack/echo/v4"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	auth    *auth.Service
	reset   *reset.Service
	flash   *flash.Store
	metrics *metrics.Metrics
}

// New creates a new Handlers instance.
func New(authSvc *auth.Service, resetSvc *reset.Service, flashes *flash.Store, m *metrics.Metrics) *Handlers {
	return &Handlers{
		auth:    authSvc,
		reset:   resetSvc,
		flash:   flashes,
		metrics: m,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
