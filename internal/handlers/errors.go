// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/passreset/internal/i18n"
	"codeberg.org/oliverandrich/passreset/internal/templates"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders errors returned by handlers and middleware as HTML pages.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	} else {
		slog.Error("unhandled_error", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	if renderErr := RenderError(c, code); renderErr != nil {
		slog.Error("failed to render error page", "error", renderErr)
	}
}

// RenderError renders a generic error page with the given status code.
func RenderError(c echo.Context, code int) error {
	ctx := c.Request().Context()

	title := http.StatusText(code)
	if title == "" {
		title = i18n.T(ctx, "error_title")
	}

	return Render(c, code, templates.ErrorPage(code, title, i18n.T(ctx, errorMessageID(code))))
}

func errorMessageID(code int) string {
	switch code {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return "error_not_found"
	case http.StatusForbidden, http.StatusBadRequest:
		return "error_forbidden"
	case http.StatusRequestEntityTooLarge:
		return "error_request_too_large"
	default:
		return "error_unexpected"
	}
}
