// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/passreset/internal/flash"
	"codeberg.org/oliverandrich/passreset/internal/metrics"
	"codeberg.org/oliverandrich/passreset/internal/services/reset"
	"codeberg.org/oliverandrich/passreset/internal/templates"
	"github.com/labstack/echo/v4"
)

// ResetPasswordPage verifies the link token and shows the new password
// form, or the invalid link alert.
func (h *Handlers) ResetPasswordPage(c echo.Context) error {
	tok := c.QueryParam("token")
	data := templates.ResetData{Token: tok}

	if _, err := h.reset.VerifyLink(tok); err == nil {
		data.Valid = true
	}

	return Render(c, http.StatusOK, templates.ResetPasswordPage(data))
}

// ResetPassword stores the new password and redirects to the login page.
func (h *Handlers) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	tok := c.FormValue("token")
	password := c.FormValue("password")
	data := templates.ResetData{Token: tok, Valid: true}

	if _, err := h.reset.VerifyLink(tok); err != nil {
		h.metrics.ResetCompletion(metrics.OutcomeInvalidLink)
		data.Valid = false
		return Render(c, http.StatusBadRequest, templates.ResetPasswordPage(data))
	}

	if password != c.FormValue("confirm_password") {
		data.Notice = errorNotice(ctx, "passwords_mismatch")
		return Render(c, http.StatusUnprocessableEntity, templates.ResetPasswordPage(data))
	}

	_, err := h.reset.CompleteReset(ctx, tok, password)
	switch {
	case err == nil:
		h.metrics.ResetCompletion(metrics.OutcomeSuccess)
		if err := h.flash.Set(c.Response(), flash.Message{Kind: flash.KindSuccess, MessageID: "reset_success"}); err != nil {
			slog.Error("failed to set flash", "error", err)
		}
		return c.Redirect(http.StatusSeeOther, "/login")

	case errors.Is(err, reset.ErrInvalidOrExpiredLink), errors.Is(err, reset.ErrUserNotFound):
		h.metrics.ResetCompletion(metrics.OutcomeInvalidLink)
		data.Valid = false
		return Render(c, http.StatusBadRequest, templates.ResetPasswordPage(data))

	case errors.Is(err, reset.ErrPasswordReused):
		h.metrics.ResetCompletion(metrics.OutcomeReused)
		data.Notice = tryAgain(ctx, errorNotice(ctx, "reset_password_reused"))
		return Render(c, http.StatusUnprocessableEntity, templates.ResetPasswordPage(data))

	default:
		h.metrics.ResetCompletion(metrics.OutcomeFailure)
		slog.Error("password_reset_error", "error", err)
		data.Notice = tryAgain(ctx, errorNotice(ctx, "error_unexpected"))
		return Render(c, http.StatusInternalServerError, templates.ResetPasswordPage(data))
	}
}
