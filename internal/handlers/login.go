// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/passreset/internal/i18n"
	"codeberg.org/oliverandrich/passreset/internal/metrics"
	"codeberg.org/oliverandrich/passreset/internal/services/auth"
	"codeberg.org/oliverandrich/passreset/internal/services/reset"
	"codeberg.org/oliverandrich/passreset/internal/templates"
	"github.com/labstack/echo/v4"
)

// inboxURL is offered after a reset link was sent.
const inboxURL = "https://mail.google.com/"

// LoginPage renders the login form, or the reset request form for ?query=reset.
func (h *Handlers) LoginPage(c echo.Context) error {
	data := templates.LoginData{Reset: c.QueryParam("query") == "reset"}

	if msg, ok := h.flash.Pop(c.Response(), c.Request()); ok {
		data.Notice = &templates.Notice{
			Kind:  msg.Kind,
			Title: i18n.T(c.Request().Context(), msg.MessageID),
		}
	}

	return Render(c, http.StatusOK, templates.LoginPage(data))
}

// Login checks the submitted credentials. No session is created.
func (h *Handlers) Login(c echo.Context) error {
	ctx := c.Request().Context()
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	data := templates.LoginData{Email: email}

	if !validEmail(email) {
		data.Notice = errorNotice(ctx, "invalid_email")
		return Render(c, http.StatusUnprocessableEntity, templates.LoginPage(data))
	}

	_, err := h.auth.Login(ctx, email, password)
	switch {
	case err == nil:
		h.metrics.Login(metrics.OutcomeSuccess)
		data.Notice = &templates.Notice{Kind: templates.NoticeSuccess, Title: i18n.T(ctx, "login_success")}
		return Render(c, http.StatusOK, templates.LoginPage(data))
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.metrics.Login(metrics.OutcomeRejected)
		data.Notice = errorNotice(ctx, "login_invalid_credentials")
		return Render(c, http.StatusUnauthorized, templates.LoginPage(data))
	default:
		h.metrics.Login(metrics.OutcomeFailure)
		slog.Error("login_error", "error", err)
		data.Notice = errorNotice(ctx, "error_unexpected")
		return Render(c, http.StatusInternalServerError, templates.LoginPage(data))
	}
}

// RequestResetLink mails a reset link to the submitted address.
// Unknown addresses get the same response as known ones.
func (h *Handlers) RequestResetLink(c echo.Context) error {
	ctx := c.Request().Context()
	email := strings.TrimSpace(c.FormValue("email"))
	data := templates.LoginData{Reset: true, Email: email}

	if !validEmail(email) {
		data.Notice = errorNotice(ctx, "invalid_email")
		return Render(c, http.StatusUnprocessableEntity, templates.LoginPage(data))
	}

	delivery, err := h.reset.RequestReset(ctx, email)
	switch {
	case err == nil && delivery.Accepted:
		h.metrics.ResetRequest(metrics.OutcomeSent)
	case errors.Is(err, reset.ErrUserNotFound):
		h.metrics.ResetRequest(metrics.OutcomeUnknownUser)
	case err == nil:
		h.metrics.ResetRequest(metrics.OutcomeNotAccepted)
		data.Notice = tryAgain(ctx, errorNotice(ctx, "error_unexpected"))
		return Render(c, http.StatusBadGateway, templates.LoginPage(data))
	case errors.Is(err, reset.ErrDeliveryFailure):
		h.metrics.ResetRequest(metrics.OutcomeDeliveryFailed)
		data.Notice = tryAgain(ctx, errorNotice(ctx, "error_unexpected"))
		return Render(c, http.StatusBadGateway, templates.LoginPage(data))
	default:
		h.metrics.ResetRequest(metrics.OutcomeFailure)
		slog.Error("reset_request_error", "error", err)
		data.Notice = tryAgain(ctx, errorNotice(ctx, "error_unexpected"))
		return Render(c, http.StatusInternalServerError, templates.LoginPage(data))
	}

	data.Email = ""
	data.Notice = &templates.Notice{
		Kind:     templates.NoticeSuccess,
		Title:    i18n.T(ctx, "reset_email_sent"),
		Messages: []string{i18n.T(ctx, "reset_email_sent_body")},
		LinkText: i18n.T(ctx, "open_inbox"),
		LinkURL:  inboxURL,
	}
	return Render(c, http.StatusOK, templates.LoginPage(data))
}
