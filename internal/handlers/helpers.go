// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"net/mail"

	"codeberg.org/oliverandrich/passreset/internal/i18n"
	"codeberg.org/oliverandrich/passreset/internal/templates"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render renders a templ component with the given status code.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(c.Request().Context(), buf); err != nil {
		return err
	}

	return c.HTML(statusCode, buf.String())
}

// validEmail reports whether s is a bare email address.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func errorNotice(ctx context.Context, titleID string, messages ...string) *templates.Notice {
	return &templates.Notice{
		Kind:     templates.NoticeError,
		Title:    i18n.T(ctx, titleID),
		Messages: messages,
	}
}

// tryAgain adds the link back to the start of the reset flow.
func tryAgain(ctx context.Context, n *templates.Notice) *templates.Notice {
	n.LinkText = i18n.T(ctx, "try_again")
	n.LinkURL = templates.ResetStartURL
	return n
}
