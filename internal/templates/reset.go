// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ResetStartURL is where a failed reset sends the user to start over.
const ResetStartURL = "/login?query=reset"

// ResetData drives the reset password page.
type ResetData struct {
	Token  string
	Valid  bool
	Notice *Notice
}

// InvalidLinkNotice is shown when the token in the link does not verify.
func InvalidLinkNotice(ctx context.Context) *Notice {
	return &Notice{
		Kind:     NoticeError,
		Title:    T(ctx, "reset_link_invalid_title"),
		Messages: []string{T(ctx, "reset_link_invalid_body")},
		LinkText: T(ctx, "try_again"),
		LinkURL:  ResetStartURL,
	}
}

// ResetPasswordPage renders the new password form. Without a valid link
// only the invalid link alert is shown.
func ResetPasswordPage(data ResetData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := T(ctx, "reset_title")
		return Layout(title, resetForm(title, data)).Render(ctx, w)
	})
}

func resetForm(title string, data ResetData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>`)
		h.text(title)
		h.raw(`</h1>`)

		if !data.Valid {
			h.component(ctx, NoticeBox(InvalidLinkNotice(ctx)))
			return h.err
		}

		h.raw(`<form method="post" action="/resetpassword">`)
		h.csrfField(ctx)
		h.raw(`<input type="hidden" name="token" value="`)
		h.text(data.Token)
		h.raw(`">`)

		h.raw(`<input type="password" name="password" required placeholder="`)
		h.text(T(ctx, "password_placeholder"))
		h.raw(`"><input type="password" name="confirm_password" required placeholder="`)
		h.text(T(ctx, "confirm_password_placeholder"))
		h.raw(`">`)

		h.raw(`<button type="submit">`)
		h.text(T(ctx, "reset_password_button"))
		h.raw(`</button>`)

		h.component(ctx, NoticeBox(data.Notice))
		h.raw(`</form>`)
		return h.err
	})
}
