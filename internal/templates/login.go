// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// LoginData drives the login page. With Reset set it shows the
// reset request form instead of the login form.
type LoginData struct {
	Reset  bool
	Email  string
	Notice *Notice
}

// LoginPage renders the login or reset request form.
func LoginPage(data LoginData) templ.Component {
	titleID := "login_title"
	if data.Reset {
		titleID = "reset_title"
	}

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := T(ctx, titleID)
		return Layout(title, loginForm(title, data)).Render(ctx, w)
	})
}

func loginForm(title string, data LoginData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>`)
		h.text(title)
		h.raw(`</h1>`)
		h.component(ctx, NoticeBox(data.Notice))

		action := "/login"
		if data.Reset {
			action = "/login/reset"
		}
		h.raw(`<form method="post" action="`)
		h.text(action)
		h.raw(`">`)
		h.csrfField(ctx)

		h.raw(`<input type="email" name="email" required placeholder="`)
		h.text(T(ctx, "email_placeholder"))
		h.raw(`" value="`)
		h.text(data.Email)
		h.raw(`">`)

		if data.Reset {
			h.raw(`<button type="submit">`)
			h.text(T(ctx, "send_reset_link_button"))
			h.raw(`</button>`)
		} else {
			h.raw(`<input type="password" name="password" required placeholder="`)
			h.text(T(ctx, "password_placeholder"))
			h.raw(`"><a class="forgot" href="/login?query=reset">`)
			h.text(T(ctx, "forgot_password"))
			h.raw(`</a><button type="submit">`)
			h.text(T(ctx, "login_button"))
			h.raw(`</button>`)
		}

		h.raw(`</form>`)
		return h.err
	})
}
