// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// ErrorPage renders a generic error page.
func ErrorPage(code int, title, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			h := &htmlWriter{w: w}
			h.raw(`<h1>`)
			h.text(strconv.Itoa(code))
			h.raw(` `)
			h.text(title)
			h.raw(`</h1><p>`)
			h.text(message)
			h.raw(`</p><p><a href="/login">`)
			h.text(T(ctx, "back_to_login"))
			h.raw(`</a></p>`)
			return h.err
		})
		return Layout(title, content).Render(ctx, w)
	})
}
