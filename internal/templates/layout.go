// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the HTML pages.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const styles = `body{font-family:system-ui,sans-serif;margin:0;min-height:100vh;display:grid;place-items:center;background:#fafafa}
main{width:400px;border:1px solid #e4e4e7;border-radius:6px;padding:1.5rem;background:#fff}
h1{text-align:center;font-size:1.875rem;margin:0 0 1rem}
form{display:grid;gap:1rem}
input{padding:.5rem;border:1px solid #e4e4e7;border-radius:6px;font-size:1rem}
button{padding:.6rem;border:0;border-radius:6px;background:#18181b;color:#fff;font-size:1rem;cursor:pointer}
button:disabled{opacity:.5;cursor:not-allowed}
.notice{border-radius:6px;padding:.75rem;margin-bottom:1rem}
.notice-success{border:1px solid #bbf7d0;background:#f0fdf4}
.notice-error{border:1px solid #fecaca;background:#fef2f2;color:#b91c1c}
.notice p{margin:.25rem 0}
.forgot{justify-self:end;color:#6b7280}`

// Layout wraps page content in the HTML document.
func Layout(title string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!doctype html><html lang="`)
		h.text(Locale(ctx))
		h.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		h.text(title)
		h.raw(` · `)
		h.text(T(ctx, "app_name"))
		h.raw(`</title><style>`)
		h.raw(styles)
		h.raw(`</style></head><body><main>`)
		h.component(ctx, content)
		h.raw(`</main></body></html>`)
		return h.err
	})
}
