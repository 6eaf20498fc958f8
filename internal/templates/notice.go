// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Notice kinds.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is an alert box with translated texts.
type Notice struct {
	Kind     string
	Title    string
	Messages []string
	LinkText string
	LinkURL  string
}

// NoticeBox renders a notice. A nil notice renders nothing.
func NoticeBox(n *Notice) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if n == nil {
			return nil
		}
		h := &htmlWriter{w: w}
		h.raw(`<div class="notice notice-`)
		h.text(n.Kind)
		h.raw(`" role="alert"><strong>`)
		h.text(n.Title)
		h.raw(`</strong>`)
		for _, m := range n.Messages {
			h.raw(`<p>`)
			h.text(m)
			h.raw(`</p>`)
		}
		if n.LinkURL != "" {
			h.raw(`<p><a href="`)
			h.text(n.LinkURL)
			h.raw(`">`)
			h.text(n.LinkText)
			h.raw(`</a></p>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}
