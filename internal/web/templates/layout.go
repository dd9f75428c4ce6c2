// Package templates renders the web screens as templ components.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/kwanzahq/vendordesk/internal/web/platform/flash"
)

// Page wraps a body component in the document shell.
func Page(title, lang string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="%s"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title></head><body>`,
			templ.EscapeString(lang), templ.EscapeString(title)); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// Toast renders a one-time notice banner.
func Toast(notice flash.Notice) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="toast toast-%s" role="status">%s</div>`,
			templ.EscapeString(string(notice.Kind)), templ.EscapeString(notice.Message))
		return err
	})
}

// ErrorBanner renders an inline form error.
func ErrorBanner(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if message == "" {
			return nil
		}
		_, err := fmt.Fprintf(w, `<div class="form-error" role="alert">%s</div>`, templ.EscapeString(message))
		return err
	})
}

func writeAll(ctx context.Context, w io.Writer, components ...templ.Component) error {
	for _, component := range components {
		if component == nil {
			continue
		}
		if err := component.Render(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

func raw(format string, args ...any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	})
}
