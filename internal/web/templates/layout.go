// Package templates renders the HTML pages of the web UI as templ components.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const styles = `
body{font-family:system-ui,sans-serif;max-width:52rem;margin:2rem auto;padding:0 1rem;color:#1f2937}
h1{font-size:1.6rem}h2{font-size:1.2rem;margin-top:2rem}
form{display:flex;gap:.5rem}input{padding:.4rem .6rem;font-size:1rem}
button{padding:.4rem 1rem;font-size:1rem;cursor:pointer}
table.matrix{border-collapse:collapse;margin-top:1rem}
table.matrix td{border:1px solid #9ca3af;width:7rem;height:4.5rem;text-align:center;vertical-align:middle}
td .label{font-size:1.3rem;font-weight:600;display:block}td .quality{font-size:.75rem;color:#6b7280}
td.empty .label{color:#d1d5db}
.numbers span{display:inline-block;border:1px solid #d1d5db;border-radius:.3rem;padding:.2rem .6rem;margin-right:.3rem}
.alert{border:1px solid #fca5a5;background:#fef2f2;padding:.8rem;border-radius:.3rem;margin-top:1rem}
.alert code{color:#991b1b}
`

// Layout wraps body in the page skeleton.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title><style>%s</style></head><body>`,
			templ.EscapeString(title), styles); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// DateForm is the birth date input form.
func DateForm(value string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<form method="get" action="/matrix"><input name="date" placeholder="DD.MM.YYYY" pattern="\d{2}\.\d{2}\.\d{4}" value="%s" required><button type="submit">Calculate</button></form>`,
			templ.EscapeString(value))
		return err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert" role="alert"><strong>%s</strong><p>%s</p><code>%s</code></div>`,
			templ.EscapeString(message), templ.EscapeString(action), templ.EscapeString(code))
		return err
	})
}

// IndexPage is the landing page. alert may be nil.
func IndexPage(value string, alert templ.Component) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Birth date matrix</h1><p>Enter a birth date to calculate its matrix.</p>`); err != nil {
			return err
		}
		if err := DateForm(value).Render(ctx, w); err != nil {
			return err
		}
		if alert != nil {
			return alert.Render(ctx, w)
		}
		return nil
	})
	return Layout("Birth date matrix", body)
}
