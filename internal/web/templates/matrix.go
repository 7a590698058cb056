package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/birthmatrix/internal/core"
)

// gridRows is the classic square layout: digits run down the columns.
var gridRows = [3][3]int{
	{1, 4, 7},
	{2, 5, 8},
	{3, 6, 9},
}

// MatrixPage renders a calculation result.
func MatrixPage(res *core.Result) templ.Component {
	date := res.Reading.Date.String()
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<h1>Matrix for %s</h1>`, templ.EscapeString(date)); err != nil {
			return err
		}
		if err := DateForm(date).Render(ctx, w); err != nil {
			return err
		}
		if err := numbers(res).Render(ctx, w); err != nil {
			return err
		}
		if err := grid(res.Cells).Render(ctx, w); err != nil {
			return err
		}
		if err := analysis(res).Render(ctx, w); err != nil {
			return err
		}
		return plan(res.Plan).Render(ctx, w)
	})
	return Layout("Matrix "+date, body)
}

func numbers(res *core.Result) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h2>Working numbers</h2><div class="numbers">`); err != nil {
			return err
		}
		for _, n := range res.Reading.Numbers {
			if _, err := fmt.Fprintf(w, `<span>%d</span>`, n); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `</div><p>Zeros in the pool: %d</p>`, res.Reading.ZeroCount)
		return err
	})
}

func grid(cells []core.CellView) templ.Component {
	byDigit := make(map[int]core.CellView, len(cells))
	for _, c := range cells {
		byDigit[c.Digit] = c
	}

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<table class="matrix">`); err != nil {
			return err
		}
		for _, row := range gridRows {
			if _, err := io.WriteString(w, `<tr>`); err != nil {
				return err
			}
			for _, digit := range row {
				c := byDigit[digit]
				class := ""
				if c.Count == 0 {
					class = ` class="empty"`
				}
				if _, err := fmt.Fprintf(w,
					`<td%s data-digit="%d"><span class="label">%s</span><span class="quality">%s</span></td>`,
					class, digit, templ.EscapeString(c.Label), templ.EscapeString(c.Quality)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</tr>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</table>`)
		return err
	})
}

func analysis(res *core.Result) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		a := res.Analysis
		if _, err := fmt.Fprintf(w, `<h2>Analysis</h2><p>Level: <strong>%s</strong> (score %d)</p>`,
			templ.EscapeString(string(a.Level)), a.Score); err != nil {
			return err
		}

		if len(a.Issues) > 0 {
			if _, err := io.WriteString(w, `<ul class="issues">`); err != nil {
				return err
			}
			for _, is := range a.Issues {
				if _, err := fmt.Fprintf(w, `<li>%s of %d (count %d, %s)</li>`,
					templ.EscapeString(string(is.Kind)), is.Digit, is.Count, templ.EscapeString(string(is.Severity))); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul>`); err != nil {
				return err
			}
		}

		if len(res.Karmic) > 0 {
			if _, err := io.WriteString(w, `<h2>Karmic numbers</h2><ul class="karmic">`); err != nil {
				return err
			}
			for _, k := range res.Karmic {
				if _, err := fmt.Fprintf(w, `<li><strong>%d</strong> %s</li>`,
					k.Number, templ.EscapeString(k.Description)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul>`); err != nil {
				return err
			}
		}

		if len(res.Programs) > 0 {
			if _, err := io.WriteString(w, `<h2>Birth programs</h2><ul class="programs">`); err != nil {
				return err
			}
			for _, p := range res.Programs {
				if _, err := fmt.Fprintf(w, `<li><strong>%d</strong> %s: %s</li>`,
					p.Digit, templ.EscapeString(p.Title), templ.EscapeString(p.Healing)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul>`); err != nil {
				return err
			}
		}
		return nil
	})
}

// plan renders the practice plan phase by phase.
func plan(p core.PlanView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(p.Phases) == 0 {
			return nil
		}
		if _, err := fmt.Fprintf(w, `<h2>Practice plan, %d days</h2><ol class="plan">`, p.Days); err != nil {
			return err
		}
		for _, ph := range p.Phases {
			if _, err := fmt.Fprintf(w, `<li><strong>%s</strong> (days %d-%d): %s<br>%s`,
				templ.EscapeString(ph.Name), ph.FirstDay, ph.LastDay,
				templ.EscapeString(ph.Goal), templ.EscapeString(ph.Focus)); err != nil {
				return err
			}
			for _, pr := range ph.Practices {
				if _, err := fmt.Fprintf(w, `<p class="practice">%s: %s</p>`,
					templ.EscapeString(pr.Name), templ.EscapeString(pr.Description)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</li>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ol>`)
		return err
	})
}
