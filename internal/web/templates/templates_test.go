package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/birthmatrix/internal/catalog"
	"github.com/JonMunkholm/birthmatrix/internal/core"
)

func TestIndexPage_EscapesValue(t *testing.T) {
	var buf bytes.Buffer
	err := IndexPage(`"><script>`, ErrorAlert("Bad <date>", "Try again", "DATE001")).
		Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.NotContains(t, html, `"><script>`)
	assert.Contains(t, html, "&lt;date&gt;")
	assert.Contains(t, html, "DATE001")
}

func TestMatrixPage(t *testing.T) {
	svc := core.NewService(catalog.MustLoad(), core.WithClock(func() time.Time {
		return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	}))
	res, err := svc.Calculate(context.Background(), "15.05.1992")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, MatrixPage(res).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, "<title>Matrix 15.05.1992</title>")
	assert.Contains(t, html, `<td data-digit="1"><span class="label">11</span>`)
	assert.Contains(t, html, `<td class="empty" data-digit="4"><span class="label">—</span>`)
	assert.Contains(t, html, `<span>32</span><span>5</span><span>30</span><span>3</span>`)
	assert.Contains(t, html, "Level: <strong>critical</strong>")
	assert.Contains(t, html, "<h2>Practice plan, 30 days</h2>")
	assert.Contains(t, html, "<strong>Foundation</strong> (days 1-10)")

	// Digits run down the columns: 1 4 7 on the first row.
	first := strings.Index(html, `data-digit="1"`)
	four := strings.Index(html, `data-digit="4"`)
	two := strings.Index(html, `data-digit="2"`)
	assert.Less(t, first, four)
	assert.Less(t, four, two)
}
