package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/birthmatrix/internal/core"
)

// HistoryPage is the GET /api/history body.
type HistoryPage struct {
	Entries []core.HistoryEntry `json:"entries"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}

// parseIntParam parses a non-negative integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

// parseDayParam parses a YYYY-MM-DD query parameter. endOfDay moves the
// result to the last instant of that day.
func parseDayParam(r *http.Request, name string, endOfDay bool) (time.Time, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", core.ErrInvalidRequest, name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// handleListHistory lists recorded calculations, newest first.
//
// Query: date=DD.MM.YYYY, since=YYYY-MM-DD, until=YYYY-MM-DD, limit, offset.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	since, err := parseDayParam(r, "since", false)
	if err != nil {
		respondError(w, r, err)
		return
	}
	until, err := parseDayParam(r, "until", true)
	if err != nil {
		respondError(w, r, err)
		return
	}

	filter := core.HistoryFilter{
		BirthDate: r.URL.Query().Get("date"),
		Since:     since,
		Until:     until,
		Limit:     parseIntParam(r, "limit", core.DefaultHistoryLimit),
		Offset:    parseIntParam(r, "offset", 0),
	}
	if filter.Limit > core.MaxHistoryLimit {
		filter.Limit = core.MaxHistoryLimit
	}

	entries, err := s.service.History(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, HistoryPage{
		Entries: entries,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

// handleHistoryEntry returns one recorded calculation.
func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.service.HistoryEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
