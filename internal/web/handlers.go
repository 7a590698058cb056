package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/birthmatrix/internal/core"
	"github.com/JonMunkholm/birthmatrix/internal/logging"
	"github.com/JonMunkholm/birthmatrix/internal/web/templates"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 4 << 10

// CalculateRequest is the POST /api/calculate body. Either Date or the
// day/month/year triple is set.
type CalculateRequest struct {
	Date  string `json:"date,omitempty"`
	Day   int    `json:"day,omitempty"`
	Month int    `json:"month,omitempty"`
	Year  int    `json:"year,omitempty"`
}

// renderPage writes a templ component with the given status.
func renderPage(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	templ.Handler(c, templ.WithStatus(status)).ServeHTTP(w, r)
}

// dateParam returns the trimmed ?date= value or ErrMissingDate.
func dateParam(r *http.Request) (string, error) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		return "", core.ErrMissingDate
	}
	return date, nil
}

// handleIndex renders the landing page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, templates.IndexPage("", nil))
}

// handleMatrixPage renders the matrix of ?date=.
func (s *Server) handleMatrixPage(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.Calculate(WithRequestMetadata(r.Context(), r), date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	renderPage(w, r, http.StatusOK, templates.MatrixPage(res))
}

// handleCalculate returns the reading of ?date= as JSON.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.Calculate(WithRequestMetadata(r.Context(), r), date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleCalculatePost accepts a CalculateRequest body.
func (s *Server) handleCalculatePost(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCalculateRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	var res *core.Result
	if req.Date != "" {
		res, err = s.service.Calculate(ctx, strings.TrimSpace(req.Date))
	} else {
		res, err = s.service.CalculateDate(ctx, req.Day, req.Month, req.Year)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Debug("calculation served",
		"date", res.Reading.Date.String(),
		"cached", res.Cached,
	)
	writeJSON(w, http.StatusOK, res)
}

// decodeBody reads a JSON body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}
	return nil
}

func decodeCalculateRequest(r *http.Request) (CalculateRequest, error) {
	var req CalculateRequest

	if err := decodeBody(r, &req); err != nil {
		return req, err
	}
	if req.Date == "" && req.Day == 0 && req.Month == 0 && req.Year == 0 {
		return req, core.ErrMissingDate
	}
	return req, nil
}

// handleForecast returns the forecast of ?date= for the month of ?at=
// (YYYY-MM-DD, default today).
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var at time.Time
	if raw := r.URL.Query().Get("at"); raw != "" {
		at, err = time.Parse(time.DateOnly, raw)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: at must be YYYY-MM-DD", core.ErrInvalidRequest))
			return
		}
	}

	res, err := s.service.Forecast(r.Context(), date, at)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HealthStatus is the /healthz body.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleHealth runs every registered check. Any failure yields 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthStatus{Status: "ok", Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			logging.FromContext(ctx).Warn("health check failed", "check", name, "error", err)
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	writeJSON(w, status, resp)
}
