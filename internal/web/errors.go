package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted as JSON for API clients and as a page for browsers
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. statusFor picks the HTTP status from the error chain
//  4. core.MapError supplies the user-friendly message and code
//  5. Technical error + context is logged with request ID for correlation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/birthmatrix/internal/core"
	"github.com/JonMunkholm/birthmatrix/internal/logging"
	"github.com/JonMunkholm/birthmatrix/internal/numerology"
	"github.com/JonMunkholm/birthmatrix/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
}

// statusFor maps an error chain to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, numerology.ErrInvalidFormat),
		errors.Is(err, core.ErrMissingDate),
		errors.Is(err, core.ErrInvalidRequest),
		errors.Is(err, numerology.ErrUnknownRelation):
		return http.StatusBadRequest
	case errors.Is(err, numerology.ErrOutOfRange),
		errors.Is(err, numerology.ErrImpossibleDate),
		errors.Is(err, numerology.ErrFutureDate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrHistoryNotFound),
		errors.Is(err, core.ErrFamilyNotFound),
		errors.Is(err, core.ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrOwnerImmutable),
		errors.Is(err, core.ErrTreeFull):
		return http.StatusConflict
	case errors.Is(err, core.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrHistoryDisabled),
		errors.Is(err, core.ErrFamilyDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes its user-facing form. API paths get JSON,
// pages get the index page with an alert.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		resp := ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		}
		var de *numerology.DateError
		if errors.As(err, &de) {
			resp.Field = de.Field
		}
		writeJSON(w, status, resp)
		return
	}

	renderPage(w, r, status,
		templates.IndexPage(r.URL.Query().Get("date"),
			templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code)))
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
