package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/birthmatrix/internal/core"
)

// WithRequestMetadata adds client IP and User-Agent to ctx for the
// calculation history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
