package testutil

import (
	"context"
	"net/http"
	"time"

	id "demandas/pkg/domain"
	"demandas/pkg/requestcontext"
)

// WithAnalyst adds an analyst ID to the request context.
// This simulates what the auth middleware does for authenticated requests.
// If the analystID is not a valid UUID, it will not be added to the context.
func WithAnalyst(req *http.Request, analystID string) *http.Request {
	if parsed, err := id.ParseAnalystID(analystID); err == nil {
		return req.WithContext(requestcontext.WithAnalystID(req.Context(), parsed))
	}
	return req
}

// WithRequestTime pins the request-scoped clock.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
