package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	RequestIDKey    contextKey = "request_id"
	RequestIDHeader            = "X-Request-ID"
)

// RequestIDFromContext returns the request id set by RequestLogging, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func requestID(r *http.Request) string {
	return RequestIDFromContext(r.Context())
}
