package middleware

import (
	"net/http"

	apperrors "lockrent/pkg/errors"
	httputil "lockrent/pkg/http"
)

// MaxRequestSize rejects requests whose declared length exceeds limit and
// caps the body reader for the rest.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				_ = httputil.WriteError(w, apperrors.New(apperrors.CodeInvalidInput,
					"Request body too large", http.StatusRequestEntityTooLarge))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
