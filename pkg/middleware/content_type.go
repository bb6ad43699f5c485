package middleware

import (
	"mime"
	"net/http"

	apperrors "lockrent/pkg/errors"
	httputil "lockrent/pkg/http"
	"lockrent/pkg/logger"
)

// ContentTypeValidation rejects POST, PUT and PATCH requests that carry a
// body with a content type other than application/json.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r) {
				contentType := extractContentType(r.Header.Get("Content-Type"))
				if contentType != "application/json" {
					log.Warn("Invalid Content-Type header",
						"request_id", requestID(r),
						"content_type", contentType,
						"path", r.URL.Path,
						"method", r.Method,
					)
					_ = httputil.WriteError(w, apperrors.New(apperrors.CodeInvalidInput,
						"Content-Type must be application/json", http.StatusUnsupportedMediaType))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Body-less commands such as end-rental are allowed without a content type.
func requiresContentType(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	default:
		return false
	}
}

func extractContentType(header string) string {
	if header == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return mediaType
}
