package middleware

import (
	"net/http"
	apperrors "slotter/pkg/errors"
	httputil "slotter/pkg/http"
	"slotter/pkg/logger"
	"strings"
)

// ContentTypeValidation rejects non-JSON bodies. Requests without a body pass.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r) {
				contentType := extractContentType(r.Header.Get("Content-Type"))

				if contentType != "application/json" {
					log.Warn("Invalid Content-Type header",
						"request_id", RequestIDFrom(r.Context()),
						"content_type", contentType,
						"path", r.URL.Path,
						"method", r.Method,
					)
					_ = httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.ErrorResponse{
						Code:  apperrors.CodeInvalidInput,
						Error: "Content-Type must be application/json",
					})
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresContentType(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

func extractContentType(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.Split(header, ";")
	return strings.ToLower(strings.TrimSpace(parts[0]))
}
