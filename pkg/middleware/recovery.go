package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	apperrors "slotter/pkg/errors"
	httputil "slotter/pkg/http"
	"slotter/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					log.Error("Panic recovered",
						"request_id", RequestIDFrom(r.Context()),
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					_ = httputil.WriteError(w, apperrors.Internal("Internal server error", errors.New(fmt.Sprint(err))))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
