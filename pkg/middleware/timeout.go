package middleware

import (
	"context"
	"net/http"
	apperrors "slotter/pkg/errors"
	httputil "slotter/pkg/http"
	"sync"
	"time"
)

// timeoutWriter drops writes once the request has timed out
type timeoutWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	timedOut bool
	written  bool
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut || tw.written {
		return
	}

	tw.written = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.written = true

	return tw.ResponseWriter.Write(b)
}

func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)
			tw := &timeoutWriter{ResponseWriter: w}

			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case <-done:
				return
			case p := <-panicked:
				panic(p)
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.timedOut = true
				if !tw.written {
					_ = httputil.WriteJSON(w, http.StatusServiceUnavailable, httputil.ErrorResponse{
						Code:  apperrors.CodeInternal,
						Error: "Request timeout",
					})
				}
			}
		})
	}
}

// MaxRequestSize caps the readable request body at limit bytes.
func MaxRequestSize(limit int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > int64(limit) {
				_ = httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
					Code:  apperrors.CodeInvalidInput,
					Error: "Request body too large",
				})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, int64(limit))
			next.ServeHTTP(w, r)
		})
	}
}
