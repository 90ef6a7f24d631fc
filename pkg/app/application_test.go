package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slotter/pkg/client"
	"slotter/pkg/config"
	apperrors "slotter/pkg/errors"
	"slotter/pkg/logger"
	"slotter/pkg/model"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
)

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, token string) (*model.Identity, error) {
	if token == "good" {
		return &model.Identity{UserID: "u1"}, nil
	}
	return nil, apperrors.Unauthorized("Invalid token")
}

type whoAmI struct{}

func (whoAmI) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/echo", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "8080",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1024,
		ReadTimeout:       time.Second,
		WriteTimeout:      time.Second,
		IdleTimeout:       time.Second,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
		Client:            client.NewClient(),
	}
}

func TestApplication_MiddlewareChain(t *testing.T) {
	a := NewApplication()
	a.SetApp(testConfig(), whoAmI{}, stubResolver{})
	defer a.rateLimiter.Stop()
	defer a.idempotencyStore.Stop()

	tests := []struct {
		name        string
		auth        string
		contentType string
		wantStatus  int
	}{
		{"anonymous json", "", "application/json", http.StatusOK},
		{"valid token", "Bearer good", "application/json", http.StatusOK},
		{"bad token", "Bearer bad", "application/json", http.StatusUnauthorized},
		{"wrong content type", "", "text/plain", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(`{}`))
			req.Header.Set("Content-Type", tt.contentType)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()

			a.Handler().ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("expected a request id header")
			}
		})
	}
}

func TestApplication_HealthBypassesAuth(t *testing.T) {
	a := NewApplication()
	a.SetApp(testConfig(), whoAmI{}, stubResolver{})
	defer a.rateLimiter.Stop()
	defer a.idempotencyStore.Stop()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w := httptest.NewRecorder()

	a.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
