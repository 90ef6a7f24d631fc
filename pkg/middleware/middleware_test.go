package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slotter/pkg/logger"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body, got %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestRequestLogging_AssignsRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	})

	rec := httptest.NewRecorder()
	RequestLogging(logger.Discard())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(seen) != 36 {
		t.Errorf("expected a uuid request id, got %q", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("expected response header %q, got %q", seen, rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestLogging_ReusesClientRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	RequestLogging(logger.Discard())(next).ServeHTTP(httptest.NewRecorder(), req)

	if seen != "client-id" {
		t.Errorf("expected client-id, got %q", seen)
	}
}

func TestRequestIDFrom_Empty(t *testing.T) {
	if id := RequestIDFrom(context.Background()); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
	if id := RequestIDFrom(WithRequestID(context.Background(), "abc")); id != "abc" {
		t.Errorf("expected abc, got %q", id)
	}
}

func TestRecovery(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recovery(logger.Discard())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body["code"] != "INTERNAL_ERROR" {
		t.Errorf("unexpected body %v", body)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("expected the panic value to stay out of the response")
	}
}

func TestContentTypeValidation(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		wantStatus  int
	}{
		{"json post", http.MethodPost, `{}`, "application/json", http.StatusOK},
		{"json with charset", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"form post", http.MethodPost, `a=b`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing header", http.MethodPost, `{}`, "", http.StatusUnsupportedMediaType},
		{"post without body", http.MethodPost, "", "", http.StatusOK},
		{"get ignores header", http.MethodGet, "", "text/plain", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()

			ContentTypeValidation(logger.Discard())(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	RequestTimeout(10*time.Millisecond)(slow).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestRequestTimeout_FastHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	RequestTimeout(time.Second)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMaxRequestSize(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))

	MaxRequestSize(16)(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded first hop", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "192.0.2.1:1234", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.3"}, "192.0.2.1:1234", "10.0.0.3"},
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"remote without port", nil, "192.0.2.1", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewClientRateLimiter(2, time.Hour, logger.Discard())
	defer limiter.Stop()
	handler := RateLimit(limiter)(okHandler())

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("192.0.2.10"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := call("192.0.2.10"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after the burst, got %d", code)
	}
	if code := call("192.0.2.11"); code != http.StatusOK {
		t.Errorf("expected another client to be unaffected, got %d", code)
	}
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	limiter := NewClientRateLimiter(1, time.Minute, logger.Discard())
	defer limiter.Stop()

	limiter.Allow("192.0.2.20")
	limiter.evictIdle(time.Now().Add(2 * time.Minute))

	if !limiter.Allow("192.0.2.20") {
		t.Error("expected an evicted client to start with a full bucket")
	}
}

func TestIdempotency(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
	})
	handler := Idempotency(store, "")(next)

	send := func(auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/calendar/slot", strings.NewReader(`{}`))
		req.Header.Set(DefaultIdempotencyHeader, "key-1")
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send("Bearer a")
	second := send("Bearer a")

	if calls != 1 {
		t.Errorf("expected the handler to run once, ran %d times", calls)
	}
	if second.Body.String() != first.Body.String() || second.Code != http.StatusOK {
		t.Errorf("expected replayed response, got %d %q", second.Code, second.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("expected the replay marker header")
	}

	send("Bearer b")
	if calls != 2 {
		t.Errorf("expected another caller's key to miss, handler ran %d times", calls)
	}
}

func TestIdempotency_DoesNotCacheFailures(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusConflict)
	})
	handler := Idempotency(store, "")(next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(DefaultIdempotencyHeader, "key-2")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 2 {
		t.Errorf("expected failed responses to be retried, handler ran %d times", calls)
	}
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	store.Set(context.Background(), "k", &CachedResponse{StatusCode: http.StatusOK})
	store.store["k"].CreatedAt = time.Now().Add(-2 * time.Minute)

	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Error("expected an expired entry to miss")
	}
}
