package middleware

import (
	"net"
	"net/http"
	apperrors "slotter/pkg/errors"
	httputil "slotter/pkg/http"
	"slotter/pkg/logger"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter keeps one token bucket per client IP: limit requests per
// window, refilled evenly.
type ClientRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	every   rate.Limit
	burst   int
	window  time.Duration
	log     *logger.Logger
	stopCh  chan struct{}
	once    sync.Once
}

func NewClientRateLimiter(limit int, window time.Duration, log *logger.Logger) *ClientRateLimiter {
	limiter := &ClientRateLimiter{
		clients: make(map[string]*clientLimiter),
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
		window:  window,
		log:     log,
		stopCh:  make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *ClientRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// evictIdle forgets clients idle for longer than a window. Their buckets are full
// again by then.
func (rl *ClientRateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.window {
			delete(rl.clients, ip)
		}
	}
}

func (rl *ClientRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *ClientRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

func RateLimit(limiter *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)

			if !limiter.Allow(ip) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFrom(r.Context()),
					"client_ip", ip,
					"path", r.URL.Path,
				)
				_ = httputil.WriteError(w, apperrors.RateLimited("Rate limit exceeded. Try again later."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer
// address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
