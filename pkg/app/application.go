package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slotter/internal/health"
	"slotter/pkg/auth"
	"slotter/pkg/config"
	"slotter/pkg/contracts"
	"slotter/pkg/middleware"
	"syscall"

	"github.com/julienschmidt/httprouter"
)

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      *middleware.ClientRateLimiter
	healthHandler    http.Handler
	appHTTPHandler   http.Handler
	onShutdown       []func()
}

func NewApplication() *Application {
	return &Application{}
}

func (a *Application) SetApp(cfg *config.Config, appHandler contracts.Handler, resolver auth.Resolver) {
	a.cfg = cfg
	a.setHealthHandler(cfg)
	a.setAppHandler(cfg, appHandler, resolver)
	a.setAppServer()
}

// OnShutdown registers fn to run after the server has drained, in registration order.
func (a *Application) OnShutdown(fn func()) {
	a.onShutdown = append(a.onShutdown, fn)
}

func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler(cfg *config.Config) {
	healthRouter := httprouter.New()
	health.NewHealthHandler(cfg.Client.Mongo, cfg.Log).RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(cfg *config.Config, appHandler contracts.Handler, resolver auth.Resolver) {
	appRouter := httprouter.New()
	appHandler.RegisterRoutes(appRouter)

	if cfg.Client.Redis != nil {
		a.idempotencyStore = middleware.NewRedisIdempotencyStore(cfg.Client.Redis, cfg.IdempotencyTTL, cfg.Log)
		cfg.Log.Info("Idempotency keys shared through Redis")
	} else {
		a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL)
	}
	a.rateLimiter = middleware.NewClientRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.Log)

	var appHTTPHandler http.Handler = appRouter
	appHTTPHandler = middleware.Idempotency(a.idempotencyStore, middleware.DefaultIdempotencyHeader)(appHTTPHandler)
	appHTTPHandler = middleware.RequestTimeout(cfg.RequestTimeout)(appHTTPHandler)
	appHTTPHandler = auth.Authenticate(resolver, cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.RateLimit(a.rateLimiter)(appHTTPHandler)
	appHTTPHandler = middleware.ContentTypeValidation(cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.MaxRequestSize(cfg.MaxRequestSize)(appHTTPHandler)
	appHTTPHandler = middleware.RequestLogging(cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.Recovery(cfg.Log)(appHTTPHandler)
	a.appHTTPHandler = appHTTPHandler
	cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHTTPHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	for _, fn := range a.onShutdown {
		fn()
	}
	a.cfg.Log.Info("Background workers stopped")

	a.cfg.Log.Info("Server stopped gracefully")
}
