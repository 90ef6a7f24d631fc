// Package health serves the liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	httputil "slotter/pkg/http"
	"slotter/pkg/logger"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const readyTimeout = 2 * time.Second

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type HealthHandler struct {
	db  Pinger
	log *logger.Logger
}

func NewHealthHandler(db Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:  db,
		log: log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.write(w, "Health", http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.db.Ping(ctx, readpref.Primary()); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		h.write(w, "Ready", http.StatusServiceUnavailable, HealthResponse{
			Status:   "unavailable",
			Database: "error",
		})
		return
	}

	h.write(w, "Ready", http.StatusOK, HealthResponse{
		Status:   "ready",
		Database: "ok",
	})
}

func (h *HealthHandler) write(w http.ResponseWriter, handler string, status int, resp HealthResponse) {
	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
