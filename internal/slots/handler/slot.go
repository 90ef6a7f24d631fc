package handler

import (
	"net/http"
	"slotter/internal/slots/service"
	"slotter/pkg/auth"
	httputil "slotter/pkg/http"
	"slotter/pkg/logger"
	"slotter/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SlotHandler struct {
	service service.SlotService
	log     *logger.Logger
}

func NewSlotHandler(service service.SlotService, log *logger.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log,
	}
}

func (h *SlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/calendar/slot", h.Create)
	router.GET("/api/v1/calendar/slot", h.ListOwn)
	router.GET("/api/v1/calendar/slot/:id", h.GetDetail)
	router.DELETE("/api/v1/calendar/slot/:id", h.Delete)
	router.POST("/api/v1/calendar/slots/interval", h.CreateInterval)
	router.GET("/api/v1/calendar/book/slots/:user_id", h.ListAvailable)
}

func (h *SlotHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.SlotRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	created, err := h.service.CreateSlot(r.Context(), caller.UserID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	h.writeSuccess(w, "Create", created)
}

func (h *SlotHandler) ListOwn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "ListOwn", err)
		return
	}

	slots, err := h.service.ListOwnSlots(r.Context(), caller.UserID)
	if err != nil {
		h.writeError(w, "ListOwn", err)
		return
	}

	h.writeSuccess(w, "ListOwn", slots)
}

func (h *SlotHandler) GetDetail(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "GetDetail", err)
		return
	}

	detail, err := h.service.GetSlotDetail(r.Context(), caller.UserID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetDetail", err)
		return
	}

	h.writeSuccess(w, "GetDetail", detail)
}

func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := h.service.DeleteSlot(r.Context(), caller.UserID, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteMessage(w, "Slot deleted successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *SlotHandler) CreateInterval(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "CreateInterval", err)
		return
	}

	var req model.IntervalRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		h.writeError(w, "CreateInterval", err)
		return
	}

	ids, err := h.service.CreateSlotsForInterval(r.Context(), caller.UserID, &req)
	if err != nil {
		h.writeError(w, "CreateInterval", err)
		return
	}

	h.writeSuccess(w, "CreateInterval", ids)
}

// ListAvailable is public: anonymous callers may browse anyone's open slots.
func (h *SlotHandler) ListAvailable(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slots, err := h.service.ListAvailableSlots(r.Context(), ps.ByName("user_id"))
	if err != nil {
		h.writeError(w, "ListAvailable", err)
		return
	}

	h.writeSuccess(w, "ListAvailable", slots)
}

func (h *SlotHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *SlotHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}
