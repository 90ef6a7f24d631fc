package handler

import (
	"net/http"
	"slotter/internal/bookings/service"
	"slotter/pkg/auth"
	httputil "slotter/pkg/http"
	"slotter/pkg/logger"
	"slotter/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/calendar/book/slot/:id", h.Book)
	router.DELETE("/api/v1/calendar/book/slot/:id", h.Cancel)
}

// Book accepts anonymous callers; the booking then carries no booker.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		h.writeError(w, "Book", err)
		return
	}

	confirmation, err := h.service.BookSlot(r.Context(), auth.IdentityFrom(r.Context()), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	if err := httputil.WriteSuccess(w, confirmation); err != nil {
		h.log.Error("failed to write success response", "handler", "Book", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.CancelBooking(r.Context(), auth.IdentityFrom(r.Context()), ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteMessage(w, "Booking cancelled successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "Cancel", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
