package handler

import (
	"net/http"
	"slotter/internal/users/service"
	httputil "slotter/pkg/http"
	"slotter/pkg/logger"
	"slotter/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/user/register", h.Register)
	router.POST("/api/v1/user/login", h.Login)
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteCreated(w, user); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
