package http

import (
	"encoding/json"
	"net/http"
	apperrors "slotter/pkg/errors"
)

type ErrorResponse struct {
	Code    string         `json:"code,omitempty"`
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data any `json:"data"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err with the status of its AppError. Anything else is a 500 and
// its cause is never sent to the client.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)

	resp := ErrorResponse{
		Code:    appErr.Code,
		Error:   appErr.Message,
		Details: appErr.Details,
	}
	status := appErr.StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return WriteJSON(w, status, resp)
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

func WriteMessage(w http.ResponseWriter, message string) error {
	return WriteSuccess(w, MessageResponse{Message: message})
}
