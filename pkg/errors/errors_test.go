package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidInput, "bad payload", http.StatusBadRequest)

	if err.Code != CodeInvalidInput {
		t.Errorf("expected code %s, got %s", CodeInvalidInput, err.Code)
	}
	if err.Message != "bad payload" {
		t.Errorf("expected message 'bad payload', got %s", err.Message)
	}
	if err.StatusCode() != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.StatusCode())
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "Slot not found"},
			expected: "NOT_FOUND: Slot not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	if errors.Unwrap(appErr) != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Slot"), CodeNotFound, http.StatusNotFound},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"missing field", MissingField("start_time"), CodeMissingField, http.StatusBadRequest},
		{"unauthorized", Unauthorized("login first"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("taken"), CodeConflict, http.StatusConflict},
		{"past slot", PastSlot("create future slots"), CodePastSlot, http.StatusBadRequest},
		{"already booked", AlreadyBooked("booked"), CodeAlreadyBooked, http.StatusConflict},
		{"expired", Expired("gone"), CodeExpired, http.StatusBadRequest},
		{"already registered", AlreadyRegistered("exists"), CodeAlreadyRegistered, http.StatusConflict},
		{"multiple days", IntervalSpansMultipleDays("one day"), CodeMultipleDays, http.StatusBadRequest},
		{"rate limited", RateLimited("slow down"), CodeRateLimited, http.StatusTooManyRequests},
		{"internal", Internal("boom", errors.New("cause")), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.HTTPStatus)
			}
		})
	}
}

func TestMissingField_Details(t *testing.T) {
	err := MissingField("description")

	if err.Message != "description is required" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Details["field"] != "description" {
		t.Errorf("expected field detail, got %v", err.Details["field"])
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("User", "12345")

	if err.Message != "User not found" {
		t.Errorf("expected message 'User not found', got %s", err.Message)
	}
	if err.Details["id"] != "12345" {
		t.Errorf("expected id '12345', got %v", err.Details["id"])
	}
	if err.Details["resource"] != "User" {
		t.Errorf("expected resource 'User', got %v", err.Details["resource"])
	}
}

func TestConflictingRange(t *testing.T) {
	start := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)
	err := ConflictingRange("slot conflicts", start, start.Add(time.Hour))

	if err.Code != CodeConflict {
		t.Errorf("expected code %s, got %s", CodeConflict, err.Code)
	}
	if err.Details["conflicting_start"] != "2030-01-02T10:00:00Z" {
		t.Errorf("unexpected conflicting_start %v", err.Details["conflicting_start"])
	}
	if err.Details["conflicting_end"] != "2030-01-02T11:00:00Z" {
		t.Errorf("unexpected conflicting_end %v", err.Details["conflicting_end"])
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound("User")

	if !IsAppError(appErr) {
		t.Errorf("IsAppError() should return true for AppError")
	}
	if !IsAppError(fmt.Errorf("transaction failed: %w", appErr)) {
		t.Errorf("IsAppError() should see through wrapping")
	}
	if IsAppError(errors.New("regular error")) {
		t.Errorf("IsAppError() should return false for regular error")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", AlreadyBooked("booked"))

	if !HasCode(err, CodeAlreadyBooked) {
		t.Error("expected HasCode to match wrapped code")
	}
	if HasCode(err, CodeConflict) {
		t.Error("expected HasCode to reject other codes")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Error("expected HasCode to reject non-AppErrors")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("User")
	regularErr := errors.New("regular error")

	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	body := string(NotFoundWithID("Slot", "abc").ToJSON())

	for _, want := range []string{`"code":"NOT_FOUND"`, `"message":"Slot not found"`, `"id":"abc"`} {
		if !strings.Contains(body, want) {
			t.Errorf("ToJSON() = %s, missing %s", body, want)
		}
	}
	if strings.Contains(body, "HTTPStatus") {
		t.Errorf("ToJSON() should not expose the HTTP status, got %s", body)
	}
}
