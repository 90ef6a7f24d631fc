package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	apperrors "slotter/pkg/errors"
	"slotter/pkg/logger"
	"slotter/pkg/model"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

type mockUserService struct {
	registerFunc func(ctx context.Context, req *model.RegisterRequest) (*model.RegisteredUser, error)
	loginFunc    func(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
}

func (m *mockUserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisteredUser, error) {
	return m.registerFunc(ctx, req)
}

func (m *mockUserService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	return m.loginFunc(ctx, req)
}

func (m *mockUserService) Resolve(context.Context, string) (*model.Identity, error) {
	return nil, apperrors.Unauthorized("Invalid token")
}

func TestRegister(t *testing.T) {
	h := NewUserHandler(&mockUserService{
		registerFunc: func(_ context.Context, req *model.RegisterRequest) (*model.RegisteredUser, error) {
			return &model.RegisteredUser{ID: "u1", Username: req.Email}, nil
		},
	}, logger.Discard())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/register", strings.NewReader(`{"email":"a@example.com","password":"pw"}`))
	w := httptest.NewRecorder()
	h.Register(w, req, httprouter.Params{})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var resp struct {
		Data model.RegisteredUser `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.ID != "u1" || resp.Data.Username != "a@example.com" {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestRegister_AlreadyRegistered(t *testing.T) {
	h := NewUserHandler(&mockUserService{
		registerFunc: func(context.Context, *model.RegisterRequest) (*model.RegisteredUser, error) {
			return nil, apperrors.AlreadyRegistered("User is already registered")
		},
	}, logger.Discard())

	w := httptest.NewRecorder()
	h.Register(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@example.com","password":"pw"}`)), httprouter.Params{})

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		result     *model.LoginResponse
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "success",
			body:       `{"username":"a@example.com","password":"pw"}`,
			result:     &model.LoginResponse{Token: "tok"},
			wantStatus: http.StatusOK,
			wantBody:   `"token":"tok"`,
		},
		{
			name:       "invalid credentials",
			body:       `{"username":"a@example.com","password":"bad"}`,
			err:        apperrors.Unauthorized("invalid login data"),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `"error":"invalid login data"`,
		},
		{
			name:       "malformed body",
			body:       `{"username":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"code":"INVALID_INPUT"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewUserHandler(&mockUserService{
				loginFunc: func(context.Context, *model.LoginRequest) (*model.LoginResponse, error) {
					return tt.result, tt.err
				},
			}, logger.Discard())

			w := httptest.NewRecorder()
			h.Login(w, httptest.NewRequest(http.MethodPost, "/api/v1/user/login", strings.NewReader(tt.body)), httprouter.Params{})

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("expected body to contain %s, got %s", tt.wantBody, w.Body.String())
			}
		})
	}
}
