package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn     func(ctx context.Context, email, password string) (string, error)
	authenticateFn func(ctx context.Context, email, password string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password string) (string, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, password)
	}
	return "", nil
}

func (m *mockAuthService) Authenticate(ctx context.Context, email, password string) (string, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, email, password)
	}
	return "", nil
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v\nraw: %s", err, w.Body.String())
	}
	return body
}

// --- テスト ---

func TestAuthHandler_Signup_Created(t *testing.T) {
	var gotEmail, gotPassword string
	svc := &mockAuthService{
		registerFn: func(_ context.Context, email, password string) (string, error) {
			gotEmail, gotPassword = email, password
			return "signed-token", nil
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"email":"alice@example.com","password":"secret1"}`))
	w := httptest.NewRecorder()

	h.Signup(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotEmail != "alice@example.com" || gotPassword != "secret1" {
		t.Errorf("service got (%q, %q)", gotEmail, gotPassword)
	}

	var body signupResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Message != "User created" || body.Token != "signed-token" {
		t.Errorf("body = %+v", body)
	}
}

func TestAuthHandler_Signup_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		serviceErr  error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:       "validation error",
			body:       `{"email":"bad","password":"1"}`,
			serviceErr: model.NewValidationError([]model.ValidationIssue{{Field: "email"}}),
			wantStatus: http.StatusLengthRequired,
			wantCode:   model.ErrCodeValidation,
		},
		{
			name:        "duplicate email",
			body:        `{"email":"alice@example.com","password":"secret1"}`,
			serviceErr:  model.NewUserAlreadyExistsError(),
			wantStatus:  http.StatusBadRequest,
			wantCode:    model.ErrCodeUserAlreadyExists,
			wantMessage: "User already exists",
		},
		{
			name:        "unexpected error is opaque 400",
			body:        `{"email":"alice@example.com","password":"secret1"}`,
			serviceErr:  errors.New("pq: connection refused"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    model.ErrCodeBadRequest,
			wantMessage: "Error creating user",
		},
		{
			name:       "malformed JSON",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   model.ErrCodeInvalidRequest,
		},
		{
			name:       "wrong field type",
			body:       `{"email":123,"password":"secret1"}`,
			wantStatus: http.StatusLengthRequired,
			wantCode:   model.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				registerFn: func(_ context.Context, _, _ string) (string, error) {
					return "", tt.serviceErr
				},
			}
			h := NewAuthHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.Signup(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			body := decodeErrorBody(t, w)
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if tt.wantMessage != "" && body.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", body.Message, tt.wantMessage)
			}
			if strings.Contains(w.Body.String(), "pq:") {
				t.Error("response leaks internal error detail")
			}
		})
	}
}

func TestAuthHandler_Signup_TypeErrorNamesField(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"email":"alice@example.com","password":123456}`))
	w := httptest.NewRecorder()

	h.Signup(w, req)

	body := decodeErrorBody(t, w)
	if len(body.Errors) != 1 || body.Errors[0].Field != "password" || body.Errors[0].Code != "invalid_type" {
		t.Errorf("errors = %+v, want password invalid_type", body.Errors)
	}
}

func TestAuthHandler_Login_OK(t *testing.T) {
	svc := &mockAuthService{
		authenticateFn: func(_ context.Context, _, _ string) (string, error) {
			return "signed-token", nil
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"alice@example.com","password":"secret1"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(body) != 1 || body["token"] != "signed-token" {
		t.Errorf("body = %v, want only token", body)
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"invalid credentials", model.NewInvalidCredentialsError(), http.StatusBadRequest, model.ErrCodeInvalidCredentials},
		{"validation", model.NewValidationError(nil), http.StatusLengthRequired, model.ErrCodeValidation},
		{"internal", errors.New("db down"), http.StatusInternalServerError, model.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				authenticateFn: func(_ context.Context, _, _ string) (string, error) {
					return "", tt.serviceErr
				},
			}
			h := NewAuthHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
				strings.NewReader(`{"email":"alice@example.com","password":"secret1"}`))
			w := httptest.NewRecorder()

			h.Login(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if body := decodeErrorBody(t, w); body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}
