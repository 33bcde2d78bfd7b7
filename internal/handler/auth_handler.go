package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録し、トークンを返す。
	Register(ctx context.Context, email, password string) (string, error)
	// Authenticate は認証情報を照合し、トークンを返す。
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// AuthHandler はサインアップとログインのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// credentialsRequest はサインアップ/ログインのリクエストボディ。
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signupResponse はサインアップ成功時のレスポンス。
type signupResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// tokenResponse はログイン成功時のレスポンス。
type tokenResponse struct {
	Token string `json:"token"`
}

// Signup はユーザーを登録する。
// POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	token, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) {
			// サインアップの予期しない失敗は400として返す
			slog.Error("failed to register user", slog.String("error", err.Error()))
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewSignupFailedError())
			return
		}
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{
		Message: "User created",
		Token:   token,
	})
}

// Login は認証情報を照合してトークンを発行する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	token, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}
