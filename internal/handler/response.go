package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// maxRequestBodyBytes はリクエストボディの最大サイズ。
const maxRequestBodyBytes = 1 << 20

// messageResponse はメッセージのみのレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う。詳細はログのみに記録する
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// バリデーションエラーは既存クライアントとの互換性のため411を返す。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation:
		return http.StatusLengthRequired
	case model.ErrCodeBadRequest, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized, model.ErrCodeTokenInvalid:
		return http.StatusUnauthorized
	case model.ErrCodeUserAlreadyExists, model.ErrCodeInvalidCredentials:
		return http.StatusBadRequest
	case model.ErrCodeTaskNotFound, model.ErrCodeNoTasksFound:
		return http.StatusNotFound
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON はリクエストボディをdstにデコードする。
// 空のボディは空オブジェクトとして扱い、必須項目の判定はサービス層に委ねる。
// JSON構文エラーはINVALID_REQUEST、フィールドの型不一致はVALIDATION_ERRORを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) *model.APIError {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return model.NewValidationError([]model.ValidationIssue{{
			Field:   typeErr.Field,
			Code:    "invalid_type",
			Message: fmt.Sprintf("Expected %s, received %s", typeErr.Type.Kind(), typeErr.Value),
		}})
	}

	return model.NewInvalidRequestError()
}
