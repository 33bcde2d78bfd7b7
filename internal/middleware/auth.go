// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// authHeaderName はトークンを格納するリクエストヘッダー名。
const authHeaderName = "Authorization"

// bearerPrefix はAuthorizationヘッダーの任意のスキーム接頭辞。
const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// TokenVerifier はトークンの検証に必要なインターフェース。
// auth.TokenIssuerが実装する。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのトークンを検証するミドルウェアを返す。
// ヘッダーには署名済みトークンをそのまま格納する。"Bearer "接頭辞も受け付ける。
// 検証に成功した場合、トークンに埋め込まれたユーザーIDをリクエストコンテキストに注入する。
// ユーザーの存在確認は行わない。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. ヘッダーからトークンを取得
			token := strings.TrimSpace(r.Header.Get(authHeaderName))
			token = strings.TrimSpace(strings.TrimPrefix(token, bearerPrefix))
			if token == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. 署名を検証
			userID, err := verifier.Verify(token)
			if err != nil {
				slog.Debug("token verification failed",
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewTokenInvalidError())
				return
			}

			// 3. 認証済みユーザーIDをコンテキストに注入
			setLoggedUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
