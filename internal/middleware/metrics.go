package middleware

import (
	"net/http"
	"time"

	"github.com/hitoshi/taskman/internal/metrics"
)

// unmatchedRoute はルートにマッチしなかったリクエストのラベル値。
// パスをそのままラベルにするとカーディナリティが発散するため、まとめて記録する。
const unmatchedRoute = "unmatched"

// NewMetricsMiddleware はリクエスト数とレイテンシを記録するミドルウェアを返す。
// routeラベルにはchiのルートパターン（例: /api/tasks/{id}）を使用する。
func NewMetricsMiddleware(recorder metrics.Recorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := wrapStatusRecorder(w)

			next.ServeHTTP(rec, r)

			route := routePattern(r)
			if route == "" {
				route = unmatchedRoute
			}
			recorder.RecordHTTPRequest(r.Method, route, rec.statusCode, time.Since(start))
		})
	}
}
