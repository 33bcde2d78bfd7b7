// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 認証試行の種別と結果
const (
	AuthSignup = "signup"
	AuthLogin  = "login"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// タスク操作の種別
const (
	TaskOpList   = "list"
	TaskOpCreate = "create"
	TaskOpUpdate = "update"
	TaskOpDelete = "delete"
)

// Recorder はメトリクス記録のインターフェース。
// ミドルウェアやサービス層から利用する。
type Recorder interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordAuthAttempt(kind, outcome string)
	RecordTaskOperation(op, outcome string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	authAttempts *prometheus.CounterVec
	taskOps      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_http_requests_total",
			Help: "ルートとステータスコード別のHTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskman_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_auth_attempts_total",
			Help: "サインアップ・ログイン試行数",
		}, []string{"kind", "outcome"}),
		taskOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_task_operations_total",
			Help: "タスク操作数",
		}, []string{"op", "outcome"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.authAttempts,
		c.taskOps,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの件数とレイテンシを記録する。
// routeにはURLではなくルートパターン（/api/tasks/{id}）を渡す。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuthAttempt は認証試行を記録する。
func (c *Collector) RecordAuthAttempt(kind, outcome string) {
	c.authAttempts.WithLabelValues(kind, outcome).Inc()
}

// RecordTaskOperation はタスク操作を記録する。
func (c *Collector) RecordTaskOperation(op, outcome string) {
	c.taskOps.WithLabelValues(op, outcome).Inc()
}

// NopRecorder は何も記録しないRecorder。テストやメトリクス無効時に使用する。
type NopRecorder struct{}

func (NopRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}
func (NopRecorder) RecordAuthAttempt(string, string)                     {}
func (NopRecorder) RecordTaskOperation(string, string)                   {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = NopRecorder{}
)
