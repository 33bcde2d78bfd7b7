package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/metrics"
)

type recordedRequest struct {
	method     string
	route      string
	statusCode int
}

type mockRecorder struct {
	metrics.NopRecorder
	mu       sync.Mutex
	requests []recordedRequest
}

func (m *mockRecorder) RecordHTTPRequest(method, route string, statusCode int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{method, route, statusCode})
}

func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	rec := &mockRecorder{}

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(rec))
	r.Delete("/api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/tasks/123", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if len(rec.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(rec.requests))
	}

	want := []recordedRequest{
		{http.MethodDelete, "/api/tasks/{id}", http.StatusForbidden},
		{http.MethodGet, "unmatched", http.StatusNotFound},
	}
	for i := range want {
		if rec.requests[i] != want[i] {
			t.Errorf("requests[%d] = %+v, want %+v", i, rec.requests[i], want[i])
		}
	}
}
