package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_PrivateRegistry(t *testing.T) {
	// Two instances must not collide when each uses its own registry
	m1 := NewMetrics(nil)
	m2 := NewMetrics(nil)

	if m1 == nil || m2 == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestMetrics_ObserveSearch(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveSearch("users", 3, 5*time.Millisecond, nil)
	m.ObserveSearch("users", 0, time.Millisecond, errors.New("boom"))
	m.ObserveSearch("rooms", 5, time.Millisecond, nil)

	if got := testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues("users", "ok")); got != 1 {
		t.Errorf("users/ok counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues("users", "error")); got != 1 {
		t.Errorf("users/error counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues("rooms", "ok")); got != 1 {
		t.Errorf("rooms/ok counter = %v, want 1", got)
	}
}

func TestMetrics_HTTPMiddleware(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	handler := m.HTTPMiddleware("/api/v1/spotlight", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/spotlight?text=x", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/spotlight", "429")); got != 1 {
		t.Errorf("request counter = %v, want 1", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RateLimitRejectedTotal.WithLabelValues("user").Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "spotlight_ratelimit_rejected_total") {
		t.Error("metrics output missing spotlight_ratelimit_rejected_total")
	}
}
