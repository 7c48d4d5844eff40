package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kroma-network/zkvm-common/internal/metrics"
)

func TestMetrics_RecordsRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics)
	r.HandleFunc("/things/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/things/abc123", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	got := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("/things/{id}", "GET", "200"))
	if got != 1 {
		t.Errorf("api_requests_total = %v, want 1", got)
	}
}

func TestMetrics_RecordsErrorStatus(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics)
	r.HandleFunc("/broken", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/broken", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	got := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("/broken", "GET", "500"))
	if got != 1 {
		t.Errorf("api_requests_total = %v, want 1", got)
	}
}
