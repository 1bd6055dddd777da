package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestServeRegistersMetrics(t *testing.T) {
	srv := Serve(":0", nil)
	defer srv.Close()

	OrdersTotal.WithLabelValues("AAPL", "BUY").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "orders_total" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("orders_total metric not found")
	}
}

func TestStatusRoute(t *testing.T) {
	srv := Serve(":0", func() any {
		return map[string]any{"open_positions": 2}
	})
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode status body: %v", err)
	}
	if body["open_positions"] != float64(2) {
		t.Fatalf("unexpected status payload: %+v", body)
	}
}
