package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QuotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "quotes_total", Help: "Live quotes ingested"},
		[]string{"symbol"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders submitted"},
		[]string{"symbol", "side"},
	)
	OrderFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "order_failures_total", Help: "Orders rejected by the gateway"},
		[]string{"symbol", "side"},
	)
	ExitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "exits_total", Help: "Positions closed by protective exits"},
		[]string{"symbol", "reason"},
	)
	BacktestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtests_total", Help: "Approval backtests evaluated"},
		[]string{"strategy", "verdict"},
	)
	TicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "engine_ticks_total", Help: "Open-market control loop iterations"},
	)
	ApprovedPairs = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "approved_pairs", Help: "Symbol/strategy pairs cleared for entry"},
	)
	OpenPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "open_positions", Help: "Currently held positions"},
	)
	BudgetRemaining = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "budget_remaining_usd", Help: "Unspent capital for the trading day"},
	)
)

func init() {
	prometheus.MustRegister(
		QuotesTotal, OrdersTotal, OrderFailuresTotal, ExitsTotal,
		BacktestsTotal, TicksTotal, ApprovedPairs, OpenPositions, BudgetRemaining,
	)
}

// StatusFunc supplies the payload served on /status.
type StatusFunc func() any

// Serve exposes /metrics and, when status is non-nil, a JSON /status route.
func Serve(addr string, status StatusFunc) *http.Server {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	if status != nil {
		router.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(status())
		}).Methods(http.MethodGet)
	}
	srv := &http.Server{Addr: addr, Handler: router}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
