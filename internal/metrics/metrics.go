package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_cycles_total",
			Help: "Trading cycles by outcome (traded, held, failed).",
		},
		[]string{"outcome"},
	)

	VerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_verdicts_total",
			Help: "Strategy verdicts by action.",
		},
		[]string{"action"},
	)

	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Orders submitted by side and result status.",
		},
		[]string{"side", "status"},
	)

	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_cycle_duration_seconds",
			Help:    "Wall time of one trading cycle.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	ExchangeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_exchange_requests_total",
			Help: "Exchange API calls by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	LastOrderQty = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_last_order_qty",
			Help: "Quantity of the most recently submitted order.",
		},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, VerdictsTotal, OrdersTotal, CycleDuration, ExchangeRequestsTotal, LastOrderQty)
}

// Outcome maps an error to the exchange request outcome label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Server exposes the default registry on /metrics.
type Server struct {
	srv *http.Server
}

func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &Server{srv: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}}
}

// Start serves in the background. errc receives the listener error, if any.
func (s *Server) Start() <-chan error {
	errc := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	return errc
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler is exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
