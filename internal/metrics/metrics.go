// Package metrics exposes Prometheus counters for mints and contract reads.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

// Metrics holds the collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	MintsTotal   *prometheus.CounterVec
	MintDuration prometheus.Histogram
	ReadsTotal   *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.MintsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "w3mint_mints_total",
			Help: "Mint attempts by result",
		},
		[]string{"result"},
	)

	m.MintDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "w3mint_mint_duration_seconds",
			Help:    "Time from mint click to finality",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 180},
		},
	)

	m.ReadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "w3mint_reads_total",
			Help: "Token view initialisations by result",
		},
		[]string{"result"},
	)

	m.registry.MustRegister(m.MintsTotal, m.MintDuration, m.ReadsTotal)
	return m
}

// ObserveMint records one finished mint attempt.
func (m *Metrics) ObserveMint(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.MintsTotal.WithLabelValues(result).Inc()
	if result != ResultSkipped {
		m.MintDuration.Observe(d.Seconds())
	}
}

// ObserveRead records one token view initialisation.
func (m *Metrics) ObserveRead(result string) {
	if m == nil {
		return
	}
	m.ReadsTotal.WithLabelValues(result).Inc()
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
