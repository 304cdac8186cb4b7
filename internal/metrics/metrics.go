// Package metrics exposes simulation and dataset metrics in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scholarnet/kgraph/internal/force"
)

// Metrics holds the collectors for one visualizer process. Each instance has
// its own registry so tests can create as many as they like.
type Metrics struct {
	reg *prometheus.Registry

	Ticks        prometheus.Counter
	TickDuration prometheus.Histogram
	Speed        prometheus.Gauge
	Nodes        prometheus.Gauge
	Links        prometheus.Gauge
	LinkStrength prometheus.Gauge
	Running      prometheus.Gauge
	Reloads      *prometheus.CounterVec
}

// New creates and registers the collectors, plus the Go runtime collector.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kg_ticks_total",
			Help: "Total number of simulation ticks applied",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kg_tick_duration_seconds",
			Help:    "Time spent computing one simulation tick",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		Speed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kg_layout_speed",
			Help: "Sum of node speeds after the last tick; approaches zero as the layout settles",
		}),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kg_nodes",
			Help: "Number of nodes in the simulated graph",
		}),
		Links: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kg_links",
			Help: "Number of links in the simulated graph, dangling ones included",
		}),
		LinkStrength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kg_link_strength",
			Help: "Current global link strength factor",
		}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kg_running",
			Help: "1 while the simulation timer is active, 0 while paused",
		}),
		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kg_dataset_reloads_total",
				Help: "Dataset reloads triggered by file changes",
			},
			[]string{"result"},
		),
	}

	m.reg.MustRegister(
		m.Ticks,
		m.TickDuration,
		m.Speed,
		m.Nodes,
		m.Links,
		m.LinkStrength,
		m.Running,
		m.Reloads,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveTick implements force.Observer.
func (m *Metrics) ObserveTick(s force.TickStats) {
	m.Ticks.Inc()
	m.TickDuration.Observe(s.Duration.Seconds())
	m.Speed.Set(s.Speed)
	m.Nodes.Set(float64(s.Nodes))
	m.Links.Set(float64(s.Links))
}

// SetControls records the current control values.
func (m *Metrics) SetControls(running bool, linkStrength float64) {
	if running {
		m.Running.Set(1)
	} else {
		m.Running.Set(0)
	}
	m.LinkStrength.Set(linkStrength)
}

// ObserveReload counts a dataset reload attempt.
func (m *Metrics) ObserveReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Reloads.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
		return nil
	}
}
