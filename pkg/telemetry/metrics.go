package telemetry

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the loadout engine. A nil
// *Metrics or one built with metrics disabled records nothing.
type Metrics struct {
	config MetricsConfig

	// Command metrics
	commandsApplied *prometheus.CounterVec
	commandsUndone  *prometheus.CounterVec
	commandsRedone  *prometheus.CounterVec
	equipFailures   *prometheus.CounterVec
	undoDepth       prometheus.Gauge

	// Resolver metrics
	resolverDuration *prometheus.HistogramVec
	resolverAttempts prometheus.Histogram

	// Workbench operation metrics
	operationDuration *prometheus.HistogramVec

	// Error metrics
	errorsByClass *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		commandsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_applied_total",
				Help:      "Total number of commands applied through the undo stack",
			},
			[]string{"kind", "coalesced"},
		),
		commandsUndone: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_undone_total",
				Help:      "Total number of commands undone",
			},
			[]string{"kind"},
		),
		commandsRedone: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_redone_total",
				Help:      "Total number of commands redone",
			},
			[]string{"kind"},
		),
		equipFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "equip_failures_total",
				Help:      "Total number of rejected edits by reason",
			},
			[]string{"reason"},
		),
		undoDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "undo_depth",
				Help:      "Current number of undo steps",
			},
		),

		resolverDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resolver_duration_seconds",
				Help:      "Duration of auto placement searches in seconds",
				Buckets:   buckets,
			},
			[]string{"outcome"},
		),
		resolverAttempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resolver_attempts",
				Help:      "Tentative arrangements evaluated per auto placement search",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),

		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of workbench operations in seconds",
				Buckets:   buckets,
			},
			[]string{"operation", "status"},
		),

		errorsByClass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_class_total",
				Help:      "Total number of errors by error class",
			},
			[]string{"class"},
		),
	}

	registry.MustRegister(
		m.commandsApplied,
		m.commandsUndone,
		m.commandsRedone,
		m.equipFailures,
		m.undoDepth,
		m.resolverDuration,
		m.resolverAttempts,
		m.operationDuration,
		m.errorsByClass,
	)

	return m, nil
}

// Command Metrics

// RecordCommandApplied counts a command pushed onto the undo stack.
func (m *Metrics) RecordCommandApplied(kind string, coalesced bool) {
	if m == nil || m.commandsApplied == nil {
		return
	}
	m.commandsApplied.WithLabelValues(kind, strconv.FormatBool(coalesced)).Inc()
}

// RecordCommandUndone counts an undo.
func (m *Metrics) RecordCommandUndone(kind string) {
	if m == nil || m.commandsUndone == nil {
		return
	}
	m.commandsUndone.WithLabelValues(kind).Inc()
}

// RecordCommandRedone counts a redo.
func (m *Metrics) RecordCommandRedone(kind string) {
	if m == nil || m.commandsRedone == nil {
		return
	}
	m.commandsRedone.WithLabelValues(kind).Inc()
}

// RecordEquipFailure counts a rejected edit by reason.
func (m *Metrics) RecordEquipFailure(reason string) {
	if m == nil || m.equipFailures == nil {
		return
	}
	m.equipFailures.WithLabelValues(reason).Inc()
}

// SetUndoDepth sets the current number of undo steps.
func (m *Metrics) SetUndoDepth(depth float64) {
	if m == nil || m.undoDepth == nil {
		return
	}
	m.undoDepth.Set(depth)
}

// Resolver Metrics

// RecordResolve records an auto placement search.
func (m *Metrics) RecordResolve(outcome string, attempts int, duration time.Duration) {
	if m == nil || m.resolverDuration == nil {
		return
	}
	m.resolverDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.resolverAttempts.Observe(float64(attempts))
}

// Operation Metrics

// RecordOperation records the duration of a workbench operation.
func (m *Metrics) RecordOperation(operation, status string, duration time.Duration) {
	if m == nil || m.operationDuration == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// Error Metrics

// RecordError records an error by class.
func (m *Metrics) RecordError(errorClass string) {
	if m == nil || m.errorsByClass == nil {
		return
	}
	m.errorsByClass.WithLabelValues(errorClass).Inc()
}

// Registry returns the underlying registry, or nil when disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Started returns when the timer was created.
func (t *Timer) Started() time.Time {
	return t.start
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer binds the metrics endpoint and serves it in the
// background. Serve errors after a successful bind are logged to logger.
func (m *Metrics) StartMetricsServer(logger *Logger) error {
	if m == nil || !m.config.Enabled {
		return nil
	}
	if logger == nil {
		logger = NewNopLogger()
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	ln, err := net.Listen("tcp", m.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to bind metrics endpoint: %w", err)
	}
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Metrics server stopped")
		}
	}()

	logger.WithField("address", ln.Addr().String()).Debug("Serving metrics")
	return nil
}
