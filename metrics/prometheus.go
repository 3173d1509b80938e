// Package metrics provides Prometheus metrics export for the match pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/talentsense/match"
)

// PipelineExporter exports match pipeline metrics in Prometheus format.
// It implements match.Observer.
type PipelineExporter struct {
	registry *prometheus.Registry

	runs             *prometheus.CounterVec
	runDuration      prometheus.Histogram
	stageDuration    *prometheus.HistogramVec
	candidatesScored prometheus.Counter
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}
}

// NewPipelineExporter creates a new Prometheus metrics exporter.
func NewPipelineExporter(cfg Config) *PipelineExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PipelineExporter{registry: registry}

	e.runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "talentsense",
			Subsystem: "match",
			Name:      "runs_total",
			Help:      "Total number of match pipeline runs",
		},
		[]string{"status"},
	)

	e.runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "talentsense",
			Subsystem: "match",
			Name:      "run_duration_seconds",
			Help:      "End-to-end match run duration in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
	)

	e.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "talentsense",
			Subsystem: "match",
			Name:      "stage_duration_seconds",
			Help:      "Per-stage match pipeline duration in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"stage"},
	)

	e.candidatesScored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "talentsense",
			Subsystem: "match",
			Name:      "candidates_scored_total",
			Help:      "Total number of candidates scored across all runs",
		},
	)

	registry.MustRegister(e.runs, e.runDuration, e.stageDuration, e.candidatesScored)

	return e
}

// ObserveStage records the duration of one pipeline stage.
func (e *PipelineExporter) ObserveStage(stage match.Stage, seconds float64) {
	e.stageDuration.WithLabelValues(string(stage)).Observe(seconds)
}

// ObserveRun records the outcome and duration of one pipeline run.
func (e *PipelineExporter) ObserveRun(stage match.Stage, seconds float64, scored int) {
	status := "ok"
	if stage == match.StageError {
		status = "error"
	}
	e.runs.WithLabelValues(status).Inc()
	e.runDuration.Observe(seconds)
	e.candidatesScored.Add(float64(scored))
}

// Handler returns an HTTP handler serving the registry in Prometheus format.
func (e *PipelineExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (e *PipelineExporter) Registry() *prometheus.Registry {
	return e.registry
}
