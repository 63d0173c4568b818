package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder counts pipeline events in a private registry. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	filesIndexed   prometheus.Gauge
	extracted      *prometheus.CounterVec
	resolved       *prometheus.CounterVec
	unresolved     prometheus.Counter
	edges          *prometheus.CounterVec
	readErrors     prometheus.Counter
	parseFallbacks prometheus.Counter
	metricFailures *prometheus.CounterVec
	stageDuration  *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		filesIndexed: f.NewGauge(prometheus.GaugeOpts{
			Name: "filegraph_files_indexed",
			Help: "Files in the node set of the last scan.",
		}),
		extracted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "filegraph_references_extracted_total",
			Help: "Raw references extracted, by channel.",
		}, []string{"channel"}),
		resolved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "filegraph_references_resolved_total",
			Help: "References resolved, by resolver strategy.",
		}, []string{"strategy"}),
		unresolved: f.NewCounter(prometheus.CounterOpts{
			Name: "filegraph_references_unresolved_total",
			Help: "References no strategy could resolve.",
		}),
		edges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "filegraph_edges_total",
			Help: "Edges kept after deduplication, by type.",
		}, []string{"type"}),
		readErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "filegraph_read_errors_total",
			Help: "Files whose content could not be read.",
		}),
		parseFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "filegraph_parse_fallbacks_total",
			Help: "Structured documents that failed to parse.",
		}),
		metricFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "filegraph_metric_failures_total",
			Help: "Analytics metrics that degraded, by metric.",
		}, []string{"metric"}),
		stageDuration: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "filegraph_stage_duration_seconds",
			Help: "Wall time of the last run of each pipeline stage.",
		}, []string{"stage"}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

func (r *Recorder) FilesIndexed(n int) {
	if r != nil {
		r.filesIndexed.Set(float64(n))
	}
}

func (r *Recorder) Extracted(channel string) {
	if r != nil {
		r.extracted.WithLabelValues(channel).Inc()
	}
}

func (r *Recorder) Resolved(strategy string) {
	if r != nil {
		r.resolved.WithLabelValues(strategy).Inc()
	}
}

func (r *Recorder) Unresolved() {
	if r != nil {
		r.unresolved.Inc()
	}
}

func (r *Recorder) Edges(kind string, n int) {
	if r != nil {
		r.edges.WithLabelValues(kind).Add(float64(n))
	}
}

func (r *Recorder) ReadError() {
	if r != nil {
		r.readErrors.Inc()
	}
}

func (r *Recorder) ParseFallback() {
	if r != nil {
		r.parseFallbacks.Inc()
	}
}

func (r *Recorder) MetricFailed(metric string) {
	if r != nil {
		r.metricFailures.WithLabelValues(metric).Inc()
	}
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r != nil {
		r.stageDuration.WithLabelValues(stage).Set(d.Seconds())
	}
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
