// Package metrics exports pipeline counters as a Prometheus textfile so a
// node_exporter textfile collector can pick up the results of batch runs.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sbomstat/internal/pipeline"
)

// Recorder collects counters for one run. It implements pipeline.Observer.
type Recorder struct {
	registry *prometheus.Registry
	started  time.Time

	candidates *prometheus.GaugeVec
	items      *prometheus.CounterVec
	messages   *prometheus.CounterVec
	duration   *prometheus.GaugeVec
	lastRun    *prometheus.GaugeVec
	reportKeys prometheus.Gauge
	matches    *prometheus.GaugeVec
}

// NewRecorder returns a recorder labelled with the report kind.
func NewRecorder(kind string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"report": kind}

	return &Recorder{
		registry: reg,
		started:  time.Now(),
		candidates: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "sbomstat_stage_candidates",
			Help:        "Items announced when a stage started",
			ConstLabels: constLabels,
		}, []string{"stage"}),
		items: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "sbomstat_stage_items_total",
			Help:        "Items finished per stage and outcome",
			ConstLabels: constLabels,
		}, []string{"stage", "outcome"}),
		messages: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "sbomstat_stage_messages_total",
			Help:        "Progress messages emitted per stage",
			ConstLabels: constLabels,
		}, []string{"stage"}),
		duration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "sbomstat_stage_duration_seconds",
			Help:        "Wall time from recorder creation to stage completion",
			ConstLabels: constLabels,
		}, []string{"stage"}),
		lastRun: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "sbomstat_last_run_timestamp_seconds",
			Help:        "Unix time of the last completed stage",
			ConstLabels: constLabels,
		}, []string{"stage"}),
		reportKeys: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "sbomstat_report_unique_keys",
			Help:        "Distinct keys in the final report",
			ConstLabels: constLabels,
		}),
		matches: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "sbomstat_resolve_identifiers",
			Help:        "Resolver outcome per advisory identifier",
			ConstLabels: constLabels,
		}, []string{"result"}),
	}
}

// StageStarted implements pipeline.Observer.
func (r *Recorder) StageStarted(stage pipeline.Stage, total int) {
	r.candidates.WithLabelValues(string(stage)).Set(float64(total))
}

// ItemDone implements pipeline.Observer.
func (r *Recorder) ItemDone(stage pipeline.Stage, outcome pipeline.Outcome) {
	r.items.WithLabelValues(string(stage), string(outcome)).Inc()
}

// StageMessage implements pipeline.Observer.
func (r *Recorder) StageMessage(stage pipeline.Stage, _ string) {
	r.messages.WithLabelValues(string(stage)).Inc()
}

// StageFinished implements pipeline.Observer.
func (r *Recorder) StageFinished(stage pipeline.Stage) {
	now := time.Now()
	r.duration.WithLabelValues(string(stage)).Set(now.Sub(r.started).Seconds())
	r.lastRun.WithLabelValues(string(stage)).Set(float64(now.Unix()))
}

// SetUniqueKeys records the size of the final report.
func (r *Recorder) SetUniqueKeys(n int) {
	r.reportKeys.Set(float64(n))
}

// SetResolve records resolver totals.
func (r *Recorder) SetResolve(hits, misses, skipped int) {
	r.matches.WithLabelValues("hit").Set(float64(hits))
	r.matches.WithLabelValues("miss").Set(float64(misses))
	r.matches.WithLabelValues("skipped").Set(float64(skipped))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile atomically writes the collected metrics to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
