// Package metrics provides Prometheus metrics for refgraph builds
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of one build run. Each run owns its
// registry so repeated builds in one process (watch mode) start from zero.
type Metrics struct {
	Registry *prometheus.Registry

	// Stage metrics
	StagesTotal   *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec

	// Reference metrics
	RefsResolvedTotal   *prometheus.CounterVec
	MissingLineageTotal prometheus.Counter

	// Corpus metrics
	DocumentsTotal  prometheus.Gauge
	ReferencesTotal prometheus.Gauge
	MsiLineages     prometheus.Gauge
	MsiLoaded       prometheus.Gauge

	// Run metrics
	BuildDuration      prometheus.Gauge
	LastBuildTimestamp prometheus.Gauge
}

// NewMetrics creates and registers all metrics on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{Registry: reg}

	// Stage metrics
	m.StagesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refgraph_stages_total",
			Help: "Total number of pipeline stages executed",
		},
		[]string{"stage", "status"},
	)

	m.StageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "refgraph_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)

	// Reference metrics
	m.RefsResolvedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refgraph_refs_resolved_total",
			Help: "Total number of references resolved, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	m.MissingLineageTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "refgraph_missing_lineage_total",
			Help: "Unique undated references with no derivable lineage key",
		},
	)

	// Corpus metrics
	m.DocumentsTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "refgraph_documents_total",
			Help: "Number of documents in the registry",
		},
	)

	m.ReferencesTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "refgraph_references_total",
			Help: "Number of declared references across the registry",
		},
	)

	m.MsiLineages = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "refgraph_msi_lineages",
			Help: "Number of lineages in the loaded master suite index",
		},
	)

	m.MsiLoaded = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "refgraph_msi_loaded",
			Help: "1 when the master suite index loaded, 0 when the build ran without it",
		},
	)

	// Run metrics
	m.BuildDuration = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "refgraph_build_duration_seconds",
			Help: "Wall time of the last build in seconds",
		},
	)

	m.LastBuildTimestamp = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "refgraph_last_build_timestamp_seconds",
			Help: "Unix time the last build finished",
		},
	)

	return m
}

// RecordStage records one pipeline stage with its status
func (m *Metrics) RecordStage(stage string, status string, duration time.Duration) {
	m.StagesTotal.WithLabelValues(stage, status).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordRef records one resolved reference
func (m *Metrics) RecordRef(kind string, outcome string, n int) {
	m.RefsResolvedTotal.WithLabelValues(kind, outcome).Add(float64(n))
}

// RecordMissingLineage records newly seen missing-lineage references
func (m *Metrics) RecordMissingLineage(n int) {
	m.MissingLineageTotal.Add(float64(n))
}

// UpdateCorpus updates corpus size gauges
func (m *Metrics) UpdateCorpus(docs int, refs int) {
	m.DocumentsTotal.Set(float64(docs))
	m.ReferencesTotal.Set(float64(refs))
}

// UpdateMsi updates master suite index gauges
func (m *Metrics) UpdateMsi(loaded bool, lineages int) {
	if loaded {
		m.MsiLoaded.Set(1)
	} else {
		m.MsiLoaded.Set(0)
	}
	m.MsiLineages.Set(float64(lineages))
}

// RecordBuild records a finished build
func (m *Metrics) RecordBuild(duration time.Duration, finished time.Time) {
	m.BuildDuration.Set(duration.Seconds())
	m.LastBuildTimestamp.Set(float64(finished.Unix()))
}

// WriteTextfile writes all metrics in the text exposition format, for
// node_exporter's textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
