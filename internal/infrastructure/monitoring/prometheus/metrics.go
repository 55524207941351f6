// Package prometheus exposes engine metrics for scraping.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements the engine's MetricsRecorder over a dedicated
// prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	assessmentsTotal   *prometheus.CounterVec
	assessmentDuration *prometheus.HistogramVec
	cacheLookupsTotal  *prometheus.CounterVec
	probesTotal        *prometheus.CounterVec
	stageDuration      *prometheus.HistogramVec
}

// New registers all engine metrics on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		assessmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskd",
			Name:      "assessments_total",
			Help:      "Assessments served, by artifact type, verdict and cache status.",
		}, []string{"artifact_type", "verdict", "cached"}),
		assessmentDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "riskd",
			Name:      "assessment_duration_seconds",
			Help:      "End-to-end assessment latency.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"artifact_type"}),
		cacheLookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskd",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups, by outcome.",
		}, []string{"outcome"}),
		probesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskd",
			Name:      "probes_total",
			Help:      "Dynamic probe runs, by outcome.",
		}, []string{"outcome"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "riskd",
			Name:      "stage_duration_seconds",
			Help:      "Per-stage computation latency.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 30},
		}, []string{"stage"}),
	}
}

func (m *Metrics) RecordAssessment(artifactType, verdict string, cached bool, elapsed time.Duration) {
	m.assessmentsTotal.WithLabelValues(artifactType, verdict, strconv.FormatBool(cached)).Inc()
	m.assessmentDuration.WithLabelValues(artifactType).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordProbe(outcome string) {
	m.probesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordStageDuration(stage string, elapsed time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
