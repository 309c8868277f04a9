// Package metrics exposes the counters of a keyword run in the Prometheus
// format. Runs are batch jobs, so the registry is written to a textfile for
// the node exporter instead of being scraped.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"movie_keywords/internal/filter"
	"movie_keywords/internal/keywords"
)

const namespace = "moviekw"

// Metrics holds the run metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	MoviesByStatus  *prometheus.CounterVec
	MalformedMovies prometheus.Counter
	UniqueKeywords  *prometheus.GaugeVec
	LastRunSuccess  prometheus.Gauge
}

// New registers the run metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		MoviesByStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movies_total",
			Help:      "Movies processed, by eligibility status.",
		}, []string{"status"}),
		MalformedMovies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_movies_total",
			Help:      "Eligible movies whose names could not be collected.",
		}),
		UniqueKeywords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unique_keywords",
			Help:      "Distinct values per keyword set.",
		}, []string{"set"}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
	m.registry.MustRegister(m.MoviesByStatus, m.MalformedMovies, m.UniqueKeywords, m.LastRunSuccess)

	for _, s := range filter.Statuses() {
		m.MoviesByStatus.WithLabelValues(s.String())
	}
	return m
}

// ObserveStatus counts one movie under its status.
func (m *Metrics) ObserveStatus(status filter.Status) {
	m.MoviesByStatus.WithLabelValues(status.String()).Inc()
}

// ObserveMalformed counts one eligible movie that failed name collection.
func (m *Metrics) ObserveMalformed() {
	m.MalformedMovies.Inc()
}

// RecordKeywords sets the unique keyword gauges from the accumulator.
func (m *Metrics) RecordKeywords(acc *keywords.Accumulator) {
	for _, kind := range keywords.Kinds() {
		m.UniqueKeywords.WithLabelValues(kind.String()).Set(float64(acc.Len(kind)))
	}
}

// MarkSuccess stamps the last successful run with the current time.
func (m *Metrics) MarkSuccess() {
	m.LastRunSuccess.SetToCurrentTime()
}

// Registry returns the registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
