// Package metrics exposes Prometheus collectors for the ETL job.
//
// The job is a one-shot cron process, so there is no scrape endpoint.
// Collectors are registered on the default registry and, when a Pushgateway
// URL is configured, pushed once at the end of the run.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	sourceFetchesTotal *prometheus.CounterVec
	sourceRecords      *prometheus.GaugeVec
	mergedRecords      prometheus.Gauge
	artifactBytes      *prometheus.GaugeVec
	runsTotal          *prometheus.CounterVec
	runDurationSeconds prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		sourceFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "covid_etl_source_fetches_total",
				Help: "Total upstream fetch attempts, labeled by source and outcome.",
			},
			[]string{"source", "status"},
		)

		sourceRecords = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "covid_etl_source_records",
				Help: "Country records obtained from each source in the latest run.",
			},
			[]string{"source"},
		)

		mergedRecords = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "covid_etl_merged_records",
				Help: "Country records in the merged data set of the latest run.",
			},
		)

		artifactBytes = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "covid_etl_artifact_bytes",
				Help: "Size of the persisted GeoJSON artifact, labeled by locale.",
			},
			[]string{"locale"},
		)

		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "covid_etl_runs_total",
				Help: "Total ETL runs, labeled by outcome (ok, degraded, failed).",
			},
			[]string{"status"},
		)

		runDurationSeconds = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "covid_etl_run_duration_seconds",
				Help: "Wall-clock duration of the latest run.",
			},
		)
	})
}

// ObserveSourceFetch records one upstream fetch attempt.
func ObserveSourceFetch(source, status string) {
	if sourceFetchesTotal == nil {
		return
	}
	sourceFetchesTotal.WithLabelValues(source, status).Inc()
}

// SetSourceRecords records the per-source record count for this run.
func SetSourceRecords(source string, n int) {
	if sourceRecords == nil {
		return
	}
	sourceRecords.WithLabelValues(source).Set(float64(n))
}

// SetMergedRecords records the merged data set size.
func SetMergedRecords(n int) {
	if mergedRecords == nil {
		return
	}
	mergedRecords.Set(float64(n))
}

// SetArtifactBytes records the size of a persisted locale artifact.
func SetArtifactBytes(locale string, n int) {
	if artifactBytes == nil {
		return
	}
	artifactBytes.WithLabelValues(locale).Set(float64(n))
}

// ObserveRun records the run outcome and duration.
func ObserveRun(status string, elapsed time.Duration) {
	if runsTotal == nil {
		return
	}
	runsTotal.WithLabelValues(status).Inc()
	runDurationSeconds.Set(elapsed.Seconds())
}

// Push sends the default registry to a Pushgateway. A no-op when url is empty.
func Push(url, job string) error {
	if url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(prometheus.DefaultGatherer).Push()
}
