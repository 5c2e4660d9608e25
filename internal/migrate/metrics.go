package migrate

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fieldsMigratedTotal *prometheus.CounterVec
	fieldsSkippedTotal  *prometheus.CounterVec
	filesChangedTotal   prometheus.Counter
	filesFailedTotal    prometheus.Counter

	metricsOnce       sync.Once
	metricsRegistered bool
)

// InitMetrics registers the migration Prometheus metrics. Until it is
// called, recording is a no-op, so the engine carries no metrics overhead
// in plain CLI runs. Labels carry env var provider and mode only, never
// values.
func InitMetrics() {
	metricsOnce.Do(func() {
		fieldsMigratedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clawvault_fields_migrated_total",
				Help: "Total number of credential fields migrated to the secret store",
			},
			[]string{"provider", "mode"},
		)

		fieldsSkippedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clawvault_fields_skipped_total",
				Help: "Total number of credential fields skipped, by reason",
			},
			[]string{"reason"},
		)

		filesChangedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "clawvault_files_changed_total",
				Help: "Total number of auth-store files rewritten",
			},
		)

		filesFailedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "clawvault_files_failed_total",
				Help: "Total number of auth-store files whose migration failed",
			},
		)

		metricsRegistered = true
	})
}

func recordFileReport(report *FileReport) {
	if !metricsRegistered {
		return
	}

	mode := "apply"
	if report.DryRun {
		mode = "dry-run"
	}

	for _, change := range report.Changes {
		fieldsMigratedTotal.WithLabelValues(change.Provider, mode).Inc()
	}
	for _, skip := range report.Skipped {
		fieldsSkippedTotal.WithLabelValues(string(skip.Reason)).Inc()
	}
	if report.Error != "" {
		filesFailedTotal.Inc()
		return
	}
	if report.Changed && !report.DryRun {
		filesChangedTotal.Inc()
	}
}
