package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecole",
		Subsystem: "import",
		Name:      "runs_total",
		Help:      "Content imports by outcome and error code.",
	}, []string{"status", "code"})

	importRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecole",
		Subsystem: "import",
		Name:      "records_total",
		Help:      "Records seen by content imports.",
	}, []string{"stage"})

	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ecole",
		Subsystem: "import",
		Name:      "duration_seconds",
		Help:      "Time from slot acquisition to the end of a content import.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	})

	importsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ecole",
		Subsystem: "import",
		Name:      "active",
		Help:      "Imports currently holding a limiter slot.",
	})
)

func observeImport(entry ImportEntry) {
	importsTotal.WithLabelValues(entry.Status, entry.ErrorCode).Inc()
	importRecords.WithLabelValues("parsed").Add(float64(entry.Parsed))
	importRecords.WithLabelValues("submitted").Add(float64(entry.Submitted))
	importRecords.WithLabelValues("skipped").Add(float64(entry.Skipped))
	importDuration.Observe(entry.Duration.Seconds())
}

func trackActive() func() {
	importsActive.Inc()
	return importsActive.Dec
}
