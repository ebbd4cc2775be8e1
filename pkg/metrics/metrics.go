// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ExtractionsTotal counts parser strategy runs by outcome
	// ("hit", "miss", "error").
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_extractions_total",
		Help: "Extraction strategy runs by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	// ExtractionDuration observes the full cascade latency per document.
	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_extraction_duration_seconds",
		Help:    "End-to-end extraction cascade duration.",
		Buckets: prometheus.DefBuckets,
	})

	// EntriesExtracted observes how many entries a successful cascade yields.
	EntriesExtracted = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_entries_per_document",
		Help:    "Entries extracted per successfully parsed document.",
		Buckets: prometheus.LinearBuckets(0, 5, 12),
	})
)

// Handler serves the default registry for the metrics listener.
func Handler() http.Handler {
	return promhttp.Handler()
}
