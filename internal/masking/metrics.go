package masking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	stateEnabled  = "enabled"
	stateDisabled = "disabled"
)

// Metrics for the masking engine
var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "json_masker",
		Subsystem: "masking",
		Name:      "calls_total",
		Help:      "Total number of MaskFields calls by masker state",
	}, []string{"state"})

	valuesMasked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "json_masker",
		Subsystem: "masking",
		Name:      "values_masked_total",
		Help:      "Total number of field values replaced",
	})

	fieldsConfigured = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "json_masker",
		Subsystem: "masking",
		Name:      "fields_configured",
		Help:      "Number of field names in the compiled matcher",
	})

	maskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "json_masker",
		Subsystem: "masking",
		Name:      "duration_seconds",
		Help:      "Time spent scanning and rewriting one payload",
		Buckets:   prometheus.ExponentialBucketsRange(0.000001, 0.1, 12), // 1µs to 100ms
	})
)
