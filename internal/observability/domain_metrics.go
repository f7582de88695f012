package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	translationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pitwall_translations_total",
			Help: "Total number of natural-language to SQL translation attempts.",
		},
	)
	translationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pitwall_translation_failures_total",
			Help: "Total number of failed translation attempts.",
		},
	)
	validationRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitwall_validation_rejections_total",
			Help: "Generated SQL statements rejected by the validator, by rule.",
		},
		[]string{"rule"},
	)
	queryDurationMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pitwall_query_duration_ms",
			Help:    "Database execution latency for validated queries in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2000, 5000, 10000},
		},
	)
	queryFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pitwall_query_failures_total",
			Help: "Total number of validated queries the database rejected.",
		},
	)
	rateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pitwall_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		translationsTotal,
		translationFailuresTotal,
		validationRejectionsTotal,
		queryDurationMs,
		queryFailuresTotal,
		rateLimitedTotal,
	)
}

func ObserveTranslation(failed bool) {
	translationsTotal.Inc()
	if failed {
		translationFailuresTotal.Inc()
	}
}

func ObserveValidationRejection(rules []string) {
	for _, rule := range rules {
		validationRejectionsTotal.WithLabelValues(rule).Inc()
	}
}

func ObserveQueryExecution(elapsed time.Duration, failed bool) {
	queryDurationMs.Observe(float64(elapsed.Milliseconds()))
	if failed {
		queryFailuresTotal.Inc()
	}
}

func IncrementRateLimited() {
	rateLimitedTotal.Inc()
}
