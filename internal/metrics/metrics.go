package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_attempts_total",
			Help: "Total submit/normalize/validate attempts, by task, prompt variant and outcome",
		},
		[]string{"task", "variant", "outcome"},
	)

	ExtractionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_requests_total",
			Help: "Total pipeline runs by task and final status",
		},
		[]string{"task", "status"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Duration of outbound document-submission calls in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"task", "variant"},
	)

	ArtifactsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifacts_rendered_total",
			Help: "Total workbook artifacts written to disk",
		},
		[]string{"task"},
	)
)
