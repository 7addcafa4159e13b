package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "strata", Name: "rate_limit_allowed_total", Help: "Number of requests allowed through the quota gate, by operation."},
		[]string{"operation"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "strata", Name: "rate_limit_rejected_total", Help: "Number of requests rejected by the quota gate, by operation."},
		[]string{"operation"},
	)
	DocumentsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "strata", Name: "documents_written_total", Help: "Number of documents persisted, by resource and operation."},
		[]string{"resource", "operation"},
	)
	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "strata", Name: "validation_failures_total", Help: "Number of documents refused by validation, by resource."},
		[]string{"resource"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(DocumentsWritten)
	reg.MustRegister(ValidationFailures)
}
