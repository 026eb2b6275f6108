package v1

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/duynhne/profile-service/internal/core/domain"
)

const (
	opCreate = "create"
	opGet    = "get"
	opGetAll = "get_all"
	opUpdate = "update"
	opDelete = "delete"
)

const (
	statusSuccess  = "success"
	statusNotFound = "not_found"
	statusError    = "error"
)

var (
	// operationsTotal counts aggregate operations by outcome.
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_operations_total",
			Help: "Total number of profile operations by outcome",
		},
		[]string{"operation", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "profile_operation_duration_seconds",
			Help:    "Profile operation duration in seconds, including the transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)
)

// observe is deferred by each operation with a pointer to its named error result.
func observe(operation string, start time.Time, errp *error) {
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	operationsTotal.WithLabelValues(operation, outcome(*errp)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errors.Is(err, domain.ErrProfileNotFound):
		return statusNotFound
	default:
		return statusError
	}
}
