package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProtocolMetrics provides observability for access-control protocol
// operations.
//
// This interface is optional - if not provided, components use a no-op
// implementation with zero overhead.
type ProtocolMetrics interface {
	// RecordOperation records a completed protocol operation with its name,
	// duration, and outcome.
	//
	// Parameters:
	//   - operation: operation name (e.g., "create_document", "share_document")
	//   - duration: Time taken to process the operation
	//   - err: Error if the operation failed, nil if successful
	RecordOperation(operation string, duration time.Duration, err error)

	// RecordRefresh records a client sync refresh attempt and its outcome.
	//
	// Parameters:
	//   - outcome: "completed", "skipped", "dropped", or "failed"
	RecordRefresh(outcome string)
}

// protocolMetrics is the Prometheus implementation of ProtocolMetrics.
type protocolMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	refreshesTotal    *prometheus.CounterVec
}

// NewProtocolMetrics creates a new Prometheus-backed ProtocolMetrics
// instance.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry
// not called).
func NewProtocolMetrics() ProtocolMetrics {
	if !IsEnabled() {
		return NoopProtocolMetrics{}
	}

	reg := GetRegistry()

	return &protocolMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docvault_protocol_operations_total",
				Help: "Total number of protocol operations by name and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "docvault_protocol_operation_duration_seconds",
				Help: "Duration of protocol operations in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.005, // 5ms
					0.01,  // 10ms
					0.025, // 25ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.25,  // 250ms
					0.5,   // 500ms
					1.0,   // 1s
					2.5,   // 2.5s
				},
			},
			[]string{"operation"},
		),
		refreshesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docvault_sync_refreshes_total",
				Help: "Total number of client sync refresh attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *protocolMetrics) RecordOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *protocolMetrics) RecordRefresh(outcome string) {
	m.refreshesTotal.WithLabelValues(outcome).Inc()
}

// NoopProtocolMetrics is a no-op implementation of ProtocolMetrics with zero
// overhead.
type NoopProtocolMetrics struct{}

func (NoopProtocolMetrics) RecordOperation(operation string, duration time.Duration, err error) {}
func (NoopProtocolMetrics) RecordRefresh(outcome string)                                        {}
