package observability

import (
	"context"

	"github.com/de-tools/edw-harness/pkg/models/domain"
	"github.com/prometheus/client_golang/prometheus"
)

var lifecycleLabels = []string{"cloud", "service_type", "operation", "outcome"}

// LifecycleMetrics counts and times lifecycle calls. It satisfies edw.Recorder.
type LifecycleMetrics struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

func NewLifecycleMetrics(reg prometheus.Registerer) (*LifecycleMetrics, error) {
	m := &LifecycleMetrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edw_lifecycle_operations_total",
				Help: "Total number of warehouse lifecycle operations.",
			},
			lifecycleLabels,
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edw_lifecycle_operation_duration_seconds",
				Help:    "Warehouse lifecycle operation latency.",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			lifecycleLabels,
		),
	}

	for _, c := range []prometheus.Collector{m.operations, m.durations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *LifecycleMetrics) Record(_ context.Context, event domain.LifecycleEvent) error {
	labels := prometheus.Labels{
		"cloud":        string(event.Cloud),
		"service_type": string(event.ServiceType),
		"operation":    string(event.Operation),
		"outcome":      event.Outcome(),
	}
	m.operations.With(labels).Inc()
	m.durations.With(labels).Observe(event.Duration.Seconds())
	return nil
}
