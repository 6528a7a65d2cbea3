package asset

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for lifecycle operations.
// A nil *Metrics records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	orphans    *prometheus.CounterVec
}

// NewMetrics creates the lifecycle collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asset_operations_total",
				Help: "Total number of asset lifecycle operations by outcome.",
			},
			[]string{"operation", "bucket", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "asset_operation_duration_seconds",
				Help:    "Duration of asset lifecycle operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "bucket"},
		),
		orphans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asset_orphaned_objects_total",
				Help: "Objects left in the store without a referencing record.",
			},
			[]string{"bucket", "reason"},
		),
	}

	for _, c := range []prometheus.Collector{m.operations, m.duration, m.orphans} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(op string, bucket Bucket, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, string(bucket), outcome).Inc()
	m.duration.WithLabelValues(op, string(bucket)).Observe(elapsed.Seconds())
}

func (m *Metrics) orphaned(bucket Bucket, reason string) {
	if m == nil {
		return
	}
	m.orphans.WithLabelValues(string(bucket), reason).Inc()
}
