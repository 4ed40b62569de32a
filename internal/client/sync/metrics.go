package sync

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the prometheus collectors of the sync engine.
// A nil *Metrics disables collection.
type Metrics struct {
	pending     prometheus.Gauge
	dataSaved   prometheus.Counter
	passes      *prometheus.CounterVec
	operations  *prometheus.CounterVec
	escalations prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// reg may be nil, in which case the collectors are not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "taskkeeper",
			Subsystem: "sync",
			Name:      "pending_operations",
			Help:      "Number of operations waiting in the sync queue.",
		}),
		dataSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taskkeeper",
			Subsystem: "sync",
			Name:      "delta_bytes_saved_total",
			Help:      "Bytes saved by sending deltas instead of full entities.",
		}),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskkeeper",
			Subsystem: "sync",
			Name:      "passes_total",
			Help:      "Sync passes by result.",
		}, []string{"result"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskkeeper",
			Subsystem: "sync",
			Name:      "operations_total",
			Help:      "Dispatched operations by type and result.",
		}, []string{"type", "result"}),
		escalations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taskkeeper",
			Subsystem: "sync",
			Name:      "escalations_total",
			Help:      "Operations escalated to conflict resolution after exhausting retries.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.pending, m.dataSaved, m.passes, m.operations, m.escalations)
	}
	return m
}

func (m *Metrics) setPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}

func (m *Metrics) addSaved(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.dataSaved.Add(float64(n))
}

func (m *Metrics) pass(result string) {
	if m == nil {
		return
	}
	m.passes.WithLabelValues(result).Inc()
}

func (m *Metrics) operation(opType, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(opType, result).Inc()
}

func (m *Metrics) escalated() {
	if m == nil {
		return
	}
	m.escalations.Inc()
}
