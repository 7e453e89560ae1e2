package gps

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for one receiver.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	cycles      prometheus.Counter
	parseFaults prometheus.Counter
	fixes       *prometheus.CounterVec
	exhausted   prometheus.Counter
	rejected    prometheus.Counter
	retries     prometheus.Gauge
}

// newMetrics creates and registers receiver metrics. No registerer, no metrics.
func newMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gps_fix",
			Subsystem: "receiver",
			Name:      "cycles_total",
			Help:      "Polling cycles run (one aggregation each)",
		}),
		parseFaults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gps_fix",
			Subsystem: "receiver",
			Name:      "parse_faults_total",
			Help:      "Cycles whose snapshot was discarded after a fault",
		}),
		fixes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gps_fix",
			Subsystem: "receiver",
			Name:      "fixes_total",
			Help:      "Successful fixes by sentence key",
		}, []string{"sentence"}),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gps_fix",
			Subsystem: "receiver",
			Name:      "exhausted_total",
			Help:      "GetPos calls that ran out of retries",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gps_fix",
			Subsystem: "receiver",
			Name:      "rejected_total",
			Help:      "GetPos calls rejected before polling",
		}),
		retries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gps_fix",
			Subsystem: "receiver",
			Name:      "retry_count",
			Help:      "Current consecutive failed cycles",
		}),
	}

	reg.MustRegister(m.cycles, m.parseFaults, m.fixes, m.exhausted, m.rejected, m.retries)
	return m
}

func (m *Metrics) cycle(res bool) {
	if m == nil {
		return
	}
	m.cycles.Inc()
	if !res {
		m.parseFaults.Inc()
	}
}

func (m *Metrics) fix(key string) {
	if m == nil {
		return
	}
	m.fixes.WithLabelValues(key).Inc()
}

func (m *Metrics) exhaust() {
	if m == nil {
		return
	}
	m.exhausted.Inc()
}

func (m *Metrics) reject() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}

func (m *Metrics) setRetries(n int) {
	if m == nil {
		return
	}
	m.retries.Set(float64(n))
}
