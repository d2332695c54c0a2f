package cache

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes cache behavior to the /metrics endpoint. A nil registerer
// yields working but unregistered collectors, which tests rely on.
type Metrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	errors        *prometheus.CounterVec
	invalidations prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fairprice",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache hits per operation.",
		}, []string{"op"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fairprice",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache misses per operation.",
		}, []string{"op"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fairprice",
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Backend failures by phase (get, snapshot, set, invalidate).",
		}, []string{"phase"}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fairprice",
			Subsystem: "cache",
			Name:      "invalidated_tags_total",
			Help:      "Tags invalidated by write paths.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.misses, m.errors, m.invalidations)
	}
	return m
}
