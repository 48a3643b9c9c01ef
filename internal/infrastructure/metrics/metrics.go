package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the connector's prometheus metrics. One instance is shared
// by all services; a nil *Collector is safe to use and records nothing, which
// keeps tests free of registry plumbing.
type Collector struct {
	dispatchTotal *prometheus.CounterVec
	skippedTotal  *prometheus.CounterVec
}

// NewCollector registers the connector metrics on the given registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		dispatchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "connector_store_dispatch_total",
			Help: "Per-store dispatch outcomes, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		skippedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "connector_fanout_skipped_total",
			Help: "Fan-out calls that found no configured stores, by operation.",
		}, []string{"operation"}),
	}
}

// Dispatch records one per-store dispatch outcome.
func (c *Collector) Dispatch(operation string, success bool) {
	if c == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.dispatchTotal.WithLabelValues(operation, outcome).Inc()
}

// Skipped records a fan-out call that resolved no stores.
func (c *Collector) Skipped(operation string) {
	if c == nil {
		return
	}
	c.skippedTotal.WithLabelValues(operation).Inc()
}
