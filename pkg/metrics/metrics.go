package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GateMetrics counts route-protection decisions by outcome.
type GateMetrics struct {
	decisions *prometheus.CounterVec
}

// NewGateMetrics registers the gate metrics on the provided registerer.
func NewGateMetrics(reg prometheus.Registerer) *GateMetrics {
	if reg == nil {
		return &GateMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_decisions_total",
		Help: "Access gate decisions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(decisions)
	return &GateMetrics{decisions: decisions}
}

// IncDecision increments the counter for the named outcome.
func (g *GateMetrics) IncDecision(outcome string) {
	if g == nil || g.decisions == nil {
		return
	}
	g.decisions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// CartMetrics counts cart store mutations by operation and result.
type CartMetrics struct {
	mutations *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart store mutations by operation and outcome.",
	}, []string{"op", "outcome"})
	reg.MustRegister(mutations)
	return &CartMetrics{mutations: mutations}
}

// IncMutation increments the counter for the named operation/outcome pair.
func (c *CartMetrics) IncMutation(op, outcome string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
