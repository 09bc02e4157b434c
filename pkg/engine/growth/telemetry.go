package growth

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeCommitted = "committed"
	outcomeSnapped   = "snapped"
	outcomeSplit     = "split"
	outcomeBlocked   = "blocked"
	outcomeRejected  = "rejected"
)

// Telemetry exposes growth counters on a caller-provided prometheus registry.
type Telemetry struct {
	candidates    *prometheus.CounterVec
	stumps        *prometheus.CounterVec
	nodes         prometheus.Gauge
	edges         prometheus.Gauge
	frontierDepth prometheus.Gauge
}

func NewTelemetry(reg prometheus.Registerer) *Telemetry {
	t := &Telemetry{
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "terraroad",
			Name:      "candidates_total",
			Help:      "Candidate segments by outcome.",
		}, []string{"outcome"}),
		stumps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "terraroad",
			Name:      "stumps_total",
			Help:      "Frontier stumps by final state.",
		}, []string{"state"}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "terraroad",
			Name:      "network_nodes",
			Help:      "Nodes in the committed network.",
		}),
		edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "terraroad",
			Name:      "network_edges",
			Help:      "Edges in the committed network.",
		}),
		frontierDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "terraroad",
			Name:      "frontier_depth",
			Help:      "Growable stumps waiting in the frontier.",
		}),
	}
	reg.MustRegister(t.candidates, t.stumps, t.nodes, t.edges, t.frontierDepth)
	return t
}

func (t *Telemetry) observeCandidate(outcome string) {
	t.candidates.WithLabelValues(outcome).Inc()
}

func (t *Telemetry) observeStump(state entryState) {
	t.stumps.WithLabelValues(state.String()).Inc()
}

func (t *Telemetry) observeNetwork(nodes, edges, frontier int) {
	t.nodes.Set(float64(nodes))
	t.edges.Set(float64(edges))
	t.frontierDepth.Set(float64(frontier))
}
