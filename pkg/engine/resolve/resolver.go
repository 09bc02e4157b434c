// Package resolve decides how a candidate segment joins the existing
// network: ending free, snapping onto an existing node, splitting a crossed
// edge at a new junction, or being blocked outright.
package resolve

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"

	"github.com/lintang-b-s/terraroad/pkg/datastructure"
	"github.com/lintang-b-s/terraroad/pkg/geo"
)

// degenerateDistance is the crossing distance below which an intersection is
// treated as passing through the candidate's own start point.
const degenerateDistance = 1e-6

type Decision int

const (
	NewFreeEnd Decision = iota
	SnapToNode
	SplitEdge
	Blocked
)

func (d Decision) String() string {
	switch d {
	case NewFreeEnd:
		return "new free end"
	case SnapToNode:
		return "snap to node"
	case SplitEdge:
		return "split edge"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Resolution is the resolver's verdict. NodeID is set for SnapToNode,
// EdgeID and At for SplitEdge.
type Resolution struct {
	Decision Decision
	NodeID   datastructure.NodeID
	EdgeID   datastructure.EdgeID
	At       r2.Point
}

type Resolver struct {
	net              *datastructure.RoadNetwork
	snapDistance     float64
	minCrossingAngle s1.Angle
	// proximityBand widens intersection searches beyond the candidate's own
	// length so just-short misses still join the network.
	proximityBand float64
}

func NewResolver(net *datastructure.RoadNetwork, snapDistance float64, minCrossingAngle s1.Angle, proximityBand float64) *Resolver {
	return &Resolver{
		net:              net,
		snapDistance:     snapDistance,
		minCrossingAngle: minCrossingAngle,
		proximityBand:    proximityBand,
	}
}

// Resolve inspects the committed topology around the candidate. Queries go
// through the network's spatial index; candidates are examined in id order
// so the outcome is deterministic for a given topology.
func (rv *Resolver) Resolve(cand *datastructure.Candidate) Resolution {
	if res, ok := rv.resolveSnap(cand); ok {
		return res
	}
	if res, ok := rv.resolveCrossing(cand); ok {
		return res
	}
	if rv.overlapsNearParallel(cand) {
		return Resolution{Decision: Blocked}
	}
	return Resolution{Decision: NewFreeEnd}
}

// resolveSnap merges the candidate's terminal point onto a nearby existing
// node so near-duplicate junctions are never created.
func (rv *Resolver) resolveSnap(cand *datastructure.Candidate) (Resolution, bool) {
	ids := rv.net.NodesWithin(cand.End, rv.snapDistance)
	sawOnlyConnected := false
	for _, id := range ids {
		if id == cand.StartID {
			sawOnlyConnected = true
			continue
		}
		if rv.net.HasEdgeBetween(cand.StartID, id) {
			// re-connecting would duplicate an edge
			sawOnlyConnected = true
			continue
		}
		return Resolution{Decision: SnapToNode, NodeID: id}, true
	}
	if sawOnlyConnected {
		return Resolution{Decision: Blocked}, true
	}
	return Resolution{}, false
}

func (rv *Resolver) edgeHeading(edge *datastructure.Edge) s1.Angle {
	from, _ := rv.net.Node(edge.From)
	to, _ := rv.net.Node(edge.To)
	return geo.Heading(from.Pos, to.Pos)
}

func (rv *Resolver) resolveCrossing(cand *datastructure.Candidate) (Resolution, bool) {
	// search slightly past the terminal point
	searchEnd := geo.Extend(cand.Start, cand.Heading, cand.Length()+rv.proximityBand)

	var (
		bestEdge datastructure.EdgeID
		bestAt   r2.Point
		bestDist = -1.0
		grazed   = false
	)
	for _, id := range rv.net.EdgesNear(cand.Start, searchEnd, rv.proximityBand) {
		edge, _ := rv.net.Edge(id)
		if edge.From == cand.StartID || edge.To == cand.StartID {
			continue
		}
		from, _ := rv.net.Node(edge.From)
		to, _ := rv.net.Node(edge.To)

		at, ok := geo.SegmentIntersection(cand.Start, searchEnd, from.Pos, to.Pos)
		if !ok {
			continue
		}
		dist := at.Sub(cand.Start).Norm()
		if dist < degenerateDistance {
			// passes through the start point itself
			continue
		}
		if geo.CrossingAngle(cand.Heading, rv.edgeHeading(edge)) < rv.minCrossingAngle {
			// near-parallel grazing produces degenerate slivers
			grazed = true
			continue
		}
		if bestDist < 0 || dist < bestDist {
			bestEdge = id
			bestAt = at
			bestDist = dist
		}
	}

	if bestDist < 0 {
		if grazed {
			return Resolution{Decision: Blocked}, true
		}
		return Resolution{}, false
	}

	// a crossing right next to an endpoint of the crossed edge becomes a
	// snap onto that endpoint instead of a sliver split
	edge, _ := rv.net.Edge(bestEdge)
	for _, endpoint := range []datastructure.NodeID{edge.From, edge.To} {
		node, _ := rv.net.Node(endpoint)
		if node.Pos.Sub(bestAt).Norm() <= rv.snapDistance {
			if endpoint == cand.StartID || rv.net.HasEdgeBetween(cand.StartID, endpoint) {
				return Resolution{Decision: Blocked}, true
			}
			return Resolution{Decision: SnapToNode, NodeID: endpoint}, true
		}
	}

	return Resolution{Decision: SplitEdge, EdgeID: bestEdge, At: bestAt}, true
}

// overlapsNearParallel reports whether the candidate runs nearly collinear
// with an existing edge inside the proximity band without a clean crossing.
func (rv *Resolver) overlapsNearParallel(cand *datastructure.Candidate) bool {
	for _, id := range rv.net.EdgesNear(cand.Start, cand.End, rv.proximityBand) {
		edge, _ := rv.net.Edge(id)
		if geo.CrossingAngle(cand.Heading, rv.edgeHeading(edge)) >= rv.minCrossingAngle {
			continue
		}
		from, _ := rv.net.Node(edge.From)
		to, _ := rv.net.Node(edge.To)
		if edge.From == cand.StartID || edge.To == cand.StartID {
			// leaving the start node almost parallel to an incident edge
			// doubles it up; measure from just past the start
			probe := geo.Extend(cand.Start, cand.Heading, cand.Length()*0.5)
			if geo.PointSegmentDistance(probe, from.Pos, to.Pos) < rv.proximityBand {
				return true
			}
			continue
		}
		if geo.SegmentSegmentDistance(cand.Start, cand.End, from.Pos, to.Pos) < rv.proximityBand {
			return true
		}
	}
	return false
}
