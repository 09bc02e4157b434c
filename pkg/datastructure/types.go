package datastructure

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"

	"github.com/lintang-b-s/terraroad/pkg/terrain"
)

type NodeID int32

type EdgeID int32

// EdgeKind is the structural kind of a committed path segment.
type EdgeKind int

const (
	Surface EdgeKind = iota
	Bridge
	Tunnel
)

func (k EdgeKind) String() string {
	switch k {
	case Surface:
		return "surface"
	case Bridge:
		return "bridge"
	case Tunnel:
		return "tunnel"
	default:
		return "unknown"
	}
}

// Metrics are the cached quality metrics of a path segment. TotalScore is a
// weighted combination used to rank competing candidates at one frontier
// node; lower is better. Scores are never compared across unrelated
// frontier nodes.
type Metrics struct {
	Length           float64
	AvgGrade         float64
	ElevationCost    float64
	CurvaturePenalty float64
	TotalScore       float64
}

// Node is a junction or endpoint of the road network. Elevation equals the
// terrain elevation at Pos unless Leveled is set, in which case it is the
// engineered elevation of a bridge/tunnel ramp.
type Node struct {
	ID        NodeID
	Pos       r2.Point
	Elevation float64
	Leveled   bool
	Edges     []EdgeID
}

func (n *Node) Degree() int {
	return len(n.Edges)
}

// Edge is a committed path segment between two distinct nodes. Geometry is a
// polyline whose first and last points are the endpoint node positions.
type Edge struct {
	ID       EdgeID
	From     NodeID
	To       NodeID
	Geometry []r2.Point
	Kind     EdgeKind
	Metrics  Metrics
}

// Candidate is an ephemeral growth proposal. It never enters the graph:
// an accepted candidate becomes an Edge (and possibly a Node), a rejected
// one is discarded.
type Candidate struct {
	StartID        NodeID
	Start          r2.Point
	StartElevation float64
	End            r2.Point
	// EndElevation is the terrain elevation at End, replaced by the ramp end
	// elevation once the constraint checker classifies the candidate as leveled.
	EndElevation     float64
	Heading          s1.Angle
	PreferredHeading s1.Angle
	Profile          []terrain.ProfilePoint
	Kind             EdgeKind
	// ExtraLength is the physical length added by ramp geometry versus the
	// straight-line distance. Zero for surface segments.
	ExtraLength float64
	Metrics     Metrics
	// Seq is the deterministic generation order, used to break score ties.
	Seq int
}

// Length is the planar straight-line length of the proposed segment.
func (c *Candidate) Length() float64 {
	return c.End.Sub(c.Start).Norm()
}
