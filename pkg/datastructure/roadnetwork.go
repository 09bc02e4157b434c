package datastructure

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/r2"
)

var (
	ErrUnknownNode   = errors.New("node does not exist in the network")
	ErrUnknownEdge   = errors.New("edge does not exist in the network")
	ErrSelfLoop      = errors.New("edge endpoints must be distinct nodes")
	ErrDuplicateEdge = errors.New("an edge with the same endpoint pair already exists")
)

// rectEpsilon pads degenerate bounding boxes so rtreego accepts them
// (a vertical/horizontal segment has a zero-extent side).
const rectEpsilon = 1e-9

type nodeEntry struct {
	id   NodeID
	rect rtreego.Rect
}

func (e *nodeEntry) Bounds() rtreego.Rect { return e.rect }

type edgeEntry struct {
	id   EdgeID
	rect rtreego.Rect
}

func (e *edgeEntry) Bounds() rtreego.Rect { return e.rect }

func rectAround(min, max r2.Point, pad float64) rtreego.Rect {
	if pad < rectEpsilon {
		pad = rectEpsilon
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{min.X - pad, min.Y - pad},
		[]float64{max.X - min.X + 2*pad, max.Y - min.Y + 2*pad},
	)
	if err != nil {
		// only reachable with NaN coordinates
		panic(fmt.Sprintf("invalid spatial index rect: %v", err))
	}
	return rect
}

func segmentRect(a, b r2.Point, pad float64) rtreego.Rect {
	min := r2.Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)}
	max := r2.Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)}
	return rectAround(min, max, pad)
}

// RoadNetwork is the mutable graph of nodes and path segments plus an R-tree
// spatial index over both. The network exclusively owns Node/Edge records;
// the trees store ids only. Every mutation updates the trees synchronously so
// intersection queries always observe the latest committed topology.
type RoadNetwork struct {
	nodes map[NodeID]*Node
	edges map[EdgeID]*Edge

	// adjacency[a][b] = edge id, mirrored for both directions. Guards the
	// no-parallel-duplicate-edges invariant.
	adjacency map[NodeID]map[NodeID]EdgeID

	nodeTree    *rtreego.Rtree
	edgeTree    *rtreego.Rtree
	nodeEntries map[NodeID]*nodeEntry
	edgeEntries map[EdgeID]*edgeEntry

	nextNodeID NodeID
	nextEdgeID EdgeID
}

func NewRoadNetwork() *RoadNetwork {
	return &RoadNetwork{
		nodes:       make(map[NodeID]*Node),
		edges:       make(map[EdgeID]*Edge),
		adjacency:   make(map[NodeID]map[NodeID]EdgeID),
		nodeTree:    rtreego.NewTree(2, 25, 50),
		edgeTree:    rtreego.NewTree(2, 25, 50),
		nodeEntries: make(map[NodeID]*nodeEntry),
		edgeEntries: make(map[EdgeID]*edgeEntry),
	}
}

func (rn *RoadNetwork) NodeCount() int { return len(rn.nodes) }

func (rn *RoadNetwork) EdgeCount() int { return len(rn.edges) }

func (rn *RoadNetwork) Node(id NodeID) (*Node, bool) {
	n, ok := rn.nodes[id]
	return n, ok
}

func (rn *RoadNetwork) Edge(id EdgeID) (*Edge, bool) {
	e, ok := rn.edges[id]
	return e, ok
}

// NodeIDs returns all node ids in ascending (creation) order.
func (rn *RoadNetwork) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(rn.nodes))
	for id := range rn.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// EdgeIDs returns all edge ids in ascending (creation) order.
func (rn *RoadNetwork) EdgeIDs() []EdgeID {
	ids := make([]EdgeID, 0, len(rn.edges))
	for id := range rn.edges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AddNode inserts a node and indexes it. Ids are allocated sequentially so
// id order is creation order.
func (rn *RoadNetwork) AddNode(pos r2.Point, elevation float64, leveled bool) NodeID {
	id := rn.nextNodeID
	rn.nextNodeID++

	rn.nodes[id] = &Node{
		ID:        id,
		Pos:       pos,
		Elevation: elevation,
		Leveled:   leveled,
	}
	entry := &nodeEntry{id: id, rect: rectAround(pos, pos, rectEpsilon)}
	rn.nodeEntries[id] = entry
	rn.nodeTree.Insert(entry)
	return id
}

// AddEdge inserts a segment between two existing, distinct nodes. Duplicate
// endpoint pairs are rejected regardless of direction.
func (rn *RoadNetwork) AddEdge(from, to NodeID, geometry []r2.Point, kind EdgeKind, m Metrics) (EdgeID, error) {
	if from == to {
		return 0, ErrSelfLoop
	}
	fromNode, ok := rn.nodes[from]
	if !ok {
		return 0, fmt.Errorf("adding edge from node %d: %w", from, ErrUnknownNode)
	}
	toNode, ok := rn.nodes[to]
	if !ok {
		return 0, fmt.Errorf("adding edge to node %d: %w", to, ErrUnknownNode)
	}
	if _, dup := rn.adjacency[from][to]; dup {
		return 0, ErrDuplicateEdge
	}

	if len(geometry) < 2 {
		geometry = []r2.Point{fromNode.Pos, toNode.Pos}
	}

	id := rn.nextEdgeID
	rn.nextEdgeID++

	edge := &Edge{
		ID:       id,
		From:     from,
		To:       to,
		Geometry: geometry,
		Kind:     kind,
		Metrics:  m,
	}
	rn.edges[id] = edge
	rn.link(from, to, id)
	fromNode.Edges = append(fromNode.Edges, id)
	toNode.Edges = append(toNode.Edges, id)

	entry := &edgeEntry{id: id, rect: segmentRect(fromNode.Pos, toNode.Pos, rectEpsilon)}
	rn.edgeEntries[id] = entry
	rn.edgeTree.Insert(entry)
	return id, nil
}

func (rn *RoadNetwork) link(a, b NodeID, id EdgeID) {
	if rn.adjacency[a] == nil {
		rn.adjacency[a] = make(map[NodeID]EdgeID)
	}
	if rn.adjacency[b] == nil {
		rn.adjacency[b] = make(map[NodeID]EdgeID)
	}
	rn.adjacency[a][b] = id
	rn.adjacency[b][a] = id
}

func (rn *RoadNetwork) unlink(a, b NodeID) {
	delete(rn.adjacency[a], b)
	delete(rn.adjacency[b], a)
}

func (rn *RoadNetwork) HasEdgeBetween(a, b NodeID) bool {
	_, ok := rn.adjacency[a][b]
	return ok
}

func (rn *RoadNetwork) Degree(id NodeID) int {
	n, ok := rn.nodes[id]
	if !ok {
		return 0
	}
	return n.Degree()
}

func removeEdgeID(ids []EdgeID, id EdgeID) []EdgeID {
	for i, e := range ids {
		if e == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func (rn *RoadNetwork) removeEdge(id EdgeID) {
	edge := rn.edges[id]
	rn.unlink(edge.From, edge.To)
	if n, ok := rn.nodes[edge.From]; ok {
		n.Edges = removeEdgeID(n.Edges, id)
	}
	if n, ok := rn.nodes[edge.To]; ok {
		n.Edges = removeEdgeID(n.Edges, id)
	}
	if entry, ok := rn.edgeEntries[id]; ok {
		rn.edgeTree.Delete(entry)
		delete(rn.edgeEntries, id)
	}
	delete(rn.edges, id)
}

// ElevationOnEdge interpolates the elevation at a point on the edge from the
// endpoint node elevations, weighted by planar distance.
func (rn *RoadNetwork) ElevationOnEdge(id EdgeID, at r2.Point) (float64, error) {
	edge, ok := rn.edges[id]
	if !ok {
		return 0, ErrUnknownEdge
	}
	from := rn.nodes[edge.From]
	to := rn.nodes[edge.To]
	d0 := at.Sub(from.Pos).Norm()
	d1 := at.Sub(to.Pos).Norm()
	if d0+d1 == 0 {
		return from.Elevation, nil
	}
	frac := d0 / (d0 + d1)
	return from.Elevation*(1-frac) + to.Elevation*frac, nil
}

// SplitEdge divides an edge into two at the given position, creating a
// junction node there. The incidence sets of all three nodes and the spatial
// index are updated in the same call, so the network never exposes a
// half-applied split. Returns the junction node id and the two replacement
// edge ids.
func (rn *RoadNetwork) SplitEdge(id EdgeID, at r2.Point) (NodeID, [2]EdgeID, error) {
	edge, ok := rn.edges[id]
	if !ok {
		return 0, [2]EdgeID{}, ErrUnknownEdge
	}

	elevation, err := rn.ElevationOnEdge(id, at)
	if err != nil {
		return 0, [2]EdgeID{}, err
	}

	from, to := edge.From, edge.To
	kind := edge.Kind
	metrics := edge.Metrics
	geomA, geomB := splitGeometry(edge.Geometry, at)

	rn.removeEdge(id)

	junction := rn.AddNode(at, elevation, kind != Surface)

	firstID, err := rn.AddEdge(from, junction, geomA, kind, RescaleMetrics(metrics, geomA))
	if err != nil {
		return 0, [2]EdgeID{}, fmt.Errorf("splitting edge %d: %w", id, err)
	}
	secondID, err := rn.AddEdge(junction, to, geomB, kind, RescaleMetrics(metrics, geomB))
	if err != nil {
		return 0, [2]EdgeID{}, fmt.Errorf("splitting edge %d: %w", id, err)
	}
	return junction, [2]EdgeID{firstID, secondID}, nil
}

// MergeIntoNode commits a segment that terminates on an existing node instead
// of creating a new endpoint: the geometry is re-aimed at the target node and
// the cached metrics re-derived for the merged run.
func (rn *RoadNetwork) MergeIntoNode(from, target NodeID, kind EdgeKind, m Metrics) (EdgeID, error) {
	fromNode, ok := rn.nodes[from]
	if !ok {
		return 0, fmt.Errorf("merging from node %d: %w", from, ErrUnknownNode)
	}
	targetNode, ok := rn.nodes[target]
	if !ok {
		return 0, fmt.Errorf("merging into node %d: %w", target, ErrUnknownNode)
	}
	geometry := []r2.Point{fromNode.Pos, targetNode.Pos}
	return rn.AddEdge(from, target, geometry, kind, RescaleMetrics(m, geometry))
}

// splitGeometry cuts the polyline at the segment whose projection is nearest
// to the split point.
func splitGeometry(geometry []r2.Point, at r2.Point) ([]r2.Point, []r2.Point) {
	best := 0
	bestDist := math.Inf(1)
	for i := 0; i < len(geometry)-1; i++ {
		d := pointSegmentDistance(at, geometry[i], geometry[i+1])
		if d < bestDist {
			bestDist = d
			best = i
		}
	}

	first := make([]r2.Point, 0, best+2)
	first = append(first, geometry[:best+1]...)
	first = append(first, at)

	second := make([]r2.Point, 0, len(geometry)-best)
	second = append(second, at)
	second = append(second, geometry[best+1:]...)
	return first, second
}

func pointSegmentDistance(p, a, b r2.Point) float64 {
	ab := b.Sub(a)
	mag2 := ab.Dot(ab)
	if mag2 == 0 {
		return p.Sub(a).Norm()
	}
	t := p.Sub(a).Dot(ab) / mag2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Sub(a.Add(ab.Mul(t))).Norm()
}

func geometryLength(geometry []r2.Point) float64 {
	total := 0.0
	for i := 0; i < len(geometry)-1; i++ {
		total += geometry[i+1].Sub(geometry[i]).Norm()
	}
	return total
}

// RescaleMetrics re-derives cached metrics for a shortened or re-aimed
// geometry. Grades and penalties carry over; length and score scale with
// the cut.
func RescaleMetrics(m Metrics, geometry []r2.Point) Metrics {
	newLen := geometryLength(geometry)
	if m.Length > 0 {
		ratio := newLen / m.Length
		m.ElevationCost *= ratio
		m.TotalScore *= ratio
	}
	m.Length = newLen
	return m
}

// NodesWithin returns the ids of nodes within radius of p, nearest first
// (ties broken by id so query order is deterministic).
func (rn *RoadNetwork) NodesWithin(p r2.Point, radius float64) []NodeID {
	bb := rectAround(p, p, radius)
	found := rn.nodeTree.SearchIntersect(bb)

	ids := make([]NodeID, 0, len(found))
	for _, item := range found {
		entry := item.(*nodeEntry)
		node := rn.nodes[entry.id]
		if node.Pos.Sub(p).Norm() <= radius {
			ids = append(ids, entry.id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		di := rn.nodes[ids[i]].Pos.Sub(p).Norm()
		dj := rn.nodes[ids[j]].Pos.Sub(p).Norm()
		if di != dj {
			return di < dj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// NearestNodeWithin returns the nearest node within radius of p, if any.
func (rn *RoadNetwork) NearestNodeWithin(p r2.Point, radius float64) (NodeID, bool) {
	ids := rn.NodesWithin(p, radius)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// EdgesNear returns the ids of edges whose bounding boxes intersect the
// bounding box of segment (a, b) expanded by band, in ascending id order.
func (rn *RoadNetwork) EdgesNear(a, b r2.Point, band float64) []EdgeID {
	bb := segmentRect(a, b, band)
	found := rn.edgeTree.SearchIntersect(bb)

	ids := make([]EdgeID, 0, len(found))
	for _, item := range found {
		ids = append(ids, item.(*edgeEntry).id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
