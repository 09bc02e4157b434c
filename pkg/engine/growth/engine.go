// Package growth runs the generation loop: pull the best stump off the
// frontier, propose candidate segments around its preferred heading, classify
// them against terrain, score them, resolve them against the committed
// topology and commit the winner.
package growth

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/rand"

	"github.com/lintang-b-s/terraroad/pkg/datastructure"
	"github.com/lintang-b-s/terraroad/pkg/engine/constraint"
	"github.com/lintang-b-s/terraroad/pkg/engine/evaluation"
	"github.com/lintang-b-s/terraroad/pkg/engine/resolve"
	"github.com/lintang-b-s/terraroad/pkg/geo"
	"github.com/lintang-b-s/terraroad/pkg/terrain"
)

var ErrTerrainUndefinedAtOrigin = errors.New("terrain undefined at origin position")

type Status int

const (
	// FrontierDrained means every stump was grown or exhausted.
	FrontierDrained Status = iota
	// ResourceExhausted means a MaxNodes/MaxEdges bound stopped the run.
	ResourceExhausted
)

func (s Status) String() string {
	switch s {
	case FrontierDrained:
		return "frontier drained"
	case ResourceExhausted:
		return "resource bound reached"
	default:
		return "unknown"
	}
}

// Summary reports one finished generation run.
type Summary struct {
	Status              Status
	Nodes               int
	Edges               int
	CandidatesEvaluated int
	CandidatesRejected  int
	CandidatesBlocked   int
}

// Engine grows a road network over terrain. It is single-threaded; run one
// Grow per engine.
type Engine struct {
	cfg       Config
	sampler   terrain.Sampler
	net       *datastructure.RoadNetwork
	checker   *constraint.Checker
	evaluator *evaluation.Evaluator
	resolver  *resolve.Resolver
	rng       *rand.Rand
	frontier  *frontierHeap
	telemetry *Telemetry
	seq       int
}

// NewEngine validates cfg and assembles the generation pipeline over the
// given terrain. telemetry may be nil; metrics then go to a private registry.
func NewEngine(cfg Config, sampler terrain.Sampler, telemetry *Telemetry) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sampler == nil {
		return nil, fmt.Errorf("growth: nil terrain sampler")
	}
	if telemetry == nil {
		telemetry = NewTelemetry(prometheus.NewRegistry())
	}
	weights := cfg.Weights
	if weights == (evaluation.Weights{}) {
		weights = evaluation.DefaultWeights()
	}

	net := datastructure.NewRoadNetwork()
	return &Engine{
		cfg:       cfg,
		sampler:   sampler,
		net:       net,
		checker:   constraint.NewChecker(cfg.SurfaceSlopeLimit, cfg.EngineeredSlopeLimit, cfg.LevelingCapacity, cfg.ClearanceThreshold),
		evaluator: evaluation.NewEvaluator(weights),
		resolver:  resolve.NewResolver(net, cfg.SnapDistance, s1.Angle(cfg.MinCrossingAngle), cfg.ProximityBand),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		frontier:  newFrontierHeap(),
		telemetry: telemetry,
	}, nil
}

// Network returns the committed network. Callers must not mutate it while
// Grow is running.
func (e *Engine) Network() *datastructure.RoadNetwork {
	return e.net
}

// AddOrigin seeds the frontier with a growable node at pos. The node takes
// the terrain elevation at pos.
func (e *Engine) AddOrigin(pos r2.Point, heading s1.Angle) (datastructure.NodeID, error) {
	sample, ok := e.sampler.SampleAt(pos)
	if !ok {
		return 0, ErrTerrainUndefinedAtOrigin
	}
	id := e.net.AddNode(pos, sample.Elevation, false)
	e.push(id, heading, e.cfg.BranchBudget, 0)
	return id, nil
}

func (e *Engine) push(id datastructure.NodeID, heading s1.Angle, budget int, priority float64) {
	e.seq++
	e.frontier.Insert(&frontierEntry{
		nodeID:       id,
		heading:      heading,
		branchBudget: budget,
		priority:     priority,
		seq:          e.seq,
		state:        statePending,
	})
}

// Grow runs until the frontier drains or a resource bound is hit.
func (e *Engine) Grow() Summary {
	var sum Summary
	for e.frontier.Size() > 0 {
		if e.net.NodeCount() >= e.cfg.MaxNodes || e.net.EdgeCount() >= e.cfg.MaxEdges {
			return e.finish(&sum, ResourceExhausted)
		}
		entry, _ := e.frontier.ExtractMin()
		entry.state = stateEvaluating
		if e.extend(entry, &sum) {
			entry.state = stateCommitted
		} else {
			entry.state = stateExhausted
		}
		e.telemetry.observeStump(entry.state)
		e.telemetry.observeNetwork(e.net.NodeCount(), e.net.EdgeCount(), e.frontier.Size())
	}
	return e.finish(&sum, FrontierDrained)
}

func (e *Engine) finish(sum *Summary, status Status) Summary {
	sum.Status = status
	sum.Nodes = e.net.NodeCount()
	sum.Edges = e.net.EdgeCount()
	e.telemetry.observeNetwork(sum.Nodes, sum.Edges, e.frontier.Size())
	return *sum
}

// extend tries to commit one segment out of entry's node. Full-length
// candidates are tried first; only when every candidate at the current
// length fails does the length shrink.
func (e *Engine) extend(entry *frontierEntry, sum *Summary) bool {
	node, ok := e.net.Node(entry.nodeID)
	if !ok {
		return false
	}
	for length := e.cfg.SegmentLength; length >= e.cfg.MinSegmentLength; length *= e.cfg.RetryShrink {
		cands := e.proposeAt(node, entry, length, sum)
		for _, cand := range cands {
			if e.commit(cand, entry, sum) {
				return true
			}
		}
	}
	return false
}

// proposeAt builds, classifies and scores the direction fan at one segment
// length, returning the buildable candidates best first.
func (e *Engine) proposeAt(node *datastructure.Node, entry *frontierEntry, length float64, sum *Summary) []*datastructure.Candidate {
	cands := make([]*datastructure.Candidate, 0, e.cfg.DirectionFan)
	for _, offset := range e.fanOffsets() {
		heading := geo.NormalizeAngle(entry.heading + offset)
		end := geo.Extend(node.Pos, heading, length)

		e.seq++
		cand := &datastructure.Candidate{
			StartID:          node.ID,
			Start:            node.Pos,
			StartElevation:   node.Elevation,
			End:              end,
			Heading:          heading,
			PreferredHeading: entry.heading,
			Profile:          terrain.Profile(e.sampler, node.Pos, end, e.cfg.SampleCount),
			Seq:              e.seq,
		}
		sum.CandidatesEvaluated++

		cls := e.checker.Classify(cand)
		if cls.Result == constraint.ResultRejected {
			sum.CandidatesRejected++
			e.telemetry.observeCandidate(outcomeRejected)
			continue
		}
		cand.Kind = cls.Kind
		cand.EndElevation = cls.RampEnd
		cand.ExtraLength = cls.ExtraLength
		cand.Metrics = e.evaluator.Evaluate(cand)
		cands = append(cands, cand)
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Metrics.TotalScore != cands[j].Metrics.TotalScore {
			return cands[i].Metrics.TotalScore < cands[j].Metrics.TotalScore
		}
		return cands[i].Seq < cands[j].Seq
	})
	return cands
}

// fanOffsets spreads DirectionFan headings across +-MaxDeviationAngle, the
// center of the fan on the preferred heading.
func (e *Engine) fanOffsets() []s1.Angle {
	fan := e.cfg.DirectionFan
	offsets := make([]s1.Angle, fan)
	if fan == 1 {
		return offsets
	}
	for i := 0; i < fan; i++ {
		t := float64(i) / float64(fan-1)
		offsets[i] = s1.Angle(-e.cfg.MaxDeviationAngle + 2*e.cfg.MaxDeviationAngle*t)
	}
	return offsets
}

func (e *Engine) commit(cand *datastructure.Candidate, entry *frontierEntry, sum *Summary) bool {
	res := e.resolver.Resolve(cand)
	switch res.Decision {
	case resolve.Blocked:
		sum.CandidatesBlocked++
		e.telemetry.observeCandidate(outcomeBlocked)
		return false
	case resolve.SnapToNode:
		return e.commitSnap(cand, res.NodeID)
	case resolve.SplitEdge:
		return e.commitSplit(cand, res)
	default:
		return e.commitFree(cand, entry)
	}
}

// commitSnap joins the candidate onto an existing node. Snapped junctions do
// not grow further.
func (e *Engine) commitSnap(cand *datastructure.Candidate, targetID datastructure.NodeID) bool {
	target, ok := e.net.Node(targetID)
	if !ok {
		return false
	}
	// re-aiming at the snapped node changes the end elevation; the joined
	// segment still has to respect the slope limits
	dist := target.Pos.Sub(cand.Start).Norm()
	limit := math.Max(e.cfg.SurfaceSlopeLimit, e.cfg.EngineeredSlopeLimit)
	if dist == 0 || math.Abs(target.Elevation-cand.StartElevation)/dist > limit {
		return false
	}
	if _, err := e.net.MergeIntoNode(cand.StartID, targetID, cand.Kind, cand.Metrics); err != nil {
		return false
	}
	e.telemetry.observeCandidate(outcomeSnapped)
	return true
}

// commitSplit breaks the crossed edge at the crossing point and joins the
// candidate onto the new junction. The junction does not grow further.
func (e *Engine) commitSplit(cand *datastructure.Candidate, res resolve.Resolution) bool {
	// a split nets two extra edges in one step; refuse it when that would
	// push the run past the hard edge bound
	if e.net.EdgeCount()+2 > e.cfg.MaxEdges {
		return false
	}
	// the junction takes its elevation from the crossed edge, not the
	// candidate's ramp; check the joined grade before touching the graph
	elevation, err := e.net.ElevationOnEdge(res.EdgeID, res.At)
	if err != nil {
		return false
	}
	dist := res.At.Sub(cand.Start).Norm()
	limit := math.Max(e.cfg.SurfaceSlopeLimit, e.cfg.EngineeredSlopeLimit)
	if dist == 0 || math.Abs(elevation-cand.StartElevation)/dist > limit {
		return false
	}
	junction, _, err := e.net.SplitEdge(res.EdgeID, res.At)
	if err != nil {
		return false
	}
	geometry := []r2.Point{cand.Start, res.At}
	if _, err := e.net.AddEdge(cand.StartID, junction, geometry, cand.Kind, datastructure.RescaleMetrics(cand.Metrics, geometry)); err != nil {
		return false
	}
	e.telemetry.observeCandidate(outcomeSplit)
	return true
}

// commitFree creates the end node, commits the edge and queues the new stump
// plus any perpendicular branch stumps.
func (e *Engine) commitFree(cand *datastructure.Candidate, entry *frontierEntry) bool {
	leveled := cand.Kind != datastructure.Surface
	endID := e.net.AddNode(cand.End, cand.EndElevation, leveled)
	geometry := []r2.Point{cand.Start, cand.End}
	if _, err := e.net.AddEdge(cand.StartID, endID, geometry, cand.Kind, cand.Metrics); err != nil {
		return false
	}
	e.telemetry.observeCandidate(outcomeCommitted)

	// stumps are prioritized by the physical length of the segment that
	// reached them; raw length is comparable across frontier nodes where
	// the weighted score is not
	e.push(endID, cand.Heading, entry.branchBudget, cand.Metrics.Length)
	e.maybeBranch(endID, cand.Heading, entry.branchBudget, cand.Metrics.Length)
	return true
}

// maybeBranch queues perpendicular stumps at the new node. One draw per side
// keeps the random stream consumption deterministic.
func (e *Engine) maybeBranch(id datastructure.NodeID, heading s1.Angle, budget int, priority float64) {
	if budget <= 0 || e.cfg.BranchProbability == 0 {
		return
	}
	if e.rng.Float64() < e.cfg.BranchProbability {
		e.push(id, geo.NormalizeAngle(heading+s1.Angle(math.Pi/2)), budget-1, priority)
	}
	if e.rng.Float64() < e.cfg.BranchProbability {
		e.push(id, geo.NormalizeAngle(heading-s1.Angle(math.Pi/2)), budget-1, priority)
	}
}
