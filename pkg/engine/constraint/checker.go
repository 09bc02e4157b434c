// Package constraint classifies candidate segments against terrain: a
// candidate is either buildable on the surface, buildable as a leveled
// bridge/tunnel span, or rejected.
package constraint

import (
	"math"

	"github.com/lintang-b-s/terraroad/pkg/datastructure"
)

// degenerateLength is the segment length below which a candidate is rejected
// before any terrain work.
const degenerateLength = 1e-6

type Result int

const (
	ResultSurface Result = iota
	ResultLeveled
	ResultRejected
)

type RejectReason int

const (
	ReasonNone RejectReason = iota
	ReasonTerrainUndefined
	ReasonSlopeExceeded
	ReasonGeometryDegenerate
	ReasonMixedLeveling
)

func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonTerrainUndefined:
		return "terrain undefined"
	case ReasonSlopeExceeded:
		return "slope exceeds leveling capacity"
	case ReasonGeometryDegenerate:
		return "degenerate geometry"
	case ReasonMixedLeveling:
		return "span needs both bridge and tunnel leveling"
	default:
		return "unknown"
	}
}

// Classification is the checker's verdict on one candidate.
type Classification struct {
	Result Result
	Kind   datastructure.EdgeKind
	// RampStart/RampEnd describe the leveled elevation profile for
	// bridge/tunnel spans. For surface spans they are the terrain
	// elevations at the endpoints.
	RampStart float64
	RampEnd   float64
	// ExtraLength is the physical length added by the ramp geometry over
	// the straight-line distance.
	ExtraLength float64
	Reason      RejectReason
}

// Checker holds the slope and leveling limits of one generation run.
type Checker struct {
	surfaceSlopeLimit    float64
	engineeredSlopeLimit float64
	levelingCapacity     float64
	clearanceThreshold   float64
}

func NewChecker(surfaceSlopeLimit, engineeredSlopeLimit, levelingCapacity, clearanceThreshold float64) *Checker {
	return &Checker{
		surfaceSlopeLimit:    surfaceSlopeLimit,
		engineeredSlopeLimit: engineeredSlopeLimit,
		levelingCapacity:     levelingCapacity,
		clearanceThreshold:   clearanceThreshold,
	}
}

func rejected(reason RejectReason) Classification {
	return Classification{Result: ResultRejected, Reason: reason}
}

// Classify decides whether the candidate can be built and how. The candidate
// must carry a sampled terrain profile (evenly spaced, endpoints included).
//
// Leveling applies to a whole segment: a span that would need a bridge over
// one part and a tunnel under another is rejected, and a follow-up attempt
// with a shorter candidate may succeed where the whole span failed.
func (c *Checker) Classify(cand *datastructure.Candidate) Classification {
	length := cand.Length()
	if length < degenerateLength || len(cand.Profile) < 2 {
		return rejected(ReasonGeometryDegenerate)
	}
	for _, pp := range cand.Profile {
		if !pp.Defined {
			return rejected(ReasonTerrainUndefined)
		}
	}

	step := length / float64(len(cand.Profile)-1)

	surface := true
	for i := 1; i < len(cand.Profile); i++ {
		grade := math.Abs(cand.Profile[i].Elevation-cand.Profile[i-1].Elevation) / step
		if grade > c.surfaceSlopeLimit {
			surface = false
			break
		}
	}
	if surface {
		return Classification{
			Result:    ResultSurface,
			Kind:      datastructure.Surface,
			RampStart: cand.Profile[0].Elevation,
			RampEnd:   cand.Profile[len(cand.Profile)-1].Elevation,
		}
	}

	// Attempt a linear ramp from the start node's elevation, clamped so the
	// ramp's own grade never exceeds the engineered limit.
	rampStart := cand.StartElevation
	terrainEnd := cand.Profile[len(cand.Profile)-1].Elevation
	maxRise := c.engineeredSlopeLimit * length
	rampEnd := terrainEnd
	if rampEnd > rampStart+maxRise {
		rampEnd = rampStart + maxRise
	} else if rampEnd < rampStart-maxRise {
		rampEnd = rampStart - maxRise
	}

	// The ramp must touch terrain again at the far end.
	if math.Abs(rampEnd-terrainEnd) > c.levelingCapacity {
		return rejected(ReasonSlopeExceeded)
	}

	maxBelow := 0.0 // terrain below the ramp (bridge clearance)
	maxAbove := 0.0 // terrain above the ramp (tunnel cover)
	for i := 1; i < len(cand.Profile)-1; i++ {
		t := float64(i) / float64(len(cand.Profile)-1)
		ramp := rampStart + (rampEnd-rampStart)*t
		diff := cand.Profile[i].Elevation - ramp
		if diff < 0 && -diff > maxBelow {
			maxBelow = -diff
		} else if diff > 0 && diff > maxAbove {
			maxAbove = diff
		}
	}

	if maxBelow > c.levelingCapacity || maxAbove > c.levelingCapacity {
		return rejected(ReasonSlopeExceeded)
	}
	if maxBelow > c.clearanceThreshold && maxAbove > c.clearanceThreshold {
		return rejected(ReasonMixedLeveling)
	}

	var kind datastructure.EdgeKind
	switch {
	case maxBelow > c.clearanceThreshold:
		kind = datastructure.Bridge
	case maxAbove > c.clearanceThreshold:
		kind = datastructure.Tunnel
	default:
		// grades failed but the terrain hugs the ramp everywhere; there is
		// nothing to bridge or tunnel through, so the span is not buildable
		// under whole-segment leveling.
		return rejected(ReasonSlopeExceeded)
	}

	rise := rampEnd - rampStart
	extra := math.Hypot(length, rise) - length

	return Classification{
		Result:      ResultLeveled,
		Kind:        kind,
		RampStart:   rampStart,
		RampEnd:     rampEnd,
		ExtraLength: extra,
	}
}
