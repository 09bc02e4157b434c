// Package evaluation scores candidate segments. Scores rank competing
// candidates at a single frontier node; they are never compared across
// unrelated frontier nodes.
package evaluation

import (
	"math"

	"github.com/lintang-b-s/terraroad/pkg/datastructure"
	"github.com/lintang-b-s/terraroad/pkg/geo"
)

// Weights combine the individual metrics into one total score.
// Lower total is better.
type Weights struct {
	Length        float64
	Grade         float64
	ElevationCost float64
	Curvature     float64
}

// DefaultWeights favor short, gently graded, straight continuations:
// one score unit per unit of length, a strong penalty on average grade,
// a mild one on leveling volume, and a per-radian deviation penalty.
func DefaultWeights() Weights {
	return Weights{
		Length:        1.0,
		Grade:         40.0,
		ElevationCost: 0.5,
		Curvature:     8.0,
	}
}

type Evaluator struct {
	weights Weights
}

func NewEvaluator(weights Weights) *Evaluator {
	return &Evaluator{weights: weights}
}

// Evaluate computes the metrics of an already classified candidate
// (kind, ramp elevations and extra length must be filled in).
func (ev *Evaluator) Evaluate(cand *datastructure.Candidate) datastructure.Metrics {
	planar := cand.Length()
	length := planar + cand.ExtraLength

	var avgGrade float64
	var elevationCost float64
	if cand.Kind == datastructure.Surface {
		avgGrade = surfaceAvgGrade(cand, planar)
	} else {
		// leveled spans ride the ramp, not the terrain
		if planar > 0 {
			avgGrade = math.Abs(cand.EndElevation-cand.StartElevation) / planar
		}
		elevationCost = planar * meanRampDepth(cand)
	}

	curvature := geo.AngleDiff(cand.Heading, cand.PreferredHeading).Radians()

	total := ev.weights.Length*length +
		ev.weights.Grade*avgGrade +
		ev.weights.ElevationCost*elevationCost +
		ev.weights.Curvature*curvature

	return datastructure.Metrics{
		Length:           length,
		AvgGrade:         avgGrade,
		ElevationCost:    elevationCost,
		CurvaturePenalty: curvature,
		TotalScore:       total,
	}
}

func surfaceAvgGrade(cand *datastructure.Candidate, planar float64) float64 {
	if len(cand.Profile) < 2 || planar == 0 {
		return 0
	}
	step := planar / float64(len(cand.Profile)-1)
	sum := 0.0
	for i := 1; i < len(cand.Profile); i++ {
		sum += math.Abs(cand.Profile[i].Elevation-cand.Profile[i-1].Elevation) / step
	}
	return sum / float64(len(cand.Profile)-1)
}

// meanRampDepth is the average required fill/cut depth between the leveled
// ramp and the terrain along the span.
func meanRampDepth(cand *datastructure.Candidate) float64 {
	if len(cand.Profile) < 2 {
		return 0
	}
	sum := 0.0
	for i, pp := range cand.Profile {
		t := float64(i) / float64(len(cand.Profile)-1)
		ramp := cand.StartElevation + (cand.EndElevation-cand.StartElevation)*t
		sum += math.Abs(pp.Elevation - ramp)
	}
	return sum / float64(len(cand.Profile))
}
