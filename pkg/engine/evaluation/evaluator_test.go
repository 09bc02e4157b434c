package evaluation_test

import (
	"math"
	"testing"

	"github.com/lintang-b-s/terraroad/pkg/datastructure"
	"github.com/lintang-b-s/terraroad/pkg/engine/evaluation"
	"github.com/lintang-b-s/terraroad/pkg/terrain"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func surfaceCandidate(length float64, elevations []float64) *datastructure.Candidate {
	start := r2.Point{X: 0, Y: 0}
	end := r2.Point{X: length, Y: 0}
	profile := make([]terrain.ProfilePoint, len(elevations))
	for i, e := range elevations {
		t := float64(i) / float64(len(elevations)-1)
		profile[i] = terrain.ProfilePoint{Pos: start.Add(end.Sub(start).Mul(t)), Elevation: e, Defined: true}
	}
	return &datastructure.Candidate{
		Start:          start,
		End:            end,
		StartElevation: elevations[0],
		EndElevation:   elevations[len(elevations)-1],
		Kind:           datastructure.Surface,
		Profile:        profile,
	}
}

func TestEvaluateFlatSurface(t *testing.T) {
	ev := evaluation.NewEvaluator(evaluation.DefaultWeights())
	m := ev.Evaluate(surfaceCandidate(10, []float64{3, 3, 3, 3, 3}))

	assert.InDelta(t, 10.0, m.Length, 1e-9)
	assert.Zero(t, m.AvgGrade)
	assert.Zero(t, m.ElevationCost)
	assert.Zero(t, m.CurvaturePenalty)
	assert.InDelta(t, 10.0, m.TotalScore, 1e-9) // length weight 1.0 only
}

func TestEvaluateSurfaceGrade(t *testing.T) {
	ev := evaluation.NewEvaluator(evaluation.Weights{Grade: 1})
	m := ev.Evaluate(surfaceCandidate(10, []float64{0, 1, 2}))
	// every interval climbs 1 over 5
	assert.InDelta(t, 0.2, m.AvgGrade, 1e-9)
	assert.InDelta(t, 0.2, m.TotalScore, 1e-9)
}

func TestEvaluateLeveledSpan(t *testing.T) {
	cand := surfaceCandidate(10, []float64{10, 0, 0, 0, 10})
	cand.Kind = datastructure.Bridge
	cand.StartElevation = 10
	cand.EndElevation = 10
	cand.ExtraLength = 0.5

	ev := evaluation.NewEvaluator(evaluation.Weights{Length: 1, ElevationCost: 1})
	m := ev.Evaluate(cand)

	assert.InDelta(t, 10.5, m.Length, 1e-9)
	assert.Zero(t, m.AvgGrade) // level ramp
	// mean depth (0+10+10+10+0)/5 = 6, span 10
	assert.InDelta(t, 60.0, m.ElevationCost, 1e-9)
	assert.InDelta(t, 70.5, m.TotalScore, 1e-9)
}

func TestEvaluateCurvaturePenalty(t *testing.T) {
	cand := surfaceCandidate(10, []float64{0, 0, 0})
	cand.PreferredHeading = s1.Angle(0)
	cand.Heading = s1.Angle(math.Pi / 4)

	ev := evaluation.NewEvaluator(evaluation.Weights{Curvature: 2})
	m := ev.Evaluate(cand)
	assert.InDelta(t, math.Pi/4, m.CurvaturePenalty, 1e-9)
	assert.InDelta(t, math.Pi/2, m.TotalScore, 1e-9)
}

func TestStraighterCandidateWinsOnTies(t *testing.T) {
	ev := evaluation.NewEvaluator(evaluation.DefaultWeights())

	straight := surfaceCandidate(10, []float64{0, 0, 0})
	bent := surfaceCandidate(10, []float64{0, 0, 0})
	bent.Heading = s1.Angle(0.3)

	require.Less(t,
		ev.Evaluate(straight).TotalScore,
		ev.Evaluate(bent).TotalScore)
}
