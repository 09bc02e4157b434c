package constraint_test

import (
	"testing"

	"github.com/lintang-b-s/terraroad/pkg/datastructure"
	"github.com/lintang-b-s/terraroad/pkg/engine/constraint"
	"github.com/lintang-b-s/terraroad/pkg/terrain"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// candidateOver builds a straight west-east candidate with the given sampled
// terrain elevations spread evenly along its length.
func candidateOver(length float64, elevations []float64) *datastructure.Candidate {
	start := r2.Point{X: 0, Y: 0}
	end := r2.Point{X: length, Y: 0}
	profile := make([]terrain.ProfilePoint, len(elevations))
	for i, e := range elevations {
		t := float64(i) / float64(len(elevations)-1)
		profile[i] = terrain.ProfilePoint{
			Pos:       start.Add(end.Sub(start).Mul(t)),
			Elevation: e,
			Defined:   true,
		}
	}
	return &datastructure.Candidate{
		Start:          start,
		End:            end,
		StartElevation: elevations[0],
		Profile:        profile,
	}
}

func newChecker() *constraint.Checker {
	// surface 0.15, engineered 0.08, capacity 15, clearance 1
	return constraint.NewChecker(0.15, 0.08, 15, 1)
}

func TestClassifySurface(t *testing.T) {
	tests := []struct {
		name       string
		elevations []float64
	}{
		{"flat", []float64{5, 5, 5, 5, 5, 5, 5}},
		{"gentle slope", []float64{0, 0.5, 1.0, 1.5, 2.0, 2.5, 3.0}},
		{"rolling within limit", []float64{0, 0.6, 0.1, 0.7, 0.2, 0.8, 0.3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newChecker().Classify(candidateOver(30, tt.elevations))
			require.Equal(t, constraint.ResultSurface, got.Result)
			assert.Equal(t, datastructure.Surface, got.Kind)
			assert.Zero(t, got.ExtraLength)
		})
	}
}

func TestClassifyBridgeOverValley(t *testing.T) {
	got := newChecker().Classify(candidateOver(30, []float64{10, 10, 0, 0, 0, 10, 10}))
	require.Equal(t, constraint.ResultLeveled, got.Result)
	assert.Equal(t, datastructure.Bridge, got.Kind)
	assert.InDelta(t, 10.0, got.RampStart, 1e-9)
	assert.InDelta(t, 10.0, got.RampEnd, 1e-9)
	assert.Zero(t, got.ExtraLength) // level ramp adds no length
}

func TestClassifyTunnelThroughRidge(t *testing.T) {
	got := newChecker().Classify(candidateOver(30, []float64{0, 0, 12, 12, 12, 0, 0}))
	require.Equal(t, constraint.ResultLeveled, got.Result)
	assert.Equal(t, datastructure.Tunnel, got.Kind)
}

func TestClassifyRampedBridgeAddsLength(t *testing.T) {
	// terrain climbs 2 over 30 with a valley in between; ramp follows the climb
	got := newChecker().Classify(candidateOver(30, []float64{10, 10, 0, 0, 0, 12, 12}))
	require.Equal(t, constraint.ResultLeveled, got.Result)
	assert.Equal(t, datastructure.Bridge, got.Kind)
	assert.InDelta(t, 12.0, got.RampEnd, 1e-9)
	assert.Greater(t, got.ExtraLength, 0.0)
}

func TestClassifyRejections(t *testing.T) {
	tests := []struct {
		name       string
		elevations []float64
		want       constraint.RejectReason
	}{
		{
			// a 50-unit step the engineered ramp cannot reach back down to
			name:       "cliff exceeds leveling capacity",
			elevations: []float64{0, 0, 0, 50, 50, 50, 50},
			want:       constraint.ReasonSlopeExceeded,
		},
		{
			name:       "part bridge part tunnel",
			elevations: []float64{10, 10, 0, 10, 25, 10, 10},
			want:       constraint.ReasonMixedLeveling,
		},
		{
			// jagged but hugging the ramp: nothing to bridge or tunnel
			name:       "jagged within clearance",
			elevations: []float64{0, 0.9, 0, 0.9, 0, 0.9, 0},
			want:       constraint.ReasonSlopeExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newChecker().Classify(candidateOver(30, tt.elevations))
			require.Equal(t, constraint.ResultRejected, got.Result)
			assert.Equal(t, tt.want, got.Reason)
		})
	}
}

func TestClassifyUndefinedTerrain(t *testing.T) {
	cand := candidateOver(30, []float64{0, 0, 0, 0, 0, 0, 0})
	cand.Profile[3].Defined = false
	got := newChecker().Classify(cand)
	require.Equal(t, constraint.ResultRejected, got.Result)
	assert.Equal(t, constraint.ReasonTerrainUndefined, got.Reason)
}

func TestClassifyDegenerate(t *testing.T) {
	cand := candidateOver(30, []float64{0, 0, 0})
	cand.End = cand.Start
	got := newChecker().Classify(cand)
	require.Equal(t, constraint.ResultRejected, got.Result)
	assert.Equal(t, constraint.ReasonGeometryDegenerate, got.Reason)
}
