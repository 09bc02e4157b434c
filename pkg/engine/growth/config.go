package growth

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/lintang-b-s/terraroad/pkg/engine/evaluation"
)

// Config holds every knob of one generation run. Angles are radians, slopes
// are rise over run, distances are in terrain units. Invalid configuration is
// the only caller-visible failure of the engine; everything else is a local
// growth decision.
type Config struct {
	// Seed drives the single random stream of the run. Equal seeds with equal
	// configs and terrain produce identical networks.
	Seed uint64

	SurfaceSlopeLimit    float64 `validate:"gt=0"`
	EngineeredSlopeLimit float64 `validate:"gt=0"`
	LevelingCapacity     float64 `validate:"gt=0"`
	ClearanceThreshold   float64 `validate:"gte=0"`

	SnapDistance     float64 `validate:"gt=0"`
	MinCrossingAngle float64 `validate:"gt=0,lte=1.5707963267948966"`
	// ProximityBand widens intersection probes past a candidate's own length
	// so just-short misses still join the network.
	ProximityBand float64 `validate:"gte=0"`

	SegmentLength    float64 `validate:"gt=0"`
	MinSegmentLength float64 `validate:"gt=0,ltefield=SegmentLength"`
	// RetryShrink scales the segment length down on each retry after every
	// candidate at the current length failed.
	RetryShrink float64 `validate:"gt=0,lt=1"`

	// DirectionFan is the odd number of headings tried per frontier node,
	// spread evenly across +-MaxDeviationAngle around the preferred heading.
	DirectionFan      int     `validate:"gte=1"`
	MaxDeviationAngle float64 `validate:"gte=0,lte=3.141592653589793"`

	BranchProbability float64 `validate:"gte=0,lte=1"`
	BranchBudget      int     `validate:"gte=0"`

	MaxNodes int `validate:"gt=0"`
	MaxEdges int `validate:"gt=0"`

	// SampleCount is the number of evenly spaced terrain samples per
	// candidate, endpoints included.
	SampleCount int `validate:"gte=2"`

	// Weights rank competing candidates at one frontier node. The zero value
	// means evaluation.DefaultWeights.
	Weights evaluation.Weights
}

// DefaultConfig is a reasonable starting point for terrain measured in
// meters: 60 m segments, 8 m snapping, bridges and tunnels up to 40 m of
// clearance.
func DefaultConfig() Config {
	return Config{
		SurfaceSlopeLimit:    0.15,
		EngineeredSlopeLimit: 0.08,
		LevelingCapacity:     40,
		ClearanceThreshold:   2,
		SnapDistance:         8,
		MinCrossingAngle:     20 * math.Pi / 180,
		ProximityBand:        6,
		SegmentLength:        60,
		MinSegmentLength:     15,
		RetryShrink:          0.6,
		DirectionFan:         5,
		MaxDeviationAngle:    0.6,
		BranchProbability:    0.3,
		BranchBudget:         3,
		MaxNodes:             4000,
		MaxEdges:             8000,
		SampleCount:          9,
		Weights:              evaluation.DefaultWeights(),
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("growth config: %w", err)
	}
	if c.DirectionFan%2 == 0 {
		return fmt.Errorf("growth config: DirectionFan must be odd, got %d", c.DirectionFan)
	}
	return nil
}
