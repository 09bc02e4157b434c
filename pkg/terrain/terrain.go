// Package terrain defines the elevation oracle the road growth engine samples
// while deciding whether a path segment can be built. Implementations must be
// pure functions of position so that generation stays reproducible.
package terrain

import (
	"github.com/golang/geo/r2"
)

// Sample is one terrain observation. Gradient is the local surface gradient
// (d elevation / dx, d elevation / dy).
type Sample struct {
	Elevation float64
	Gradient  r2.Point
}

// Sampler is the terrain oracle contract. The second return value is false
// when the terrain is undefined at p (outside the modeled domain); the
// constraint checker treats undefined terrain as unbuildable.
type Sampler interface {
	SampleAt(p r2.Point) (Sample, bool)
}

// Func adapts a plain function to a Sampler.
type Func func(p r2.Point) (Sample, bool)

func (f Func) SampleAt(p r2.Point) (Sample, bool) {
	return f(p)
}

// Flat returns a sampler with constant elevation everywhere. Mostly useful
// for tests and as a baseline terrain.
func Flat(elevation float64) Sampler {
	return Func(func(p r2.Point) (Sample, bool) {
		return Sample{Elevation: elevation}, true
	})
}

// ProfilePoint is one evenly spaced terrain sample along a proposed segment.
type ProfilePoint struct {
	Pos       r2.Point
	Elevation float64
	Defined   bool
}

// Profile samples the terrain at steps evenly spaced points from a to b,
// endpoints included. steps must be >= 2.
func Profile(s Sampler, a, b r2.Point, steps int) []ProfilePoint {
	if steps < 2 {
		steps = 2
	}
	profile := make([]ProfilePoint, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		pos := a.Add(b.Sub(a).Mul(t))
		sample, ok := s.SampleAt(pos)
		profile[i] = ProfilePoint{Pos: pos, Elevation: sample.Elevation, Defined: ok}
	}
	return profile
}
