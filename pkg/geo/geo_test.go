package geo_test

import (
	"math"
	"testing"

	"github.com/lintang-b-s/terraroad/pkg/geo"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentIntersection(t *testing.T) {
	tests := []struct {
		name           string
		a0, a1, b0, b1 r2.Point
		want           r2.Point
		wantOk         bool
	}{
		{
			name: "parallel lines no intersection",
			a0:   r2.Point{X: 0, Y: 0}, a1: r2.Point{X: 2, Y: 2},
			b0: r2.Point{X: 1, Y: 0}, b1: r2.Point{X: 3, Y: 2},
			wantOk: false,
		},
		{
			name: "collinear overlapping returns none",
			a0:   r2.Point{X: 1, Y: 1}, a1: r2.Point{X: 3, Y: 3},
			b0: r2.Point{X: 2, Y: 2}, b1: r2.Point{X: 4, Y: 4},
			wantOk: false,
		},
		{
			name: "vertical and horizontal crossing",
			a0:   r2.Point{X: 0, Y: 1}, a1: r2.Point{X: 4, Y: 1},
			b0: r2.Point{X: 2, Y: 0}, b1: r2.Point{X: 2, Y: 3},
			want: r2.Point{X: 2, Y: 1}, wantOk: true,
		},
		{
			name: "touching at an endpoint",
			a0:   r2.Point{X: 0, Y: 0}, a1: r2.Point{X: 2, Y: 0},
			b0: r2.Point{X: 2, Y: 0}, b1: r2.Point{X: 2, Y: 2},
			want: r2.Point{X: 2, Y: 0}, wantOk: true,
		},
		{
			name: "completely separate",
			a0:   r2.Point{X: 0, Y: 0}, a1: r2.Point{X: 1, Y: 1},
			b0: r2.Point{X: 2, Y: 2}, b1: r2.Point{X: 3, Y: 3},
			wantOk: false,
		},
		{
			name: "zero length segment",
			a0:   r2.Point{X: 1, Y: 1}, a1: r2.Point{X: 1, Y: 1},
			b0: r2.Point{X: 1, Y: 1}, b1: r2.Point{X: 2, Y: 2},
			wantOk: false,
		},
		{
			name: "oblique crossing",
			a0:   r2.Point{X: 1, Y: 3}, a1: r2.Point{X: 3, Y: 4},
			b0: r2.Point{X: 1, Y: 4}, b1: r2.Point{X: 2, Y: 2},
			want: r2.Point{X: 1.4, Y: 3.2}, wantOk: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := geo.SegmentIntersection(tt.a0, tt.a1, tt.b0, tt.b1)
			require.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.InDelta(t, tt.want.X, got.X, 1e-9)
				assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			}
		})
	}
}

func TestProjectOntoSegment(t *testing.T) {
	proj, ok := geo.ProjectOntoSegment(r2.Point{X: 1, Y: 3}, r2.Point{X: 1, Y: 1}, r2.Point{X: 3, Y: 3})
	require.True(t, ok)
	assert.InDelta(t, 2.0, proj.X, 1e-9)
	assert.InDelta(t, 2.0, proj.Y, 1e-9)

	_, ok = geo.ProjectOntoSegment(r2.Point{X: 1, Y: 3}, r2.Point{X: 1, Y: 1}, r2.Point{X: 1, Y: 2})
	assert.False(t, ok)
}

func TestPointSegmentDistance(t *testing.T) {
	d := geo.PointSegmentDistance(r2.Point{X: 0, Y: 1}, r2.Point{X: -1, Y: 0}, r2.Point{X: 1, Y: 0})
	assert.InDelta(t, 1.0, d, 1e-9)

	// beyond the end, distance to nearest endpoint
	d = geo.PointSegmentDistance(r2.Point{X: 2, Y: 0}, r2.Point{X: -1, Y: 0}, r2.Point{X: 1, Y: 0})
	assert.InDelta(t, 1.0, d, 1e-9)
}

func TestHeadingAndExtend(t *testing.T) {
	h := geo.Heading(r2.Point{X: 0, Y: 0}, r2.Point{X: 0, Y: 2})
	assert.InDelta(t, math.Pi/2, h.Radians(), 1e-9)

	p := geo.Extend(r2.Point{X: 1, Y: 1}, s1.Angle(0), 2)
	assert.InDelta(t, 3.0, p.X, 1e-9)
	assert.InDelta(t, 1.0, p.Y, 1e-9)
}

func TestCrossingAngle(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{"perpendicular", 0, math.Pi / 2, math.Pi / 2},
		{"same direction", 1.0, 1.0, 0},
		{"opposite direction is parallel", 0, math.Pi, 0},
		{"shallow crossing", 0, math.Pi - 0.1, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geo.CrossingAngle(s1.Angle(tt.a), s1.Angle(tt.b))
			assert.InDelta(t, tt.want, got.Radians(), 1e-9)
		})
	}
}
