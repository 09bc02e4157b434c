package geo

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
)

// Heading returns the direction of the vector from->to measured
// counter-clockwise from the positive x axis.
func Heading(from, to r2.Point) s1.Angle {
	return s1.Angle(math.Atan2(to.Y-from.Y, to.X-from.X))
}

// Extend returns the point reached by walking dist from p along heading.
func Extend(p r2.Point, heading s1.Angle, dist float64) r2.Point {
	return r2.Point{
		X: p.X + dist*math.Cos(heading.Radians()),
		Y: p.Y + dist*math.Sin(heading.Radians()),
	}
}

// NormalizeAngle folds an angle into (-pi, pi].
func NormalizeAngle(a s1.Angle) s1.Angle {
	rad := math.Mod(a.Radians(), 2*math.Pi)
	if rad > math.Pi {
		rad -= 2 * math.Pi
	} else if rad <= -math.Pi {
		rad += 2 * math.Pi
	}
	return s1.Angle(rad)
}

// AngleDiff returns the absolute difference between two headings,
// folded into [0, pi].
func AngleDiff(a, b s1.Angle) s1.Angle {
	d := NormalizeAngle(a - b)
	if d < 0 {
		d = -d
	}
	return d
}

// CrossingAngle returns the angle between two undirected lines given by
// their headings, folded into [0, pi/2]. Near-parallel segments yield a
// value close to zero regardless of the direction either one was drawn in.
func CrossingAngle(a, b s1.Angle) s1.Angle {
	d := AngleDiff(a, b)
	if d > math.Pi/2 {
		d = math.Pi - d
	}
	return d
}

// SegmentIntersection calculates the intersection point of segments (a0,a1)
// and (b0,b1). Parallel or collinear overlapping segments return no
// intersection even when they touch, the same as treating the overlap as
// degenerate rather than a point crossing.
func SegmentIntersection(a0, a1, b0, b1 r2.Point) (r2.Point, bool) {
	ka := a1.Y - a0.Y
	kb := a0.X - a1.X
	kc := a1.X*a0.Y - a0.X*a1.Y

	r3 := ka*b0.X + kb*b0.Y + kc
	r4 := ka*b1.X + kb*b1.Y + kc
	if r3*r4 > 0 {
		return r2.Point{}, false
	}

	la := b1.Y - b0.Y
	lb := b0.X - b1.X
	lc := b1.X*b0.Y - b0.X*b1.Y

	r1 := la*a0.X + lb*a0.Y + lc
	r2v := la*a1.X + lb*a1.Y + lc
	if r1*r2v > 0 {
		return r2.Point{}, false
	}

	denom := ka*lb - la*kb
	if denom == 0 {
		return r2.Point{}, false
	}

	return r2.Point{
		X: (kb*lc - lb*kc) / denom,
		Y: (la*kc - ka*lc) / denom,
	}, true
}

// ProjectOntoSegment returns the perpendicular projection of p onto the
// segment (a, b). The second return value is false when the projection
// falls outside the segment.
func ProjectOntoSegment(p, a, b r2.Point) (r2.Point, bool) {
	ab := b.Sub(a)
	mag2 := ab.Dot(ab)
	if mag2 == 0 {
		return a, false
	}
	t := p.Sub(a).Dot(ab) / mag2
	if t < 0 || t > 1 {
		return r2.Point{}, false
	}
	return a.Add(ab.Mul(t)), true
}

// PointSegmentDistance returns the distance from p to the segment (a, b).
func PointSegmentDistance(p, a, b r2.Point) float64 {
	if proj, ok := ProjectOntoSegment(p, a, b); ok {
		return proj.Sub(p).Norm()
	}
	return math.Min(a.Sub(p).Norm(), b.Sub(p).Norm())
}

// SegmentSegmentDistance returns the minimum distance between two segments.
// Zero if they intersect.
func SegmentSegmentDistance(a0, a1, b0, b1 r2.Point) float64 {
	if _, ok := SegmentIntersection(a0, a1, b0, b1); ok {
		return 0
	}
	d := PointSegmentDistance(a0, b0, b1)
	d = math.Min(d, PointSegmentDistance(a1, b0, b1))
	d = math.Min(d, PointSegmentDistance(b0, a0, a1))
	return math.Min(d, PointSegmentDistance(b1, a0, a1))
}
