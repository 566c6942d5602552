package domain

import (
	"math"

	"github.com/paulmach/orb"
)

// Rect builds an axis-aligned bound from an origin and extent.
func Rect(x, y, w, h float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{x, y},
		Max: orb.Point{x + w, y + h},
	}
}

// ValidRect reports whether a bound has finite coordinates and positive extent.
func ValidRect(b orb.Bound) bool {
	if !FinitePoint(b.Min) || !FinitePoint(b.Max) {
		return false
	}
	return b.Max[0]-b.Min[0] > 0 && b.Max[1]-b.Min[1] > 0
}

// FinitePoint reports whether both coordinates are finite numbers.
func FinitePoint(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsInf(p[0], 0) &&
		!math.IsNaN(p[1]) && !math.IsInf(p[1], 0)
}

// Dist returns the euclidean distance between two points.
func Dist(a, b orb.Point) float64 {
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}

// AngleTo returns the heading from one point toward another.
func AngleTo(from, to orb.Point) float64 {
	return math.Atan2(to[1]-from[1], to[0]-from[0])
}

// NormalizeAngle wraps an angle into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// AngleDiff returns the signed shortest rotation from one angle to another.
func AngleDiff(from, to float64) float64 {
	return NormalizeAngle(to - from)
}

// PointAt advances a point along a heading by the given distance.
func PointAt(p orb.Point, heading, dist float64) orb.Point {
	return orb.Point{
		p[0] + math.Cos(heading)*dist,
		p[1] + math.Sin(heading)*dist,
	}
}

// ClosestPointOnBound clamps a point onto a bound. For points inside the
// bound the point itself is returned.
func ClosestPointOnBound(b orb.Bound, p orb.Point) orb.Point {
	return orb.Point{
		clamp(p[0], b.Min[0], b.Max[0]),
		clamp(p[1], b.Min[1], b.Max[1]),
	}
}

// BoundArea returns the area of a bound.
func BoundArea(b orb.Bound) float64 {
	return (b.Max[0] - b.Min[0]) * (b.Max[1] - b.Min[1])
}

// BoundAspect returns the width/height ratio of a bound. Degenerate bounds
// report an aspect of 1.
func BoundAspect(b orb.Bound) float64 {
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	if w <= 0 || h <= 0 {
		return 1
	}
	return w / h
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
