// Package spine widens polylines into left/right rails and builds
// oriented frames along 3D spines.
//
// Every function works on its own local scratch values and is safe to call
// from multiple goroutines.
package spine

import (
	"math"

	"github.com/chazu/polymesh/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// parallelEpsilon bounds the normalized cross product below which two lines
// are treated as parallel.
const parallelEpsilon = 1e-12

// LeftOnLine reports whether p lies strictly to the left of the directed
// line a->b in the XY plane.
func LeftOnLine(p, a, b geom.Point) bool {
	return (a.Y-b.Y)*p.X+(b.X-a.X)*p.Y+a.X*b.Y-b.X*a.Y > 0
}

// TranslateLine returns the segment a-b shifted by d to its left and to its
// right in the XY plane. ok is false for a zero-length segment.
func TranslateLine(a, b geom.Point, d float64) (left, right [2]geom.Point, ok bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return left, right, false
	}
	heading := math.Atan2(dy, dx)
	lx, ly := math.Cos(heading+math.Pi/2)*d, math.Sin(heading+math.Pi/2)*d
	rx, ry := math.Cos(heading-math.Pi/2)*d, math.Sin(heading-math.Pi/2)*d
	left = [2]geom.Point{geom.Pt(a.X+lx, a.Y+ly), geom.Pt(b.X+lx, b.Y+ly)}
	right = [2]geom.Point{geom.Pt(a.X+rx, a.Y+ry), geom.Pt(b.X+rx, b.Y+ry)}
	return left, right, true
}

// LineIntersection returns where the infinite lines p1-p2 and p3-p4 cross
// in the XY plane. ok is false when the lines are parallel or either is
// degenerate.
func LineIntersection(p1, p2, p3, p4 geom.Point) (geom.Point, bool) {
	d1x, d1y := p2.X-p1.X, p2.Y-p1.Y
	d2x, d2y := p4.X-p3.X, p4.Y-p3.Y
	den := d1x*d2y - d1y*d2x
	scale := math.Hypot(d1x, d1y) * math.Hypot(d2x, d2y)
	if scale == 0 || math.Abs(den) <= parallelEpsilon*scale {
		return geom.Point{}, false
	}
	t := ((p3.X-p1.X)*d2y - (p3.Y-p1.Y)*d2x) / den
	return geom.Pt(p1.X+t*d1x, p1.Y+t*d1y), true
}

// planarAngle returns the signed angle in radians from u to v in the XY
// plane, in (-pi, pi].
func planarAngle(u, v geom.Point) float64 {
	return math.Atan2(u.X*v.Y-u.Y*v.X, u.X*v.X+u.Y*v.Y)
}

func samePlanar(a, b geom.Point) bool {
	return a.X == b.X && a.Y == b.Y
}

func planarDistance(a, b geom.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// unit normalizes v, returning the zero vector for zero input.
func unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

func isZero(v r3.Vec) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}
