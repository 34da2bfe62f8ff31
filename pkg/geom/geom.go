package geom

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point is a 2D or 3D coordinate. Planar inputs leave Z at zero.
type Point = r3.Vec

// Pt returns a planar point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Pt3 returns a spatial point.
func Pt3(x, y, z float64) Point {
	return Point{X: x, Y: y, Z: z}
}

// Ring is a closed loop of points. The closing point may or may not repeat
// the first one on input; normalized rings never repeat it.
type Ring []Point

// Polyline is an open sequence of points.
type Polyline []Point

// Polygon is an outer ring followed by zero or more hole rings.
type Polygon []Ring

// samePlanar reports whether a and b share x and y.
func samePlanar(a, b Point) bool {
	return a.X == b.X && a.Y == b.Y
}

// Closed reports whether the last point of r repeats the first.
func (r Ring) Closed() bool {
	return len(r) > 1 && samePlanar(r[0], r[len(r)-1])
}

// Clone returns a copy of r.
func (r Ring) Clone() Ring {
	return append(Ring(nil), r...)
}

// Open returns a copy of r without the repeated closing point.
func (r Ring) Open() Ring {
	if r.Closed() {
		return append(Ring(nil), r[:len(r)-1]...)
	}
	return r.Clone()
}

// Reversed returns a reversed copy of r.
func (r Ring) Reversed() Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// SignedArea returns the shoelace area of r. Positive means
// counter-clockwise with the y axis pointing up.
func (r Ring) SignedArea() float64 {
	n := len(r)
	var sum float64
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		sum += (r[j].X - r[i].X) * (r[i].Y + r[j].Y)
	}
	return sum / 2
}

// IsClockwise reports whether r winds clockwise with the y axis up.
// Outer boundaries are expected clockwise and holes counter-clockwise.
func IsClockwise(r Ring) bool {
	n := len(r)
	if n < 3 {
		return false
	}
	var sum float64
	for i := 0; i < n; i++ {
		prev, cur := r[(i+n-1)%n], r[i]
		sum += (cur.X - prev.X) * (cur.Y + prev.Y)
	}
	return sum > 0
}

// NormalizeRing returns an open copy of r oriented for its role: clockwise
// when outer is true, counter-clockwise otherwise.
func NormalizeRing(r Ring, outer bool) Ring {
	out := r.Open()
	if IsClockwise(out) != outer {
		out = out.Reversed()
	}
	return out
}

// Normalize returns a copy of p with every ring opened and oriented.
func (p Polygon) Normalize() Polygon {
	out := make(Polygon, len(p))
	for i, r := range p {
		out[i] = NormalizeRing(r, i == 0)
	}
	return out
}

// PointCount returns the total number of points over all rings.
func (p Polygon) PointCount() int {
	n := 0
	for _, r := range p {
		n += len(r)
	}
	return n
}

// Validate checks that every ring has at least three distinct points.
// Points are compared on x and y only.
func (p Polygon) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("polygon has no rings: %w", ErrInsufficientPoints)
	}
	for i, r := range p {
		if n := distinctPlanar(r, 3); n < 3 {
			return fmt.Errorf("ring %d has %d distinct points, need 3: %w", i, n, ErrInsufficientPoints)
		}
	}
	return nil
}

// distinctPlanar counts the distinct x,y positions in r, stopping once it
// reaches limit.
func distinctPlanar(r Ring, limit int) int {
	seen := make([]Point, 0, limit)
outer:
	for _, pt := range r {
		for _, s := range seen {
			if samePlanar(s, pt) {
				continue outer
			}
		}
		if seen = append(seen, pt); len(seen) == limit {
			break
		}
	}
	return len(seen)
}

// Flatten writes the x,y coordinates of p into a flat slice with stride 2
// and returns the vertex offsets where each hole starts.
func Flatten(p Polygon) (data []float64, holes []int) {
	data = make([]float64, 0, p.PointCount()*2)
	for i, r := range p {
		if i > 0 {
			holes = append(holes, len(data)/2)
		}
		for _, pt := range r {
			data = append(data, pt.X, pt.Y)
		}
	}
	return data, holes
}

// Clone returns a copy of l.
func (l Polyline) Clone() Polyline {
	return append(Polyline(nil), l...)
}

// Length returns the planar-agnostic arc length of l.
func (l Polyline) Length() float64 {
	var d float64
	for i := 1; i < len(l); i++ {
		d += r3.Norm(r3.Sub(l[i], l[i-1]))
	}
	return d
}

// Distances returns the cumulative arc length at each point of l.
func (l Polyline) Distances() []float64 {
	out := make([]float64, len(l))
	for i := 1; i < len(l); i++ {
		out[i] = out[i-1] + r3.Norm(r3.Sub(l[i], l[i-1]))
	}
	return out
}
