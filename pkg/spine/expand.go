package spine

import (
	"fmt"
	"math"

	"github.com/chazu/polymesh/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// reversalTolerance is how close, in radians, two headings must be to a
// half turn to count as the line doubling back on itself.
const reversalTolerance = 1e-4 * math.Pi / 180

// ExpandOptions controls polyline widening.
type ExpandOptions struct {
	// Width is the full distance between the two rails.
	Width float64

	// CutCorner bevels miters whose tip lies further than Width from the
	// spine point.
	CutCorner bool
}

// Ribbon is the result of widening a polyline.
type Ribbon struct {
	// Offsets holds the raw offset pair computed for each input point.
	Offsets [][2]geom.Point

	// Left and Right are the rails. They have one point per input point,
	// plus one extra for every bevelled corner.
	Left, Right geom.Polyline

	// Degraded counts points that took the offset pair of a different
	// point, either because no distinct neighbour gave them a direction or
	// because their offset lines never met. A duplicate point sharing its
	// twin's pair is not counted.
	Degraded int
}

// Err reports ErrUnresolvedIntersection when any rail point was borrowed
// from a different input point.
func (r *Ribbon) Err() error {
	if r.Degraded == 0 {
		return nil
	}
	return fmt.Errorf("spine: %d offset pairs reused: %w", r.Degraded, geom.ErrUnresolvedIntersection)
}

// Expand widens line into left and right rails using miter joins.
//
// Points that cannot be offset on their own reuse the previous pair. When
// that happens before any pair exists, the first pair computed later is
// copied back to the front, so the rails never come out shorter than the
// input.
func Expand(line geom.Polyline, opts ExpandOptions) (*Ribbon, error) {
	n := len(line)
	if n < 2 {
		return nil, fmt.Errorf("spine: expand needs 2 points, got %d: %w", n, geom.ErrInsufficientPoints)
	}
	radius := math.Max(0, opts.Width) / 2

	rb := &Ribbon{
		Offsets: make([][2]geom.Point, 0, n),
		Left:    make(geom.Polyline, 0, n),
		Right:   make(geom.Polyline, 0, n),
	}
	var (
		pending []geom.Point // points waiting for the first pair
		source  geom.Point   // input point that owns the last pair
	)

	// reuse copies the last pair, or defers the point until one exists.
	reuse := func(cur geom.Point) {
		if len(rb.Offsets) == 0 {
			pending = append(pending, cur)
			return
		}
		if !samePlanar(source, cur) {
			rb.Degraded++
		}
		rb.Offsets = append(rb.Offsets, rb.Offsets[len(rb.Offsets)-1])
		rb.Left = append(rb.Left, rb.Left[len(rb.Left)-1])
		rb.Right = append(rb.Right, rb.Right[len(rb.Right)-1])
	}

	var prevLeft, prevRight [2]geom.Point
	havePrev := false

	for i := 0; i < n; i++ {
		cur := line[i]
		end := i == 0 || i == n-1

		var p1, p2 geom.Point
		if i == n-1 {
			p1, p2 = line[n-2], line[n-1]
			if samePlanar(p1, p2) {
				for j := n - 2; j >= 0; j-- {
					if !samePlanar(line[j], cur) {
						p1 = line[j]
						break
					}
				}
			}
		} else {
			p1, p2 = line[i], line[i+1]
			if samePlanar(p1, p2) {
				for j := i + 1; j < n; j++ {
					if !samePlanar(line[j], cur) {
						p2 = line[j]
						break
					}
				}
			}
			if samePlanar(p1, p2) && i > 0 {
				// Only duplicates follow: offset like the last point.
				for j := i - 1; j >= 0; j-- {
					if !samePlanar(line[j], cur) {
						p1, p2, end = line[j], cur, true
						break
					}
				}
			}
		}
		if samePlanar(p1, p2) {
			reuse(cur)
			continue
		}

		heading := math.Atan2(p2.Y-p1.Y, p2.X-p1.X)
		var p0 geom.Point
		hasP0 := false
		var rAngle float64

		if end {
			rAngle = heading - math.Pi/2
		} else {
			p0 = line[i-1]
			if samePlanar(p0, p2) || samePlanar(p0, p1) {
				for j := i - 1; j >= 0; j-- {
					if !samePlanar(line[j], p2) && !samePlanar(line[j], p1) {
						p0 = line[j]
						break
					}
				}
			}
			if samePlanar(p0, p2) || samePlanar(p0, p1) {
				reuse(cur)
				continue
			}
			hasP0 = true

			inHeading := math.Atan2(p1.Y-p0.Y, p1.X-p0.X)
			if math.Abs(math.Abs(inHeading-heading)-math.Pi) <= reversalTolerance {
				// The line doubles back; offset perpendicular to it.
				rAngle = heading - math.Pi/2
			} else {
				v := planarAngle(r3.Sub(p0, p1), r3.Sub(p2, p1))
				rAngle = heading - v/2
			}
		}

		probe := geom.Pt(cur.X+math.Cos(rAngle), cur.Y+math.Sin(rAngle))
		leftLine, rightLine, _ := TranslateLine(p1, p2, radius)
		op1, ok1 := LineIntersection(leftLine[0], leftLine[1], cur, probe)
		op2, ok2 := LineIntersection(rightLine[0], rightLine[1], cur, probe)
		if !ok1 || !ok2 {
			reuse(cur)
			continue
		}
		op1.Z, op2.Z = cur.Z, cur.Z
		rb.Offsets = append(rb.Offsets, [2]geom.Point{op1, op2})
		source = cur

		cut := false
		if opts.CutCorner && hasP0 && havePrev {
			limit := radius * 2
			if planarDistance(cur, op1) > limit || planarDistance(cur, op2) > limit {
				cut = bevel(rb, cur, p0, p1, p2, op1, op2, radius, prevLeft, prevRight, leftLine, rightLine)
			}
		}
		if !cut {
			if LeftOnLine(op1, p1, p2) {
				rb.Left = append(rb.Left, op1)
				rb.Right = append(rb.Right, op2)
			} else {
				rb.Left = append(rb.Left, op2)
				rb.Right = append(rb.Right, op1)
			}
		}

		prevLeft, prevRight = leftLine, rightLine
		havePrev = true
	}

	if len(rb.Offsets) == 0 {
		return nil, fmt.Errorf("spine: all %d points coincide: %w", n, geom.ErrDegenerateGeometry)
	}
	if k := len(pending); k > 0 {
		first := line[k]
		for _, p := range pending {
			if !samePlanar(p, first) {
				rb.Degraded++
			}
		}
		rb.Offsets = prepend(rb.Offsets, rb.Offsets[0], k)
		rb.Left = prepend(rb.Left, rb.Left[0], k)
		rb.Right = prepend(rb.Right, rb.Right[0], k)
	}
	return rb, nil
}

// bevel replaces the long side of an over-long miter with two points on a
// line perpendicular to the miter, and duplicates the short side's point.
// It returns false if the bevel line cannot be placed.
func bevel(rb *Ribbon, cur, p0, p1, p2, op1, op2 geom.Point, radius float64,
	prevLeft, prevRight, leftLine, rightLine [2]geom.Point) bool {
	cutPoint, other := op1, op2
	if planarDistance(op1, p0) < planarDistance(op2, p0) {
		cutPoint, other = op2, op1
	}

	cutAngle := math.Atan2(cutPoint.Y-cur.Y, cutPoint.X-cur.X)
	v1 := geom.Pt(cur.X+math.Cos(cutAngle)*radius, cur.Y+math.Sin(cutAngle)*radius)
	v2 := geom.Pt(v1.X+math.Cos(cutAngle+math.Pi/2), v1.Y+math.Sin(cutAngle+math.Pi/2))

	preLine, curLine := prevLeft, leftLine
	onLeft := LeftOnLine(cutPoint, p1, p2)
	if !onLeft {
		preLine, curLine = prevRight, rightLine
	}

	c1, ok1 := LineIntersection(preLine[0], preLine[1], v1, v2)
	c2, ok2 := LineIntersection(curLine[0], curLine[1], v1, v2)
	if !ok1 || !ok2 {
		return false
	}
	c1.Z, c2.Z = cur.Z, cur.Z

	if onLeft {
		rb.Left = append(rb.Left, c1, c2)
		rb.Right = append(rb.Right, other, other)
	} else {
		rb.Right = append(rb.Right, c1, c2)
		rb.Left = append(rb.Left, other, other)
	}
	return true
}

func prepend[T any](s []T, v T, count int) []T {
	out := make([]T, 0, len(s)+count)
	for i := 0; i < count; i++ {
		out = append(out, v)
	}
	return append(out, s...)
}
