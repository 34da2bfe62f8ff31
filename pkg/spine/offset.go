package spine

import (
	"math"

	"github.com/chazu/polymesh/pkg/geom"
)

// arcStep is the angular step between points on an outer join.
const arcStep = math.Pi / 8

type offsetSegment struct {
	angle    float64
	original [2]geom.Point
	offset   [2]geom.Point
}

// Offset returns line shifted sideways by distance. Positive distances
// move it to the left of the direction of travel. Outer corners are
// joined with circular arcs around the original vertex and inner corners
// with the intersection of the shifted segments. Z is carried along.
func Offset(line geom.Polyline, distance float64) geom.Polyline {
	if distance == 0 {
		return line.Clone()
	}

	segs := make([]offsetSegment, 0, len(line))
	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		if samePlanar(a, b) {
			continue
		}
		angle := math.Atan2(a.Y-b.Y, a.X-b.X) - math.Pi/2
		segs = append(segs, offsetSegment{
			angle:    angle,
			original: [2]geom.Point{a, b},
			offset:   [2]geom.Point{shift(a, distance, angle), shift(b, distance, angle)},
		})
	}
	if len(segs) == 0 {
		return geom.Polyline{}
	}

	out := geom.Polyline{segs[0].offset[0]}
	for i := 1; i < len(segs); i++ {
		out = append(out, join(segs[i-1], segs[i], distance)...)
	}
	return append(out, segs[len(segs)-1].offset[1])
}

func shift(p geom.Point, dist, heading float64) geom.Point {
	return geom.Pt3(p.X+dist*math.Cos(heading), p.Y+dist*math.Sin(heading), p.Z)
}

// join connects two consecutive offset segments.
func join(s1, s2 offsetSegment, distance float64) []geom.Point {
	if s1.angle == s2.angle {
		return []geom.Point{s1.offset[1]}
	}

	signed := segmentAngle(s1.offset[0], s1.offset[1], s2.offset[0], s2.offset[1])
	if signed*distance > 0 && signed*segmentAngle(s1.offset[0], s1.offset[1], s1.offset[0], s2.offset[1]) > 0 {
		p, ok := LineIntersection(s1.offset[0], s1.offset[1], s2.offset[0], s2.offset[1])
		if !ok {
			return nil
		}
		p.Z = interpolateZ(s1.offset[0], s1.offset[1], p)
		return []geom.Point{p}
	}

	center := s1.original[1]
	right := distance > 0
	start, end := s1.angle, s2.angle
	if right {
		start, end = end, start
	}
	if end < start {
		end += 2 * math.Pi
	}

	var pts []geom.Point
	for k := 0; start+float64(k)*arcStep < end; k++ {
		pts = append(pts, shift(center, distance, start+float64(k)*arcStep))
	}
	pts = append(pts, shift(center, distance, end))
	if right {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return pts
}

// segmentAngle returns the signed angle from segment a0-a1 to b0-b1.
func segmentAngle(a0, a1, b0, b1 geom.Point) float64 {
	ax, ay := a1.X-a0.X, a1.Y-a0.Y
	bx, by := b1.X-b0.X, b1.Y-b0.Y
	return math.Atan2(ax*by-ay*bx, ax*bx+ay*by)
}

// interpolateZ linearly interpolates z along p1-p2 at the planar distance
// of p from p1.
func interpolateZ(p1, p2, p geom.Point) float64 {
	total := planarDistance(p1, p2)
	if total == 0 {
		return p1.Z
	}
	return p1.Z + (p2.Z-p1.Z)*planarDistance(p1, p)/total
}
