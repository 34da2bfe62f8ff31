package geom

import "github.com/paulmach/orb"

// FromOrbRing converts an orb ring. Z is zero.
func FromOrbRing(r orb.Ring) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[i] = Pt(p[0], p[1])
	}
	return out
}

// FromOrbPolygon converts an orb polygon, outer ring first.
func FromOrbPolygon(p orb.Polygon) Polygon {
	out := make(Polygon, len(p))
	for i, r := range p {
		out[i] = FromOrbRing(r)
	}
	return out
}

// FromOrbMultiPolygon converts every polygon of mp.
func FromOrbMultiPolygon(mp orb.MultiPolygon) []Polygon {
	out := make([]Polygon, len(mp))
	for i, p := range mp {
		out[i] = FromOrbPolygon(p)
	}
	return out
}

// FromOrbLineString converts an orb line string.
func FromOrbLineString(ls orb.LineString) Polyline {
	out := make(Polyline, len(ls))
	for i, p := range ls {
		out[i] = Pt(p[0], p[1])
	}
	return out
}

// ToOrbPolygon drops Z and converts p to an orb polygon.
func ToOrbPolygon(p Polygon) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		ring := make(orb.Ring, len(r))
		for j, pt := range r {
			ring[j] = orb.Point{pt.X, pt.Y}
		}
		out[i] = ring
	}
	return out
}

// Bound returns the planar bounding box of all polygons.
func Bound(polys []Polygon) orb.Bound {
	var b orb.Bound
	first := true
	for _, p := range polys {
		if p.PointCount() == 0 {
			continue
		}
		pb := ToOrbPolygon(p).Bound()
		if first {
			b = pb
			first = false
			continue
		}
		b = b.Union(pb)
	}
	return b
}
