// Package earcut triangulates polygons with holes by ear clipping.
//
// Rings are held in an index-based arena rather than as linked pointers.
// Large polygons additionally link their vertices in z-order so the
// point-in-ear test only scans a spatial neighbourhood.
package earcut

import (
	"fmt"
	"math"

	"github.com/chazu/polymesh/pkg/geom"
)

// hashThreshold is the number of vertices above which ears are tested
// through the z-order index.
const hashThreshold = 80

// Triangulate returns vertex index triples covering the polygon described
// by data. data holds dim coordinates per vertex, of which only the first
// two are used. holes lists the vertex offset where each hole ring starts;
// the outer ring starts at 0.
//
// Triangles wind counter-clockwise (y up) regardless of input winding. A
// polygon that collapses to fewer than three usable points yields an empty
// result and no error.
func Triangulate(data []float64, holes []int, dim int) ([]int, error) {
	if err := validate(data, holes, dim); err != nil {
		return nil, err
	}

	outerLen := len(data)
	if len(holes) > 0 {
		outerLen = holes[0] * dim
	}

	a := newArena(len(data)/dim + 4*len(holes) + 8)
	triangles := make([]int, 0, (len(data)/dim)*3)

	outer := a.linkedList(data, 0, outerLen, dim, true)
	if outer == nilNode || a.next(outer) == a.prev(outer) {
		return triangles, nil
	}

	if len(holes) > 0 {
		outer = a.eliminateHoles(data, holes, outer, dim)
	}

	if len(data) > hashThreshold*dim {
		minX, minY := data[0], data[1]
		maxX, maxY := minX, minY
		for i := dim; i < outerLen; i += dim {
			x, y := data[i], data[i+1]
			minX = math.Min(minX, x)
			minY = math.Min(minY, y)
			maxX = math.Max(maxX, x)
			maxY = math.Max(maxY, y)
		}
		a.minX, a.minY = minX, minY
		if size := math.Max(maxX-minX, maxY-minY); size != 0 {
			a.invSize = 32767 / size
		}
	}

	a.earcutLinked(outer, &triangles, 0)
	return triangles, nil
}

func validate(data []float64, holes []int, dim int) error {
	if dim < 2 {
		return fmt.Errorf("earcut: dimension %d below 2: %w", dim, geom.ErrInvalidInput)
	}
	if len(data)%dim != 0 {
		return fmt.Errorf("earcut: %d coordinates not a multiple of dimension %d: %w", len(data), dim, geom.ErrInvalidInput)
	}
	n := len(data) / dim
	last := 0
	for i, h := range holes {
		if h <= last {
			return fmt.Errorf("earcut: hole offset %d at position %d is not increasing: %w", h, i, geom.ErrInvalidInput)
		}
		if h >= n {
			return fmt.Errorf("earcut: hole offset %d exceeds vertex count %d: %w", h, n, geom.ErrInvalidInput)
		}
		last = h
	}
	return nil
}

// earcutLinked clips ears from the ring containing ear, escalating through
// the fallback passes when a full traversal finds none.
func (a *arena) earcutLinked(ear int32, triangles *[]int, pass int) {
	if ear == nilNode {
		return
	}
	if pass == 0 && a.invSize != 0 {
		a.indexCurve(ear)
	}

	stop := ear
	for a.prev(ear) != a.next(ear) {
		prev, next := a.prev(ear), a.next(ear)

		var isEar bool
		if a.invSize != 0 {
			isEar = a.isEarHashed(ear)
		} else {
			isEar = a.isEar(ear)
		}
		if isEar {
			*triangles = append(*triangles, a.nodes[prev].i, a.nodes[ear].i, a.nodes[next].i)
			a.remove(ear)

			// Skipping the next vertex leads to fewer sliver triangles.
			ear = a.next(next)
			stop = ear
			continue
		}

		ear = next
		if ear != stop {
			continue
		}

		switch pass {
		case 0:
			a.earcutLinked(a.filterPoints(ear, nilNode), triangles, 1)
		case 1:
			ear = a.cureLocalIntersections(a.filterPoints(ear, nilNode), triangles)
			a.earcutLinked(ear, triangles, 2)
		case 2:
			a.splitEarcut(ear, triangles)
		}
		break
	}
}

// isEar reports whether ear forms a convex corner with no other vertex of
// the ring inside it.
func (a *arena) isEar(ear int32) bool {
	pa, pc := a.prev(ear), a.next(ear)
	if a.area(pa, ear, pc) >= 0 {
		return false
	}
	na, nb, nc := a.nodes[pa], a.nodes[ear], a.nodes[pc]
	x0, y0, x1, y1 := triangleBounds(na, nb, nc)

	for p := nc.next; p != pa; p = a.next(p) {
		n := &a.nodes[p]
		if n.x >= x0 && n.x <= x1 && n.y >= y0 && n.y <= y1 &&
			pointInTriangle(na.x, na.y, nb.x, nb.y, nc.x, nc.y, n.x, n.y) &&
			a.area(n.prev, p, n.next) >= 0 {
			return false
		}
	}
	return true
}

// isEarHashed is isEar restricted to the z-order range spanned by the
// candidate triangle's bounding box.
func (a *arena) isEarHashed(ear int32) bool {
	pa, pc := a.prev(ear), a.next(ear)
	if a.area(pa, ear, pc) >= 0 {
		return false
	}
	na, nb, nc := a.nodes[pa], a.nodes[ear], a.nodes[pc]
	x0, y0, x1, y1 := triangleBounds(na, nb, nc)

	minZ := a.zOrder(x0, y0)
	maxZ := a.zOrder(x1, y1)

	blocks := func(p int32) bool {
		n := &a.nodes[p]
		return n.x >= x0 && n.x <= x1 && n.y >= y0 && n.y <= y1 &&
			p != pa && p != pc &&
			pointInTriangle(na.x, na.y, nb.x, nb.y, nc.x, nc.y, n.x, n.y) &&
			a.area(n.prev, p, n.next) >= 0
	}

	p := a.nodes[ear].prevZ
	n := a.nodes[ear].nextZ

	// Scan both directions at once while both are in range.
	for p != nilNode && a.nodes[p].z >= minZ && n != nilNode && a.nodes[n].z <= maxZ {
		if blocks(p) {
			return false
		}
		p = a.nodes[p].prevZ
		if blocks(n) {
			return false
		}
		n = a.nodes[n].nextZ
	}
	for p != nilNode && a.nodes[p].z >= minZ {
		if blocks(p) {
			return false
		}
		p = a.nodes[p].prevZ
	}
	for n != nilNode && a.nodes[n].z <= maxZ {
		if blocks(n) {
			return false
		}
		n = a.nodes[n].nextZ
	}
	return true
}

func triangleBounds(a, b, c node) (x0, y0, x1, y1 float64) {
	x0 = math.Min(a.x, math.Min(b.x, c.x))
	y0 = math.Min(a.y, math.Min(b.y, c.y))
	x1 = math.Max(a.x, math.Max(b.x, c.x))
	y1 = math.Max(a.y, math.Max(b.y, c.y))
	return
}

// cureLocalIntersections removes pairs of vertices whose bypassing diagonal
// crosses the diagonal of its neighbours, emitting the triangle between them.
func (a *arena) cureLocalIntersections(start int32, triangles *[]int) int32 {
	p := start
	for {
		pa := a.prev(p)
		pn := a.next(p)
		pb := a.next(pn)

		if !a.equals(pa, pb) && a.intersects(pa, p, pn, pb) &&
			a.locallyInside(pa, pb) && a.locallyInside(pb, pa) {
			*triangles = append(*triangles, a.nodes[pa].i, a.nodes[p].i, a.nodes[pb].i)
			a.remove(p)
			a.remove(pn)
			p = pb
			start = pb
		}
		p = a.next(p)
		if p == start {
			break
		}
	}
	return a.filterPoints(p, nilNode)
}

// splitEarcut looks for any valid diagonal, splits the ring along it and
// triangulates both halves independently.
func (a *arena) splitEarcut(start int32, triangles *[]int) {
	pa := start
	for {
		for pb := a.next(a.next(pa)); pb != a.prev(pa); pb = a.next(pb) {
			if a.nodes[pa].i != a.nodes[pb].i && a.isValidDiagonal(pa, pb) {
				pc := a.bridge(pa, pb)

				pa = a.filterPoints(pa, a.next(pa))
				pc = a.filterPoints(pc, a.next(pc))

				a.earcutLinked(pa, triangles, 0)
				a.earcutLinked(pc, triangles, 0)
				return
			}
		}
		pa = a.next(pa)
		if pa == start {
			return
		}
	}
}

// isValidDiagonal reports whether a diagonal between a and b stays inside
// the ring without crossing any edge.
func (ar *arena) isValidDiagonal(a, b int32) bool {
	na, nb := ar.nodes[a], ar.nodes[b]
	if ar.nodes[na.next].i == nb.i || ar.nodes[na.prev].i == nb.i || ar.intersectsPolygon(a, b) {
		return false
	}
	if ar.locallyInside(a, b) && ar.locallyInside(b, a) && ar.middleInside(a, b) &&
		(ar.area(na.prev, a, nb.prev) != 0 || ar.area(a, nb.prev, b) != 0) {
		return true
	}
	// Zero-length diagonal between coincident vertices.
	return ar.equals(a, b) && ar.area(na.prev, a, na.next) > 0 && ar.area(nb.prev, b, nb.next) > 0
}

// intersects reports whether segment p1-q1 meets segment p2-q2.
func (a *arena) intersects(p1, q1, p2, q2 int32) bool {
	o1 := sign(a.area(p1, q1, p2))
	o2 := sign(a.area(p1, q1, q2))
	o3 := sign(a.area(p2, q2, p1))
	o4 := sign(a.area(p2, q2, q1))

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && a.onSegment(p1, p2, q1) {
		return true
	}
	if o2 == 0 && a.onSegment(p1, q2, q1) {
		return true
	}
	if o3 == 0 && a.onSegment(p2, p1, q2) {
		return true
	}
	if o4 == 0 && a.onSegment(p2, q1, q2) {
		return true
	}
	return false
}

// onSegment reports whether q lies within the bounding box of p-r, given
// that the three are collinear.
func (a *arena) onSegment(p, q, r int32) bool {
	np, nq, nr := &a.nodes[p], &a.nodes[q], &a.nodes[r]
	return nq.x <= math.Max(np.x, nr.x) && nq.x >= math.Min(np.x, nr.x) &&
		nq.y <= math.Max(np.y, nr.y) && nq.y >= math.Min(np.y, nr.y)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func (ar *arena) intersectsPolygon(a, b int32) bool {
	ia, ib := ar.nodes[a].i, ar.nodes[b].i
	p := a
	for {
		n := ar.nodes[p]
		ni := ar.nodes[n.next].i
		if n.i != ia && ni != ia && n.i != ib && ni != ib && ar.intersects(p, n.next, a, b) {
			return true
		}
		p = n.next
		if p == a {
			return false
		}
	}
}

// locallyInside reports whether the diagonal a-b starts into the interior
// of the ring at a.
func (ar *arena) locallyInside(a, b int32) bool {
	na := ar.nodes[a]
	if ar.area(na.prev, a, na.next) < 0 {
		return ar.area(a, b, na.next) >= 0 && ar.area(a, na.prev, b) >= 0
	}
	return ar.area(a, b, na.prev) < 0 || ar.area(a, na.next, b) < 0
}

// middleInside reports whether the midpoint of a-b is inside the ring.
func (ar *arena) middleInside(a, b int32) bool {
	na, nb := ar.nodes[a], ar.nodes[b]
	px, py := (na.x+nb.x)/2, (na.y+nb.y)/2
	inside := false
	p := a
	for {
		n := ar.nodes[p]
		m := ar.nodes[n.next]
		if (n.y > py) != (m.y > py) && m.y != n.y &&
			px < (m.x-n.x)*(py-n.y)/(m.y-n.y)+n.x {
			inside = !inside
		}
		p = n.next
		if p == a {
			return inside
		}
	}
}

// Deviation returns the relative difference between the polygon area and
// the summed triangle area. Zero means the triangulation is exact.
func Deviation(data []float64, holes []int, dim int, triangles []int) float64 {
	outerLen := len(data)
	if len(holes) > 0 {
		outerLen = holes[0] * dim
	}
	polygonArea := math.Abs(signedArea(data, 0, outerLen, dim))
	for i, h := range holes {
		start := h * dim
		end := len(data)
		if i < len(holes)-1 {
			end = holes[i+1] * dim
		}
		polygonArea -= math.Abs(signedArea(data, start, end, dim))
	}

	var trianglesArea float64
	for i := 0; i+2 < len(triangles); i += 3 {
		ai := triangles[i] * dim
		bi := triangles[i+1] * dim
		ci := triangles[i+2] * dim
		trianglesArea += math.Abs(
			(data[ai]-data[ci])*(data[bi+1]-data[ai+1]) -
				(data[ai]-data[bi])*(data[ci+1]-data[ai+1]))
	}

	if polygonArea == 0 && trianglesArea == 0 {
		return 0
	}
	return math.Abs((trianglesArea - polygonArea) / polygonArea)
}
