package earcut

import (
	"math"
	"sort"
)

// eliminateHoles links every hole ring into the outer ring through a
// bridge and returns a node on the merged ring.
func (a *arena) eliminateHoles(data []float64, holes []int, outer int32, dim int) int32 {
	queue := make([]int32, 0, len(holes))
	for i, h := range holes {
		start := h * dim
		end := len(data)
		if i < len(holes)-1 {
			end = holes[i+1] * dim
		}
		list := a.linkedList(data, start, end, dim, false)
		if list == nilNode {
			continue
		}
		if list == a.next(list) {
			a.nodes[list].steiner = true
		}
		queue = append(queue, a.leftmost(list))
	}

	// Process holes left to right so bridges never cross a hole that has
	// not been merged yet.
	sort.SliceStable(queue, func(i, j int) bool {
		ni, nj := &a.nodes[queue[i]], &a.nodes[queue[j]]
		if ni.x != nj.x {
			return ni.x < nj.x
		}
		return ni.y < nj.y
	})

	for _, h := range queue {
		outer = a.eliminateHole(h, outer)
	}
	return outer
}

// eliminateHole bridges hole into outer. A hole with no visible bridge is
// dropped and outer is returned unchanged.
func (a *arena) eliminateHole(hole, outer int32) int32 {
	b := a.findHoleBridge(hole, outer)
	if b == nilNode {
		return outer
	}
	reverse := a.bridge(b, hole)

	// Filter collinear points around the cuts.
	a.filterPoints(reverse, a.next(reverse))
	return a.filterPoints(b, a.next(b))
}

// findHoleBridge casts a ray leftwards from the hole's leftmost vertex and
// returns the outer vertex to connect to, or nilNode.
func (a *arena) findHoleBridge(hole, outer int32) int32 {
	hx, hy := a.nodes[hole].x, a.nodes[hole].y
	qx := math.Inf(-1)
	m := nilNode

	// Find the segment intersected by the ray closest to the hole point.
	p := outer
	for {
		n := a.nodes[p]
		nn := a.nodes[n.next]
		if hy <= n.y && hy >= nn.y && nn.y != n.y {
			x := n.x + (hy-n.y)*(nn.x-n.x)/(nn.y-n.y)
			if x <= hx && x > qx {
				qx = x
				if n.x < nn.x {
					m = p
				} else {
					m = n.next
				}
				if x == hx {
					// The hole touches the outer segment.
					return m
				}
			}
		}
		p = n.next
		if p == outer {
			break
		}
	}
	if m == nilNode {
		return nilNode
	}

	// Look for vertices inside the triangle hole point, intersection,
	// segment endpoint. The one with the smallest angle to the ray wins.
	stop := m
	mx, my := a.nodes[m].x, a.nodes[m].y
	tanMin := math.Inf(1)

	p = m
	for {
		n := a.nodes[p]
		var inTri bool
		if hy < my {
			inTri = pointInTriangle(hx, hy, mx, my, qx, hy, n.x, n.y)
		} else {
			inTri = pointInTriangle(qx, hy, mx, my, hx, hy, n.x, n.y)
		}
		if hx >= n.x && n.x >= mx && hx != n.x && inTri {
			tan := math.Abs(hy-n.y) / (hx - n.x)
			if a.locallyInside(p, hole) {
				mn := a.nodes[m]
				if tan < tanMin || (tan == tanMin && (n.x > mn.x || (n.x == mn.x && a.sectorContainsSector(m, p)))) {
					m = p
					tanMin = tan
				}
			}
		}
		p = n.next
		if p == stop {
			break
		}
	}
	return m
}

// sectorContainsSector reports whether the sector of m contains the
// sector of p. Used to break ties between coincident bridge candidates.
func (a *arena) sectorContainsSector(m, p int32) bool {
	nm, np := a.nodes[m], a.nodes[p]
	return a.area(nm.prev, m, np.prev) < 0 && a.area(np.next, m, nm.next) < 0
}

// leftmost returns the vertex of the ring with the smallest x, breaking
// ties by y.
func (a *arena) leftmost(start int32) int32 {
	p, left := start, start
	for {
		n, l := &a.nodes[p], &a.nodes[left]
		if n.x < l.x || (n.x == l.x && n.y < l.y) {
			left = p
		}
		p = n.next
		if p == start {
			return left
		}
	}
}
