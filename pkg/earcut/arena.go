package earcut

// nilNode marks an absent link.
const nilNode int32 = -1

// node is one vertex of a ring. Links are indices into the owning arena.
type node struct {
	i    int // vertex index in the input coordinate slice
	x, y float64

	prev, next int32

	z            int32
	prevZ, nextZ int32

	steiner bool
}

// arena owns every node of every ring being triangulated. Removing a node
// unlinks it but never frees its slot, so indices stay valid for the
// lifetime of a call.
type arena struct {
	nodes []node

	// z-order hashing parameters; invSize == 0 disables hashing.
	minX, minY, invSize float64
}

func newArena(capacity int) *arena {
	return &arena{nodes: make([]node, 0, capacity)}
}

// at returns a pointer to node n. The pointer is only valid until the next
// insert or bridge call.
func (a *arena) at(n int32) *node {
	return &a.nodes[n]
}

func (a *arena) next(n int32) int32 { return a.nodes[n].next }
func (a *arena) prev(n int32) int32 { return a.nodes[n].prev }

// insert creates a node for vertex i after last and returns its index.
// With last == nilNode the node starts a new single-node ring.
func (a *arena) insert(i int, x, y float64, last int32) int32 {
	idx := int32(len(a.nodes))
	a.nodes = append(a.nodes, node{
		i: i, x: x, y: y,
		prev: idx, next: idx,
		prevZ: nilNode, nextZ: nilNode,
	})
	if last != nilNode {
		nx := a.nodes[last].next
		a.nodes[idx].next = nx
		a.nodes[idx].prev = last
		a.nodes[nx].prev = idx
		a.nodes[last].next = idx
	}
	return idx
}

// remove unlinks n from both its ring and its z-order chain.
func (a *arena) remove(n int32) {
	p := a.nodes[n]
	a.nodes[p.next].prev = p.prev
	a.nodes[p.prev].next = p.next
	if p.prevZ != nilNode {
		a.nodes[p.prevZ].nextZ = p.nextZ
	}
	if p.nextZ != nilNode {
		a.nodes[p.nextZ].prevZ = p.prevZ
	}
}

// bridge connects vertices a and b with a two-way edge. If they belong to
// the same ring it is split in two; if they belong to different rings the
// rings are merged into one. Both endpoints are duplicated so each side of
// the bridge owns its own copy. The returned node is the copy of b, which
// sits on the ring that does not contain the original a.
func (ar *arena) bridge(a, b int32) int32 {
	na, nb := ar.nodes[a], ar.nodes[b]
	a2 := ar.insert(na.i, na.x, na.y, nilNode)
	b2 := ar.insert(nb.i, nb.x, nb.y, nilNode)

	an := na.next
	bp := nb.prev

	ar.nodes[a].next = b
	ar.nodes[b].prev = a

	ar.nodes[a2].next = an
	ar.nodes[an].prev = a2

	ar.nodes[b2].next = a2
	ar.nodes[a2].prev = b2

	ar.nodes[bp].next = b2
	ar.nodes[b2].prev = bp

	return b2
}

// linkedList builds a ring from data[start:end] wound so that the internal
// ring is counter-clockwise when clockwise is true. It returns the last
// inserted node, or nilNode for an empty range.
func (a *arena) linkedList(data []float64, start, end, dim int, clockwise bool) int32 {
	last := nilNode
	if clockwise == (signedArea(data, start, end, dim) > 0) {
		for i := start; i < end; i += dim {
			last = a.insert(i/dim, data[i], data[i+1], last)
		}
	} else {
		for i := end - dim; i >= start; i -= dim {
			last = a.insert(i/dim, data[i], data[i+1], last)
		}
	}
	if last != nilNode && a.equals(last, a.next(last)) {
		nx := a.next(last)
		a.remove(last)
		last = nx
	}
	return last
}

// filterPoints removes duplicate and collinear vertices between start and
// end, leaving Steiner points alone.
func (a *arena) filterPoints(start, end int32) int32 {
	if start == nilNode {
		return start
	}
	if end == nilNode {
		end = start
	}
	p := start
	for {
		again := false
		n := a.nodes[p]
		if !n.steiner && (a.equals(p, n.next) || a.area(n.prev, p, n.next) == 0) {
			a.remove(p)
			p = n.prev
			end = p
			if p == a.next(p) {
				break
			}
			again = true
		} else {
			p = n.next
		}
		if !again && p == end {
			break
		}
	}
	return end
}

func (a *arena) equals(p, q int32) bool {
	return a.nodes[p].x == a.nodes[q].x && a.nodes[p].y == a.nodes[q].y
}

// area is the doubled signed area of triangle p,q,r. It is negative when
// the triangle turns counter-clockwise.
func (a *arena) area(p, q, r int32) float64 {
	np, nq, nr := &a.nodes[p], &a.nodes[q], &a.nodes[r]
	return (nq.y-np.y)*(nr.x-nq.x) - (nq.x-np.x)*(nr.y-nq.y)
}

// signedArea returns twice the shoelace area of a flat ring, positive for
// counter-clockwise rings.
func signedArea(data []float64, start, end, dim int) float64 {
	var sum float64
	for i, j := start, end-dim; i < end; j, i = i, i+dim {
		sum += (data[j] - data[i]) * (data[i+1] + data[j+1])
	}
	return sum
}

func pointInTriangle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	return (cx-px)*(ay-py) >= (ax-px)*(cy-py) &&
		(ax-px)*(by-py) >= (bx-px)*(ay-py) &&
		(bx-px)*(cy-py) >= (cx-px)*(by-py)
}
