package earcut

// zOrder maps a point to a 30-bit Morton code within the hashed bounds.
func (a *arena) zOrder(x, y float64) int32 {
	ix := uint32(int32((x - a.minX) * a.invSize))
	iy := uint32(int32((y - a.minY) * a.invSize))
	return int32(interleave(ix) | interleave(iy)<<1)
}

// interleave spreads the low 16 bits of v over the even bit positions.
func interleave(v uint32) uint32 {
	v = (v | v<<8) & 0x00FF00FF
	v = (v | v<<4) & 0x0F0F0F0F
	v = (v | v<<2) & 0x33333333
	v = (v | v<<1) & 0x55555555
	return v
}

// indexCurve assigns z codes to every node of the ring and links the
// nodes into a z-sorted chain.
func (a *arena) indexCurve(start int32) {
	p := start
	for {
		n := &a.nodes[p]
		n.z = a.zOrder(n.x, n.y)
		n.prevZ = n.prev
		n.nextZ = n.next
		p = n.next
		if p == start {
			break
		}
	}

	tail := a.nodes[p].prevZ
	a.nodes[tail].nextZ = nilNode
	a.nodes[p].prevZ = nilNode

	a.sortLinked(p)
}

// sortLinked merge-sorts the z chain starting at list in place and returns
// its new head.
func (a *arena) sortLinked(list int32) int32 {
	inSize := 1
	for {
		p := list
		list = nilNode
		tail := nilNode
		numMerges := 0

		for p != nilNode {
			numMerges++
			q := p
			pSize := 0
			for i := 0; i < inSize; i++ {
				pSize++
				q = a.nodes[q].nextZ
				if q == nilNode {
					break
				}
			}
			qSize := inSize

			for pSize > 0 || (qSize > 0 && q != nilNode) {
				var e int32
				if pSize != 0 && (qSize == 0 || q == nilNode || a.nodes[p].z <= a.nodes[q].z) {
					e = p
					p = a.nodes[p].nextZ
					pSize--
				} else {
					e = q
					q = a.nodes[q].nextZ
					qSize--
				}

				if tail != nilNode {
					a.nodes[tail].nextZ = e
				} else {
					list = e
				}
				a.nodes[e].prevZ = tail
				tail = e
			}
			p = q
		}

		a.nodes[tail].nextZ = nilNode
		if numMerges <= 1 {
			return list
		}
		inSize *= 2
	}
}
