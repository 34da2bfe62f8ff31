package mesh

import (
	"math"

	"github.com/chazu/polymesh/pkg/geom"
)

var (
	upNormal   = geom.Pt3(0, 0, 1)
	downNormal = geom.Pt3(0, 0, -1)
)

// Caps appends a top and a bottom copy of pts and the cap triangles over
// them. The top copy is raised by depth and keeps the triangulated winding.
// The bottom copy stays at each point's own z with its winding reversed so
// it faces down. All 2n vertices are always written, top first; top and
// bottom only control which triangles are emitted. UVs are the raw x and y.
func Caps(b *Buffers, pts []geom.Point, triangles []int, depth float64, top, bottom bool) {
	base := uint32(b.VertexCount())
	n := uint32(len(pts))
	for _, p := range pts {
		b.AddVertexNormal(geom.Pt3(p.X, p.Y, p.Z+depth), upNormal, p.X, p.Y)
	}
	for _, p := range pts {
		b.AddVertexNormal(p, downNormal, p.X, p.Y)
	}
	for i := 0; i+2 < len(triangles); i += 3 {
		a, c, d := uint32(triangles[i]), uint32(triangles[i+1]), uint32(triangles[i+2])
		if top {
			b.AddTriangle(base+a, base+c, base+d)
		}
		if bottom {
			b.AddTriangle(base+n+a, base+n+d, base+n+c)
		}
	}
}

// SideWall appends a quad of four vertices in the order top-left,
// top-right, bottom-left, bottom-right, and two triangles
// (bottom-left, top-left, bottom-right) and (top-left, top-right,
// bottom-right). The quad faces left of the direction from top-left to
// top-right. It returns the index of the top-left vertex.
func SideWall(b *Buffers, tl, tr, bl, br geom.Point, uv [4][2]float64) uint32 {
	i := b.AddVertex(tl, uv[0][0], uv[0][1])
	b.AddVertex(tr, uv[1][0], uv[1][1])
	b.AddVertex(bl, uv[2][0], uv[2][1])
	b.AddVertex(br, uv[3][0], uv[3][1])
	b.AddTriangle(i+2, i, i+3)
	b.AddTriangle(i, i+1, i+3)
	return i
}

// SideWallUV projects a wall quad onto whichever horizontal axis varies
// more between its top vertices, paired with the height. The result is in
// top-left, top-right, bottom-left, bottom-right order.
func SideWallUV(tl, tr, bl, br geom.Point) [4][2]float64 {
	dx := math.Abs(tr.X - tl.X)
	dy := math.Abs(tr.Y - tl.Y)
	axis := func(p geom.Point) float64 { return p.Y }
	if dy < dx {
		axis = func(p geom.Point) float64 { return p.X }
	}
	var uv [4][2]float64
	for i, p := range [4]geom.Point{tl, tr, bl, br} {
		uv[i] = [2]float64{axis(p), 1 - p.Z}
	}
	return uv
}

// RailWalls appends one wall per consecutive pair of points between the
// top and bottom rails, which must have equal length. When closed, a
// final wall joins the last pair back to the first.
func RailWalls(b *Buffers, top, bottom []geom.Point, closed bool) {
	n := len(top)
	if len(bottom) < n {
		n = len(bottom)
	}
	edges := n - 1
	if closed {
		edges = n
	}
	for j := 0; j < edges; j++ {
		k := (j + 1) % n
		tl, tr, bl, br := top[j], top[k], bottom[j], bottom[k]
		SideWall(b, tl, tr, bl, br, SideWallUV(tl, tr, bl, br))
	}
}

// RingWalls appends the walls of a prism whose base is ring, raised by
// depth. A clockwise ring gets outward facing walls.
func RingWalls(b *Buffers, ring geom.Ring, depth float64) {
	top := make([]geom.Point, len(ring))
	for i, p := range ring {
		top[i] = geom.Pt3(p.X, p.Y, p.Z+depth)
	}
	RailWalls(b, top, ring, true)
}

// Strip joins two runs of count+1 vertices starting at b1 and b2 with
// count quads.
func Strip(b *Buffers, b1, b2, count uint32) {
	for i := uint32(0); i < count; i++ {
		b.AddTriangle(b2+i, b1+i, b1+i+1)
		b.AddTriangle(b2+i, b1+i+1, b2+i+1)
	}
}
