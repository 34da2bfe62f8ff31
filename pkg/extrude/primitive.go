package extrude

import (
	"math"

	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/mesh"
)

var upNormal = geom.Pt3(0, 0, 1)

// Plane returns a flat grid of width by height centred on the origin in
// the XY plane, facing +z, split into segW by segH cells. UVs run from 0
// to 1 across the grid.
func Plane(width, height float64, segW, segH int) *mesh.Buffers {
	segW, segH = max(1, segW), max(1, segH)
	dx, dy := width/float64(segW), height/float64(segH)
	minX, minY, maxY := -width/2, -height/2, height/2

	b := mesh.New((segW+1)*(segH+1), segW*segH*2)
	for j := 0; j <= segH; j++ {
		for i := 0; i <= segW; i++ {
			x, y := minX+dx*float64(i), maxY-dy*float64(j)
			var u, v float64
			if width != 0 {
				u = (x - minX) / width
			}
			if height != 0 {
				v = (y - minY) / height
			}
			b.AddVertexNormal(geom.Pt(x, y), upNormal, u, v)
		}
	}

	row := uint32(segW + 1)
	for j := uint32(0); j < uint32(segH); j++ {
		for i := uint32(0); i < uint32(segW); i++ {
			a := j*row + i
			c := a + row
			b.AddTriangle(a, c, a+1)
			b.AddTriangle(c, c+1, a+1)
		}
	}
	return b
}

// CylinderOptions controls Cylinder.
type CylinderOptions struct {
	// Radius of zero means 1.
	Radius float64

	// Height of zero means 2.
	Height float64

	// RadialSegments is the number of sides. Zero means 6 and the minimum
	// is 4.
	RadialSegments int
}

// DefaultCylinderOptions returns the defaults for Cylinder.
func DefaultCylinderOptions() CylinderOptions {
	return CylinderOptions{Radius: 1, Height: 2, RadialSegments: 6}
}

func (o CylinderOptions) withDefaults() CylinderOptions {
	if o.Radius <= 0 {
		o.Radius = 1
	}
	if o.Height == 0 {
		o.Height = 2
	}
	if o.RadialSegments == 0 {
		o.RadialSegments = 6
	}
	o.RadialSegments = max(4, o.RadialSegments)
	return o
}

// Cylinder returns a capped prism with RadialSegments sides whose base is
// centred on center.
func Cylinder(center geom.Point, opts CylinderOptions) *mesh.Buffers {
	opts = opts.withDefaults()
	segs := opts.RadialSegments

	ring := make([]geom.Point, segs)
	for i := range ring {
		a := 2 * math.Pi * float64(i) / float64(segs)
		ring[i] = geom.Pt3(center.X+opts.Radius*math.Cos(a), center.Y+opts.Radius*math.Sin(a), center.Z)
	}
	tris := make([]int, 0, (segs-2)*3)
	for i := 1; i+1 < segs; i++ {
		tris = append(tris, 0, i, i+1)
	}

	b := mesh.New(segs*6, segs*4)
	mesh.Caps(b, ring, tris, opts.Height, true, true)
	for i := 0; i < segs*2; i++ {
		p := b.Vertex(i)
		b.UV[i*2] = float32(0.5 + (p.X-center.X)/opts.Radius/2)
		b.UV[i*2+1] = float32(0.5 + (p.Y-center.Y)/opts.Radius/2)
	}

	// Walk the ring clockwise so the walls face out.
	vTop := opts.Height / opts.Radius / 2
	for i := 0; i < segs; i++ {
		j := (segs - i) % segs
		k := (segs - i - 1 + segs) % segs
		p, q := ring[j], ring[k]
		tl, tr := geom.Pt3(p.X, p.Y, p.Z+opts.Height), geom.Pt3(q.X, q.Y, q.Z+opts.Height)
		u1, u2 := float64(i)/float64(segs), float64(i+1)/float64(segs)
		mesh.SideWall(b, tl, tr, p, q, [4][2]float64{{u1, vTop}, {u2, vTop}, {u1, 0}, {u2, 0}})
	}
	b.ComputeNormals()
	return b
}
