// Package mesh holds flat triangle buffers and the primitives that fill
// them: caps, side walls, strips, normals, UVs and merging.
//
// Buffers follow the usual vertex attribute layout: three floats of
// position and normal, two of UV per vertex, and three indices per
// triangle.
package mesh

import (
	"fmt"

	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chewxy/math32"
)

// Buffers is one mesh in vertex attribute form.
type Buffers struct {
	Position []float32 `json:"position"`
	Normal   []float32 `json:"normal"`
	UV       []float32 `json:"uv"`
	Indices  []uint32  `json:"indices"`
}

// New returns empty buffers with room for the given number of vertices
// and triangles.
func New(vertices, triangles int) *Buffers {
	return &Buffers{
		Position: make([]float32, 0, vertices*3),
		Normal:   make([]float32, 0, vertices*3),
		UV:       make([]float32, 0, vertices*2),
		Indices:  make([]uint32, 0, triangles*3),
	}
}

// VertexCount returns the number of vertices.
func (b *Buffers) VertexCount() int { return len(b.Position) / 3 }

// TriangleCount returns the number of triangles.
func (b *Buffers) TriangleCount() int { return len(b.Indices) / 3 }

// IsEmpty reports whether b has no triangles.
func (b *Buffers) IsEmpty() bool { return b == nil || len(b.Indices) == 0 }

// AddVertex appends a vertex with a zero normal and returns its index.
func (b *Buffers) AddVertex(p geom.Point, u, v float64) uint32 {
	return b.AddVertexNormal(p, geom.Point{}, u, v)
}

// AddVertexNormal appends a vertex and returns its index.
func (b *Buffers) AddVertexNormal(p, n geom.Point, u, v float64) uint32 {
	idx := uint32(b.VertexCount())
	b.Position = append(b.Position, float32(p.X), float32(p.Y), float32(p.Z))
	b.Normal = append(b.Normal, float32(n.X), float32(n.Y), float32(n.Z))
	b.UV = append(b.UV, float32(u), float32(v))
	return idx
}

// AddTriangle appends one triangle.
func (b *Buffers) AddTriangle(i0, i1, i2 uint32) {
	b.Indices = append(b.Indices, i0, i1, i2)
}

// Vertex returns the position of vertex i.
func (b *Buffers) Vertex(i int) geom.Point {
	return geom.Pt3(float64(b.Position[i*3]), float64(b.Position[i*3+1]), float64(b.Position[i*3+2]))
}

// VertexNormal returns the normal of vertex i.
func (b *Buffers) VertexNormal(i int) geom.Point {
	return geom.Pt3(float64(b.Normal[i*3]), float64(b.Normal[i*3+1]), float64(b.Normal[i*3+2]))
}

// ComputeNormals replaces every normal with the smooth area-weighted
// normal of the triangles using it.
func (b *Buffers) ComputeNormals() {
	b.Normal = GenerateNormals(b.Indices, b.Position)
}

// Translate moves every vertex by (dx, dy, dz).
func (b *Buffers) Translate(dx, dy, dz float64) {
	fx, fy, fz := float32(dx), float32(dy), float32(dz)
	for i := 0; i+2 < len(b.Position); i += 3 {
		b.Position[i] += fx
		b.Position[i+1] += fy
		b.Position[i+2] += fz
	}
}

// Clone returns a deep copy of b.
func (b *Buffers) Clone() *Buffers {
	return &Buffers{
		Position: append([]float32(nil), b.Position...),
		Normal:   append([]float32(nil), b.Normal...),
		UV:       append([]float32(nil), b.UV...),
		Indices:  append([]uint32(nil), b.Indices...),
	}
}

// Validate checks the buffer length invariants, that every index is in
// range, and that no attribute is NaN or infinite.
func (b *Buffers) Validate() error {
	if len(b.Position)%3 != 0 {
		return fmt.Errorf("mesh: position length %d is not a multiple of 3", len(b.Position))
	}
	if len(b.Normal) != len(b.Position) {
		return fmt.Errorf("mesh: normal length %d, want %d", len(b.Normal), len(b.Position))
	}
	if want := len(b.Position) / 3 * 2; len(b.UV) != want {
		return fmt.Errorf("mesh: uv length %d, want %d", len(b.UV), want)
	}
	if len(b.Indices)%3 != 0 {
		return fmt.Errorf("mesh: index length %d is not a multiple of 3", len(b.Indices))
	}
	n := uint32(b.VertexCount())
	for i, idx := range b.Indices {
		if idx >= n {
			return fmt.Errorf("mesh: index %d at %d out of range for %d vertices", idx, i, n)
		}
	}
	for name, buf := range map[string][]float32{"position": b.Position, "normal": b.Normal, "uv": b.UV} {
		for i, f := range buf {
			if math32.IsNaN(f) || math32.IsInf(f, 0) {
				return fmt.Errorf("mesh: %s[%d] is not finite", name, i)
			}
		}
	}
	return nil
}
