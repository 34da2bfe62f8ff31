package mesh_test

import (
	"math"
	"testing"

	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// faceNormal returns the unit normal of triangle t by its winding.
func faceNormal(b *mesh.Buffers, t int) geom.Point {
	p1 := b.Vertex(int(b.Indices[t*3]))
	p2 := b.Vertex(int(b.Indices[t*3+1]))
	p3 := b.Vertex(int(b.Indices[t*3+2]))
	return r3.Unit(r3.Cross(r3.Sub(p2, p1), r3.Sub(p3, p1)))
}

func assertVec(t *testing.T, want, got geom.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-6)
	assert.InDelta(t, want.Y, got.Y, 1e-6)
	assert.InDelta(t, want.Z, got.Z, 1e-6)
}

func square() []geom.Point {
	return []geom.Point{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(1, 1), geom.Pt(0, 1)}
}

func TestCaps(t *testing.T) {
	tris := []int{0, 1, 2, 0, 2, 3}
	tests := []struct {
		name        string
		top, bottom bool
		triangles   int
	}{
		{"both", true, true, 4},
		{"top only", true, false, 2},
		{"bottom only", false, true, 2},
		{"neither", false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mesh.New(8, 4)
			mesh.Caps(b, square(), tris, 3, tt.top, tt.bottom)
			require.NoError(t, b.Validate())
			assert.Equal(t, 8, b.VertexCount())
			assert.Equal(t, tt.triangles, b.TriangleCount())

			for i := 0; i < 4; i++ {
				assert.InDelta(t, 3, b.Vertex(i).Z, 1e-9)
				assert.InDelta(t, 0, b.Vertex(i+4).Z, 1e-9)
			}
			for tri := 0; tri < b.TriangleCount(); tri++ {
				n := faceNormal(b, tri)
				if b.Indices[tri*3] < 4 {
					assertVec(t, geom.Pt3(0, 0, 1), n)
				} else {
					assertVec(t, geom.Pt3(0, 0, -1), n)
				}
			}
		})
	}
}

func TestCapsKeepPointElevation(t *testing.T) {
	b := mesh.New(6, 2)
	pts := []geom.Point{geom.Pt3(0, 0, 5), geom.Pt3(1, 0, 5), geom.Pt3(0, 1, 5)}
	mesh.Caps(b, pts, []int{0, 1, 2}, 2, true, true)
	assert.InDelta(t, 7, b.Vertex(0).Z, 1e-9)
	assert.InDelta(t, 5, b.Vertex(3).Z, 1e-9)
}

func TestSideWallFacesLeftOfTravel(t *testing.T) {
	b := mesh.New(4, 2)
	tl, tr := geom.Pt3(0, 0, 2), geom.Pt3(4, 0, 2)
	bl, br := geom.Pt3(0, 0, 0), geom.Pt3(4, 0, 0)
	first := mesh.SideWall(b, tl, tr, bl, br, mesh.SideWallUV(tl, tr, bl, br))

	assert.Equal(t, uint32(0), first)
	require.NoError(t, b.Validate())
	assert.Equal(t, 2, b.TriangleCount())
	assertVec(t, tl, b.Vertex(0))
	assertVec(t, tr, b.Vertex(1))
	assertVec(t, bl, b.Vertex(2))
	assertVec(t, br, b.Vertex(3))
	for tri := 0; tri < 2; tri++ {
		assertVec(t, geom.Pt3(0, 1, 0), faceNormal(b, tri))
	}
}

func TestSideWallUV(t *testing.T) {
	t.Run("along x", func(t *testing.T) {
		uv := mesh.SideWallUV(geom.Pt3(1, 5, 2), geom.Pt3(4, 5, 2), geom.Pt3(1, 5, 0), geom.Pt3(4, 5, 0))
		assert.Equal(t, [4][2]float64{{1, -1}, {4, -1}, {1, 1}, {4, 1}}, uv)
	})
	t.Run("along y", func(t *testing.T) {
		uv := mesh.SideWallUV(geom.Pt3(5, 1, 2), geom.Pt3(5.5, 4, 2), geom.Pt3(5, 1, 0), geom.Pt3(5.5, 4, 0))
		assert.Equal(t, [4][2]float64{{1, -1}, {4, -1}, {1, 1}, {4, 1}}, uv)
	})
	t.Run("near tie picks the larger delta", func(t *testing.T) {
		// dx exceeds dy by less than float32 can resolve.
		tr := geom.Pt3(1+1e-9, 1, 1)
		uv := mesh.SideWallUV(geom.Pt3(0, 0, 1), tr, geom.Pt3(0, 0, 0), geom.Pt3(tr.X, tr.Y, 0))
		assert.Equal(t, tr.X, uv[1][0])
		assert.Equal(t, 0.0, uv[0][0])
	})
}

func TestRingWallsFaceOutward(t *testing.T) {
	// Clockwise square centred on (0.5, 0.5).
	ring := geom.Ring{geom.Pt(0, 0), geom.Pt(0, 1), geom.Pt(1, 1), geom.Pt(1, 0)}
	b := mesh.New(16, 8)
	mesh.RingWalls(b, ring, 2)
	require.NoError(t, b.Validate())
	assert.Equal(t, 16, b.VertexCount())
	assert.Equal(t, 8, b.TriangleCount())

	centre := geom.Pt3(0.5, 0.5, 1)
	for tri := 0; tri < b.TriangleCount(); tri++ {
		p := b.Vertex(int(b.Indices[tri*3]))
		out := r3.Sub(p, centre)
		out.Z = 0
		assert.Greater(t, r3.Dot(faceNormal(b, tri), out), 0.0, "triangle %d faces inward", tri)
	}
}

func TestRailWallsOpen(t *testing.T) {
	top := []geom.Point{geom.Pt3(0, 0, 1), geom.Pt3(1, 0, 1), geom.Pt3(2, 0, 1)}
	bottom := []geom.Point{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(2, 0)}
	b := mesh.New(8, 4)
	mesh.RailWalls(b, top, bottom, false)
	assert.Equal(t, 8, b.VertexCount())
	assert.Equal(t, 4, b.TriangleCount())
}

func TestStrip(t *testing.T) {
	b := mesh.New(6, 4)
	for i := 0; i < 3; i++ {
		b.AddVertex(geom.Pt(float64(i), 0), 0, 0)
	}
	for i := 0; i < 3; i++ {
		b.AddVertex(geom.Pt(float64(i), 1), 0, 0)
	}
	mesh.Strip(b, 0, 3, 2)
	assert.Equal(t, []uint32{3, 0, 1, 3, 1, 4, 4, 1, 2, 4, 2, 5}, b.Indices)
	require.NoError(t, b.Validate())
	for tri := 0; tri < b.TriangleCount(); tri++ {
		assertVec(t, geom.Pt3(0, 0, 1), faceNormal(b, tri))
	}
}

func TestGenerateNormals(t *testing.T) {
	t.Run("flat quad", func(t *testing.T) {
		pos := []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}
		n := mesh.GenerateNormals([]uint32{0, 1, 2, 0, 2, 3}, pos)
		require.Len(t, n, len(pos))
		for i := 0; i < 4; i++ {
			assert.InDelta(t, 0, n[i*3], 1e-6)
			assert.InDelta(t, 0, n[i*3+1], 1e-6)
			assert.InDelta(t, 1, n[i*3+2], 1e-6)
		}
	})
	t.Run("shared edge is smoothed", func(t *testing.T) {
		// Two faces folded 90 degrees along the x axis.
		pos := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1}
		n := mesh.GenerateNormals([]uint32{0, 1, 2, 0, 3, 1}, pos)
		h := float32(math.Sqrt2 / 2)
		assert.InDelta(t, 0, n[0], 1e-6)
		assert.InDelta(t, h, n[1], 1e-6)
		assert.InDelta(t, h, n[2], 1e-6)
	})
	t.Run("unreferenced vertex", func(t *testing.T) {
		pos := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 5, 5, 5}
		n := mesh.GenerateNormals([]uint32{0, 1, 2}, pos)
		assert.Equal(t, []float32{0, 0, 0}, n[9:])
	})
	t.Run("degenerate triangle", func(t *testing.T) {
		pos := []float32{0, 0, 0, 1, 0, 0, 2, 0, 0}
		n := mesh.GenerateNormals([]uint32{0, 1, 2}, pos)
		for _, f := range n {
			assert.Zero(t, f)
		}
	})
}

func TestValidate(t *testing.T) {
	good := func() *mesh.Buffers {
		b := mesh.New(3, 1)
		b.AddVertex(geom.Pt(0, 0), 0, 0)
		b.AddVertex(geom.Pt(1, 0), 1, 0)
		b.AddVertex(geom.Pt(0, 1), 0, 1)
		b.AddTriangle(0, 1, 2)
		return b
	}
	require.NoError(t, good().Validate())

	tests := []struct {
		name   string
		mutate func(b *mesh.Buffers)
	}{
		{"ragged position", func(b *mesh.Buffers) { b.Position = b.Position[:8] }},
		{"short normal", func(b *mesh.Buffers) { b.Normal = b.Normal[:6] }},
		{"short uv", func(b *mesh.Buffers) { b.UV = b.UV[:4] }},
		{"ragged indices", func(b *mesh.Buffers) { b.Indices = append(b.Indices, 0) }},
		{"index out of range", func(b *mesh.Buffers) { b.Indices[2] = 3 }},
		{"nan", func(b *mesh.Buffers) { b.Position[0] = float32(math.NaN()) }},
		{"inf", func(b *mesh.Buffers) { b.UV[1] = float32(math.Inf(1)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := good()
			tt.mutate(b)
			assert.Error(t, b.Validate())
		})
	}
}

func TestTranslateAndClone(t *testing.T) {
	b := mesh.New(1, 0)
	b.AddVertex(geom.Pt3(1, 2, 3), 0, 0)
	c := b.Clone()
	c.Translate(1, 1, 1)
	assertVec(t, geom.Pt3(1, 2, 3), b.Vertex(0))
	assertVec(t, geom.Pt3(2, 3, 4), c.Vertex(0))
	assert.True(t, c.IsEmpty())
}

func TestMerge(t *testing.T) {
	tri := func(x float64) *mesh.Buffers {
		b := mesh.New(3, 1)
		b.AddVertex(geom.Pt(x, 0), 0, 0)
		b.AddVertex(geom.Pt(x+1, 0), 1, 0)
		b.AddVertex(geom.Pt(x, 1), 0, 1)
		b.AddTriangle(0, 1, 2)
		b.ComputeNormals()
		return b
	}

	t.Run("single part is identity", func(t *testing.T) {
		a := tri(0)
		m := mesh.Merge(a)
		assert.Equal(t, *a, m.Buffers)
		assert.Same(t, &a.Position[0], &m.Position[0])
		assert.Len(t, m.Parts, 1)
	})

	t.Run("indices are rebased", func(t *testing.T) {
		a, b := tri(0), tri(5)
		m := mesh.Merge(a, nil, b)
		require.NoError(t, m.Validate())
		assert.Len(t, m.Parts, 2)
		assert.Equal(t, 6, m.VertexCount())
		assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, m.Indices)
		for _, idx := range m.Indices {
			assert.LessOrEqual(t, int(idx), a.VertexCount()+b.VertexCount()-1)
		}
		assertVec(t, geom.Pt(5, 0), m.Vertex(3))
	})

	t.Run("no parts", func(t *testing.T) {
		m := mesh.Merge()
		assert.True(t, m.IsEmpty())
		assert.NoError(t, m.Validate())
	})
}

func TestTransform(t *testing.T) {
	b := mesh.New(1, 0)
	b.AddVertexNormal(geom.Pt3(1, 0, 0), geom.Pt3(1, 0, 0), 0, 0)

	b.Transform(mesh.Placement(geom.Pt3(0, 0, 5), geom.Pt3(0, 0, 90)))
	assertVec(t, geom.Pt3(0, 1, 5), b.Vertex(0))
	assertVec(t, geom.Pt3(0, 1, 0), b.VertexNormal(0))

	// Translation alone leaves normals untouched.
	b.Transform(mesh.Placement(geom.Pt3(1, 0, 0), geom.Point{}))
	assertVec(t, geom.Pt3(1, 1, 5), b.Vertex(0))
	assertVec(t, geom.Pt3(0, 1, 0), b.VertexNormal(0))
}
