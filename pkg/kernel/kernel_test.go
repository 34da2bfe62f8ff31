package kernel

import (
	"testing"

	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/mesh"
)

func TestProjectUV(t *testing.T) {
	tests := []struct {
		name   string
		normal geom.Point
		wantU  float32
		wantV  float32
	}{
		{"x facing", geom.Pt3(-1, 0, 0), 2, 3},
		{"y facing", geom.Pt3(0, 1, 0), 1, 3},
		{"z facing", geom.Pt3(0, 0, 1), 1, 2},
		{"tilted towards y", geom.Pt3(0.2, -0.9, 0.3), 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mesh.New(1, 0)
			b.AddVertexNormal(geom.Pt3(2, 4, 6), tt.normal, 0, 0)
			ProjectUV(b, 2)
			if b.UV[0] != tt.wantU || b.UV[1] != tt.wantV {
				t.Errorf("uv = (%v, %v), want (%v, %v)", b.UV[0], b.UV[1], tt.wantU, tt.wantV)
			}
		})
	}
}

func TestProjectUVDefaultScale(t *testing.T) {
	b := mesh.New(1, 0)
	b.AddVertexNormal(geom.Pt3(2, 4, 6), geom.Pt3(0, 0, 1), 0, 0)
	ProjectUV(b, 0)
	if b.UV[0] != 2 || b.UV[1] != 4 {
		t.Errorf("uv = (%v, %v), want (2, 4)", b.UV[0], b.UV[1])
	}
}

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel proves the interface is satisfiable with trivial results.
type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) (Solid, error) {
	return &stubSolid{maxBB: [3]float64{x, y, z}}, nil
}

func (k *stubKernel) Cylinder(height, radius float64, _ int) (Solid, error) {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, 0},
		maxBB: [3]float64{radius, radius, height},
	}, nil
}

func (k *stubKernel) Union(a, _ Solid) Solid        { return a }
func (k *stubKernel) Difference(a, _ Solid) Solid   { return a }
func (k *stubKernel) Intersection(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }

func (k *stubKernel) ToMesh(_ Solid) (*mesh.Buffers, error) {
	return mesh.New(0, 0), nil
}

var _ Kernel = (*stubKernel)(nil)

func TestStubKernel(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, err := k.Box(10, 20, 30)
	if err != nil {
		t.Fatalf("Box() error = %v", err)
	}
	if _, max := s.BoundingBox(); max != [3]float64{10, 20, 30} {
		t.Errorf("Box max = %v, want [10 20 30]", max)
	}
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if !m.IsEmpty() {
		t.Error("stub ToMesh() should return an empty mesh")
	}
}
