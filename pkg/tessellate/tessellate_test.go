package tessellate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/polymesh/pkg/extrude"
	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/graph"
	"github.com/chazu/polymesh/pkg/kernel"
	"github.com/chazu/polymesh/pkg/kernel/sdfx"
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/chazu/polymesh/pkg/tessellate"
)

// newKernel returns a coarse sdfx kernel for testing.
func newKernel() kernel.Kernel {
	return sdfx.NewWithCells(24)
}

func makePlate(name string, size float64) *graph.Node {
	return &graph.Node{
		ID:   graph.NewNodeID("extrude-polygon/" + name),
		Kind: graph.NodeShape,
		Name: name,
		Data: graph.PolygonData{
			Polygons: []geom.Polygon{{{geom.Pt(0, 0), geom.Pt(size, 0), geom.Pt(size, size), geom.Pt(0, size)}}},
			Options:  extrude.PolygonOptions{Depth: 1},
		},
	}
}

func makeBox(name string, x, y, z float64) *graph.Node {
	return &graph.Node{
		ID:   graph.NewNodeID("box/" + name),
		Kind: graph.NodeSolid,
		Name: name,
		Data: graph.BoxData{Size: geom.Pt3(x, y, z)},
	}
}

func makePlace(name string, at, rot *geom.Point, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID("place/" + name),
		Kind:     graph.NodeTransform,
		Children: children,
		Data:     graph.TransformData{Translation: at, Rotation: rot},
	}
}

func makeGroup(name string, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID("group/" + name),
		Kind:     graph.NodeGroup,
		Name:     name,
		Children: children,
		Data:     graph.GroupData{Description: name},
	}
}

func pt(x, y, z float64) *geom.Point {
	p := geom.Pt3(x, y, z)
	return &p
}

// bounds returns the axis-aligned bounds of b.
func bounds(b *mesh.Buffers) (min, max geom.Point) {
	min = geom.Pt3(math.Inf(1), math.Inf(1), math.Inf(1))
	max = geom.Pt3(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	for i := 0; i < b.VertexCount(); i++ {
		v := b.Vertex(i)
		min = geom.Pt3(math.Min(min.X, v.X), math.Min(min.Y, v.Y), math.Min(min.Z, v.Z))
		max = geom.Pt3(math.Max(max.X, v.X), math.Max(max.Y, v.Y), math.Max(max.Z, v.Z))
	}
	return min, max
}

func near(t *testing.T, label string, want, got, tol float64) {
	t.Helper()
	if math.Abs(want-got) > tol {
		t.Errorf("%s = %.3f, want %.3f", label, got, want)
	}
}

func TestSingleShape(t *testing.T) {
	s := graph.New()
	plate := makePlate("plate", 10)
	s.AddNode(plate)
	s.AddRoot(plate.ID)

	parts, err := tessellate.Tessellate(s, nil)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	p := parts[0]
	if p.Name != "plate" || p.NodeID != plate.ID {
		t.Errorf("part = %q %s", p.Name, p.NodeID.Short())
	}
	if err := p.Buffers.Validate(); err != nil {
		t.Fatalf("invalid buffers: %v", err)
	}
	if p.Buffers.TriangleCount() != 12 {
		t.Errorf("triangles = %d, want 12", p.Buffers.TriangleCount())
	}
}

func TestShapeWithTransform(t *testing.T) {
	s := graph.New()
	plate := makePlate("plate", 10)
	inner := makePlace("inner", pt(100, 0, 0), pt(0, 0, 90), plate.ID)
	outer := makePlace("outer", pt(0, 0, 5), nil, inner.ID)
	loose := makePlate("loose", 1)
	root := makeGroup("root", outer.ID, loose.ID)
	for _, n := range []*graph.Node{plate, inner, outer, loose, root} {
		s.AddNode(n)
	}
	s.AddRoot(root.ID)

	parts, err := tessellate.Tessellate(s, nil)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}

	// A quarter turn about z puts the 10x10 plate at x in [-10, 0]; the
	// placements then move it to x in [90, 100] and lift it by 5.
	min, max := bounds(parts[0].Buffers)
	near(t, "min x", 90, min.X, 1e-4)
	near(t, "max x", 100, max.X, 1e-4)
	near(t, "min y", 0, min.Y, 1e-4)
	near(t, "max y", 10, max.Y, 1e-4)
	near(t, "min z", 5, min.Z, 1e-4)
	near(t, "max z", 6, max.Z, 1e-4)

	// The sibling outside the placements stays where it was built.
	min, max = bounds(parts[1].Buffers)
	near(t, "loose min x", 0, min.X, 1e-6)
	near(t, "loose max z", 1, max.Z, 1e-6)
}

func TestSolidWithTransform(t *testing.T) {
	s := graph.New()
	box := makeBox("block", 10, 20, 4)
	place := makePlace("block", pt(200, 100, 50), nil, box.ID)
	s.AddNode(box)
	s.AddNode(place)
	s.AddRoot(place.ID)

	parts, err := tessellate.Tessellate(s, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 1 || parts[0].Name != "block" {
		t.Fatalf("parts = %v", parts)
	}
	min, max := bounds(parts[0].Buffers)
	const tol = 2.0 // marching cubes is approximate
	near(t, "min x", 200, min.X, tol)
	near(t, "max y", 120, max.Y, tol)
	near(t, "max z", 54, max.Z, tol)
}

func TestBooleanConsumesOperands(t *testing.T) {
	s := graph.New()
	box := makeBox("block", 20, 20, 20)
	rod := &graph.Node{
		ID:   graph.NewNodeID("rod/drill"),
		Kind: graph.NodeSolid,
		Data: graph.RodData{Height: 30, Radius: 4},
	}
	drill := makePlace("drill", pt(10, 10, -5), nil, rod.ID)
	diff := &graph.Node{
		ID:       graph.NewNodeID("difference/holed"),
		Kind:     graph.NodeSolid,
		Name:     "holed",
		Children: []graph.NodeID{box.ID, drill.ID},
		Data:     graph.BooleanData{Op: graph.BooleanDifference},
	}
	for _, n := range []*graph.Node{box, rod, drill, diff} {
		s.AddNode(n)
	}
	s.ResolveRoots()

	parts, err := tessellate.Tessellate(s, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 1 || parts[0].Name != "holed" {
		t.Fatalf("expected only the boolean as a part, got %d parts", len(parts))
	}
	if parts[0].Buffers.IsEmpty() {
		t.Fatal("boolean mesh is empty")
	}
}

func TestSolidWithoutKernel(t *testing.T) {
	s := graph.New()
	box := makeBox("block", 1, 1, 1)
	s.AddNode(box)
	s.AddRoot(box.ID)
	if _, err := tessellate.Tessellate(s, nil); err == nil {
		t.Fatal("expected an error without a kernel")
	}
}

func TestGroupAndMerge(t *testing.T) {
	s := graph.New()
	a := makePlate("a", 1)
	b := makePlate("b", 2)
	floor := &graph.Node{
		ID:   graph.NewNodeID("plane/floor"),
		Kind: graph.NodeShape,
		Name: "floor",
		Data: graph.PlaneData{Width: 4, Height: 4, SegW: 2, SegH: 2},
	}
	grp := makeGroup("scene", a.ID, b.ID, floor.ID)
	for _, n := range []*graph.Node{a, b, floor, grp} {
		s.AddNode(n)
	}
	s.AddRoot(grp.ID)

	parts, err := tessellate.Tessellate(s, nil)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	names := []string{}
	for _, p := range parts {
		names = append(names, p.Name)
	}
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "floor" {
		t.Fatalf("parts = %v, want [a b floor] in order", names)
	}

	merged := tessellate.Merge(parts)
	if err := merged.Validate(); err != nil {
		t.Fatalf("invalid merged buffers: %v", err)
	}
	want := 0
	for _, p := range parts {
		want += p.Buffers.VertexCount()
	}
	if merged.VertexCount() != want || len(merged.Parts) != 3 {
		t.Errorf("merged %d vertices in %d parts, want %d in 3", merged.VertexCount(), len(merged.Parts), want)
	}
}

func TestEveryShapeKind(t *testing.T) {
	line := geom.Polyline{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10)}
	spine := []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt3(10, 10, 5)}
	sq := geom.Polygon{{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(1, 1), geom.Pt(0, 1)}}

	tests := []struct {
		name string
		data graph.NodeData
	}{
		{"line", graph.LineData{Lines: []geom.Polyline{line}}},
		{"slope", graph.SlopeData{Lines: []geom.Polyline{line}, Options: extrude.DefaultSlopeOptions()}},
		{"path", graph.PathData{Spines: [][]geom.Point{spine}}},
		{"tube", graph.TubeData{Spines: [][]geom.Point{spine}}},
		{"sweep", graph.SweepData{Polygons: []geom.Polygon{sq}, Options: extrude.OnPathOptions{Path: spine}}},
		{"cylinder", graph.CylinderData{Center: geom.Pt(1, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := graph.New()
			n := &graph.Node{ID: graph.NewNodeID(tt.name), Kind: graph.NodeShape, Name: tt.name, Data: tt.data}
			s.AddNode(n)
			s.AddRoot(n.ID)

			parts, err := tessellate.Tessellate(s, nil)
			if err != nil {
				t.Fatalf("Tessellate failed: %v", err)
			}
			if parts[0].Buffers.IsEmpty() {
				t.Fatal("empty mesh")
			}
			if err := parts[0].Buffers.Validate(); err != nil {
				t.Fatalf("invalid buffers: %v", err)
			}
		})
	}
}

func TestBuilderErrorIsWrapped(t *testing.T) {
	s := graph.New()
	bad := &graph.Node{
		ID:   graph.NewNodeID("bad"),
		Kind: graph.NodeShape,
		Name: "bad",
		Data: graph.LineData{Lines: []geom.Polyline{{geom.Pt(0, 0)}}},
	}
	s.AddNode(bad)
	s.AddRoot(bad.ID)

	_, err := tessellate.Tessellate(s, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, geom.ErrInsufficientPoints) {
		t.Errorf("error %v does not wrap ErrInsufficientPoints", err)
	}
}

func TestEmptyScene(t *testing.T) {
	parts, err := tessellate.Tessellate(graph.New(), newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 0 {
		t.Fatalf("expected 0 parts, got %d", len(parts))
	}
	if parts, _ := tessellate.Tessellate(nil, nil); parts != nil {
		t.Error("nil scene should give no parts")
	}
}
