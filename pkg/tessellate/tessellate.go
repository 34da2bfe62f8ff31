// Package tessellate walks a scene graph and produces one mesh per shape
// or solid node, using the shape builders for shapes and a geometry
// kernel for solids.
package tessellate

import (
	"fmt"

	"github.com/chazu/polymesh/pkg/extrude"
	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/graph"
	"github.com/chazu/polymesh/pkg/kernel"
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samber/lo"
)

// defaultRodSegments is passed to the kernel for rods without a segment
// count.
const defaultRodSegments = 32

// Part is the mesh of one leaf node, already placed in world space.
type Part struct {
	Name    string        `json:"name"`
	NodeID  graph.NodeID  `json:"node_id"`
	Buffers *mesh.Buffers `json:"buffers"`
}

// transformStack accumulates placements during graph traversal.
type transformStack struct {
	translations []geom.Point
	rotations    []geom.Point
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(td graph.TransformData) {
	var t, r geom.Point
	if td.Translation != nil {
		t = *td.Translation
	}
	if td.Rotation != nil {
		r = *td.Rotation
	}
	ts.translations = append(ts.translations, t)
	ts.rotations = append(ts.rotations, r)
}

func (ts *transformStack) pop() {
	if len(ts.translations) > 0 {
		ts.translations = ts.translations[:len(ts.translations)-1]
		ts.rotations = ts.rotations[:len(ts.rotations)-1]
	}
}

// matrix composes the stack, outermost placement first.
func (ts *transformStack) matrix() mgl32.Mat4 {
	m := mgl32.Ident4()
	for i := range ts.translations {
		m = m.Mul4(mesh.Placement(ts.translations[i], ts.rotations[i]))
	}
	return m
}

// place applies the stack to a solid, innermost placement first.
func (ts *transformStack) place(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	for i := len(ts.translations) - 1; i >= 0; i-- {
		s = placeSolid(k, s, ts.translations[i], ts.rotations[i])
	}
	return s
}

func placeSolid(k kernel.Kernel, s kernel.Solid, t, r geom.Point) kernel.Solid {
	if r != (geom.Point{}) {
		s = k.Rotate(s, r.X, r.Y, r.Z)
	}
	if t != (geom.Point{}) {
		s = k.Translate(s, t.X, t.Y, t.Z)
	}
	return s
}

// Tessellate walks the scene from its roots and returns one part per
// shape or solid reached, in traversal order. Boolean operands are
// consumed by their boolean and do not become parts. k may be nil when
// the scene has no solids. The scene is never mutated.
func Tessellate(s *graph.Scene, k kernel.Kernel) ([]*Part, error) {
	if s == nil {
		return nil, nil
	}

	var parts []*Part
	ts := newTransformStack()
	for _, rootID := range s.Roots {
		root := s.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := walkNode(s, k, root, ts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: root %s: %w", root.Label(), err)
		}
		parts = append(parts, collected...)
	}
	return parts, nil
}

// Merge combines the parts into one mesh, keeping them as Merged.Parts.
func Merge(parts []*Part) *mesh.Merged {
	return mesh.Merge(lo.Map(parts, func(p *Part, _ int) *mesh.Buffers { return p.Buffers })...)
}

func walkNode(s *graph.Scene, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*Part, error) {
	switch n.Kind {
	case graph.NodeShape:
		b, err := buildShape(n.Data)
		if err != nil {
			return nil, fmt.Errorf("shape %s: %w", n.Label(), err)
		}
		b.Transform(ts.matrix())
		return []*Part{{Name: n.Label(), NodeID: n.ID, Buffers: b}}, nil

	case graph.NodeSolid:
		return handleSolid(s, k, n, ts)

	case graph.NodeTransform:
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.Label(), n.Data)
		}
		ts.push(td)
		defer ts.pop()
		return walkChildren(s, k, n, ts)

	case graph.NodeGroup:
		return walkChildren(s, k, n, ts)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

func walkChildren(s *graph.Scene, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*Part, error) {
	var parts []*Part
	for _, child := range s.Children(n) {
		collected, err := walkNode(s, k, child, ts)
		if err != nil {
			return nil, err
		}
		parts = append(parts, collected...)
	}
	return parts, nil
}

// buildShape runs the shape builder for a shape payload.
func buildShape(d graph.NodeData) (*mesh.Buffers, error) {
	var (
		merged *mesh.Merged
		err    error
	)
	switch d := d.(type) {
	case graph.PolygonData:
		var res *extrude.PolygonsResult
		if res, err = extrude.Polygons(d.Polygons, d.Options); err == nil {
			merged = &res.Merged
		}
	case graph.LineData:
		var res *extrude.LinesResult
		if res, err = extrude.Polylines(d.Lines, d.Options); err == nil {
			merged = &res.Merged
		}
	case graph.SlopeData:
		var res *extrude.LinesResult
		if res, err = extrude.Slopes(d.Lines, d.Options); err == nil {
			merged = &res.Merged
		}
	case graph.PathData:
		var res *extrude.SpinesResult
		if res, err = extrude.Paths(d.Spines, d.Options); err == nil {
			merged = &res.Merged
		}
	case graph.TubeData:
		var res *extrude.SpinesResult
		if res, err = extrude.Tubes(d.Spines, d.Options); err == nil {
			merged = &res.Merged
		}
	case graph.SweepData:
		var res *extrude.SweepResult
		if res, err = extrude.PolygonsOnPath(d.Polygons, d.Options); err == nil {
			merged = &res.Merged
		}
	case graph.PlaneData:
		return extrude.Plane(d.Width, d.Height, d.SegW, d.SegH), nil
	case graph.CylinderData:
		return extrude.Cylinder(d.Center, d.Options), nil
	default:
		return nil, fmt.Errorf("unsupported shape data %T", d)
	}
	if err != nil {
		return nil, err
	}
	// A single part shares its slices with the merged buffers, so copy
	// before transforming in place.
	return merged.Buffers.Clone(), nil
}

func handleSolid(s *graph.Scene, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*Part, error) {
	if k == nil {
		return nil, fmt.Errorf("solid %s: no geometry kernel", n.Label())
	}
	solid, err := buildSolid(s, k, n)
	if err != nil {
		return nil, fmt.Errorf("solid %s: %w", n.Label(), err)
	}
	b, err := k.ToMesh(ts.place(k, solid))
	if err != nil {
		return nil, fmt.Errorf("solid %s: ToMesh: %w", n.Label(), err)
	}
	return []*Part{{Name: n.Label(), NodeID: n.ID, Buffers: b}}, nil
}

// buildSolid creates the kernel solid for a solid node, resolving boolean
// operands recursively.
func buildSolid(s *graph.Scene, k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	switch d := n.Data.(type) {
	case graph.BoxData:
		return k.Box(d.Size.X, d.Size.Y, d.Size.Z)
	case graph.RodData:
		segs := d.Segments
		if segs <= 0 {
			segs = defaultRodSegments
		}
		return k.Cylinder(d.Height, d.Radius, segs)
	case graph.BooleanData:
		if len(n.Children) != 2 {
			return nil, fmt.Errorf("%s needs 2 operands, got %d", d.Op, len(n.Children))
		}
		a, err := operand(s, k, n.Children[0])
		if err != nil {
			return nil, err
		}
		b, err := operand(s, k, n.Children[1])
		if err != nil {
			return nil, err
		}
		switch d.Op {
		case graph.BooleanUnion:
			return k.Union(a, b), nil
		case graph.BooleanDifference:
			return k.Difference(a, b), nil
		case graph.BooleanIntersection:
			return k.Intersection(a, b), nil
		}
		return nil, fmt.Errorf("unknown boolean op %d", d.Op)
	}
	return nil, fmt.Errorf("unsupported solid data %T", n.Data)
}

// operand resolves a boolean operand: a solid, or a placement of one.
func operand(s *graph.Scene, k kernel.Kernel, id graph.NodeID) (kernel.Solid, error) {
	n := s.Get(id)
	if n == nil {
		return nil, fmt.Errorf("operand %s does not exist", id.Short())
	}
	if !graph.IsSolidTree(s, n) {
		return nil, fmt.Errorf("operand %s is not a solid", n.Label())
	}
	if n.Kind == graph.NodeSolid {
		return buildSolid(s, k, n)
	}
	td, _ := n.Data.(graph.TransformData)
	inner, err := operand(s, k, n.Children[0])
	if err != nil {
		return nil, err
	}
	var t, r geom.Point
	if td.Translation != nil {
		t = *td.Translation
	}
	if td.Rotation != nil {
		r = *td.Rotation
	}
	return placeSolid(k, inner, t, r), nil
}
