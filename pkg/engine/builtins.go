package engine

import (
	"fmt"

	"github.com/chazu/polymesh/pkg/config"
	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/graph"
	"github.com/chazu/polymesh/pkg/spine"
	zygo "github.com/glycerine/zygomys/zygo"
)

// builder holds the state of one evaluation: the scene being populated,
// the defaults for omitted options and the counter for anonymous nodes.
type builder struct {
	scene    *graph.Scene
	defaults config.Defaults
	anon     int
}

// add creates a node. Named nodes get an ID derived from their form and
// name; anonymous ones are numbered in creation order, so evaluating the
// same source twice yields the same IDs.
func (b *builder) add(form string, kind graph.NodeKind, name string, data graph.NodeData, children ...graph.NodeID) (*sexpNodeRef, error) {
	path := form + "/" + name
	if name == "" {
		b.anon++
		path = fmt.Sprintf("%s/_anon_%d", form, b.anon)
	} else if b.scene.Lookup(name) != nil {
		return nil, fmt.Errorf("%s: name %q is already defined", form, name)
	}
	n := &graph.Node{
		ID:       graph.NewNodeID(path),
		Kind:     kind,
		Name:     name,
		Children: children,
		Data:     data,
	}
	b.scene.AddNode(n)
	return &sexpNodeRef{id: n.ID, name: name}, nil
}

// shape parses :name and adds a shape node.
func (b *builder) shape(pa kwArgs, data graph.NodeData) (zygo.Sexp, error) {
	name, err := pa.name()
	if err != nil {
		return zygo.SexpNull, err
	}
	ref, err := b.add(pa.form, graph.NodeShape, name, data)
	if err != nil {
		return zygo.SexpNull, err
	}
	return ref, nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// registerBuiltins installs the DSL builtins into a zygomys environment.
// The builtins populate b.scene during evaluation.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens and kebab-case names match.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	// (vec2 x y) and (vec3 x y z)
	vec := func(dims int) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != dims {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly %d arguments, got %d", name, dims, len(args))
			}
			var c [3]float64
			for i, a := range args {
				f, err := toFloat64(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %c: %w", name, "xyz"[i], err)
				}
				c[i] = f
			}
			return &sexpPoint{p: geom.Pt3(c[0], c[1], c[2])}, nil
		}
	}
	env.AddFunction("vec2", vec(2))
	env.AddFunction("vec3", vec(3))

	// -----------------------------------------------------------------------
	// Geometry values
	// -----------------------------------------------------------------------

	// (ring (vec2 0 0) (vec2 10 0) (vec2 10 10))
	env.AddFunction("ring", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := collect(args, toPoint)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ring: %w", err)
		}
		if len(pts) < 3 {
			return zygo.SexpNull, fmt.Errorf("ring: needs at least 3 points, got %d", len(pts))
		}
		return &sexpRing{ring: geom.Ring(pts)}, nil
	})

	// (polygon outer hole...)
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		rings, err := collect(args, toRing)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		if len(rings) == 0 {
			return zygo.SexpNull, fmt.Errorf("polygon: needs an outer ring")
		}
		return &sexpPolygon{poly: geom.Polygon(rings)}, nil
	})

	// (line (vec2 0 0) (vec2 10 0)), also used for 3D spines
	env.AddFunction("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := collect(args, toPoint)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: %w", err)
		}
		if len(pts) < 2 {
			return zygo.SexpNull, fmt.Errorf("line: needs at least 2 points, got %d", len(pts))
		}
		return &sexpLine{line: geom.Polyline(pts)}, nil
	})

	// (round-line ln :size 1 :steps 10)
	env.AddFunction("round_line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("round-line", args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("round-line: expected 1 line, got %d arguments", len(pa.positional))
		}
		ln, err := toLine(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("round-line: %w", err)
		}
		size, steps := 1.0, spine.DefaultRoundSteps
		if err := firstErr(pa.float("size", &size), pa.int("steps", &steps)); err != nil {
			return zygo.SexpNull, err
		}
		if size <= 0 {
			return zygo.SexpNull, fmt.Errorf("round-line: size must be positive, got %g", size)
		}
		return &sexpLine{line: spine.Round(ln, size, steps)}, nil
	})

	// (offset-line ln distance), positive distances shift to the left.
	env.AddFunction("offset_line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("offset-line: expected a line and a distance, got %d arguments", len(args))
		}
		ln, err := toLine(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("offset-line: %w", err)
		}
		d, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("offset-line: %w", err)
		}
		out := spine.Offset(ln, d)
		if len(out) < 2 {
			return zygo.SexpNull, fmt.Errorf("offset-line: line has no extent to offset")
		}
		return &sexpLine{line: out}, nil
	})

	// -----------------------------------------------------------------------
	// Shapes
	// -----------------------------------------------------------------------

	// (extrude-polygon poly... :name "plate" :depth 2 :skip-top true :skip-bottom false)
	env.AddFunction("extrude_polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("extrude-polygon", args)
		polys, err := collect(pa.positional, toPolygon)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude-polygon: %w", err)
		}
		o := b.defaults.Polygon.Options()
		if err := firstErr(
			pa.float("depth", &o.Depth),
			pa.bool("skip-top", &o.SkipTop),
			pa.bool("skip-bottom", &o.SkipBottom),
		); err != nil {
			return zygo.SexpNull, err
		}
		return b.shape(pa, graph.PolygonData{Polygons: polys, Options: o})
	})

	// (extrude-line line... :depth 2 :width 1 :cut-corner true :bottom-stick-ground true :path-uv true)
	env.AddFunction("extrude_line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("extrude-line", args)
		lines, err := collect(pa.positional, toLine)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude-line: %w", err)
		}
		o := b.defaults.Line.Options()
		if err := firstErr(
			pa.float("depth", &o.Depth),
			pa.float("width", &o.Width),
			pa.bool("cut-corner", &o.CutCorner),
			pa.bool("bottom-stick-ground", &o.BottomStickGround),
			pa.bool("path-uv", &o.PathUV),
		); err != nil {
			return zygo.SexpNull, err
		}
		return b.shape(pa, graph.LineData{Lines: lines, Options: o})
	})

	// (slope line... :side :right :depth 2 :side-depth 0 :width 1)
	env.AddFunction("slope", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("slope", args)
		lines, err := collect(pa.positional, toLine)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("slope: %w", err)
		}
		o := b.defaults.Slope.Options()
		if err := firstErr(
			pa.float("depth", &o.Depth),
			pa.float("side-depth", &o.SideDepth),
			pa.float("width", &o.Width),
			pa.bool("bottom-stick-ground", &o.BottomStickGround),
			pa.bool("path-uv", &o.PathUV),
		); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["side"]; ok {
			s, err := toKeywordString(v)
			if err == nil {
				o.Side, err = config.ParseSide(s)
			}
			if err != nil {
				return zygo.SexpNull, pa.errorf("side", err)
			}
		}
		return b.shape(pa, graph.SlopeData{Lines: lines, Options: o})
	})

	// (path spine... :width 1 :corner-radius 0 :corner-split 10)
	env.AddFunction("path", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("path", args)
		spines, err := collect(pa.positional, toSpine)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("path: %w", err)
		}
		o := b.defaults.Path.Options()
		if err := firstErr(
			pa.float("width", &o.Width),
			pa.float("corner-radius", &o.CornerRadius),
			pa.int("corner-split", &o.CornerSplit),
		); err != nil {
			return zygo.SexpNull, err
		}
		return b.shape(pa, graph.PathData{Spines: spines, Options: o})
	})

	// (tube spine... :radius 1 :segments 8 :corner-radius 0 :corner-split 0 :start-rad 0)
	env.AddFunction("tube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("tube", args)
		spines, err := collect(pa.positional, toSpine)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tube: %w", err)
		}
		o := b.defaults.Tube.Options()
		if err := firstErr(
			pa.float("radius", &o.Radius),
			pa.int("segments", &o.RadialSegments),
			pa.float("corner-radius", &o.CornerRadius),
			pa.int("corner-split", &o.CornerSplit),
			pa.float("start-rad", &o.StartRad),
		); err != nil {
			return zygo.SexpNull, err
		}
		return b.shape(pa, graph.TubeData{Spines: spines, Options: o})
	})

	// (sweep poly... :path spine :open-end true :zero-cap-uv true)
	env.AddFunction("sweep", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("sweep", args)
		polys, err := collect(pa.positional, toPolygon)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sweep: %w", err)
		}
		v, ok := pa.kw["path"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("sweep: requires a :path")
		}
		o := b.defaults.Sweep.Options()
		if o.Path, err = toSpine(v); err != nil {
			return zygo.SexpNull, pa.errorf("path", err)
		}
		if err := firstErr(
			pa.float("corner-radius", &o.CornerRadius),
			pa.int("corner-split", &o.CornerSplit),
			pa.bool("open-end", &o.OpenEnd),
			pa.bool("zero-cap-uv", &o.ZeroCapUV),
		); err != nil {
			return zygo.SexpNull, err
		}
		return b.shape(pa, graph.SweepData{Polygons: polys, Options: o})
	})

	// (plane :width 10 :height 10 :seg-w 1 :seg-h 1)
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("plane", args)
		d := graph.PlaneData{Width: 1, Height: 1, SegW: 1, SegH: 1}
		if err := firstErr(
			pa.float("width", &d.Width),
			pa.float("height", &d.Height),
			pa.int("seg-w", &d.SegW),
			pa.int("seg-h", &d.SegH),
		); err != nil {
			return zygo.SexpNull, err
		}
		return b.shape(pa, d)
	})

	// (cylinder :center (vec2 0 0) :radius 1 :height 2 :segments 6)
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("cylinder", args)
		d := graph.CylinderData{Options: b.defaults.Cylinder.Options()}
		if err := firstErr(
			pa.point("center", &d.Center),
			pa.float("radius", &d.Options.Radius),
			pa.float("height", &d.Options.Height),
			pa.int("segments", &d.Options.RadialSegments),
		); err != nil {
			return zygo.SexpNull, err
		}
		return b.shape(pa, d)
	})

	// -----------------------------------------------------------------------
	// Solids
	// -----------------------------------------------------------------------

	// (box x y z) or (box :size (vec3 x y z))
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("box", args)
		var d graph.BoxData
		switch len(pa.positional) {
		case 0:
			if _, ok := pa.kw["size"]; !ok {
				return zygo.SexpNull, fmt.Errorf("box: requires x y z or :size")
			}
			if err := pa.point("size", &d.Size); err != nil {
				return zygo.SexpNull, err
			}
		case 3:
			var c [3]float64
			for i, a := range pa.positional {
				f, err := toFloat64(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("box: %c: %w", "xyz"[i], err)
				}
				c[i] = f
			}
			d.Size = geom.Pt3(c[0], c[1], c[2])
		default:
			return zygo.SexpNull, fmt.Errorf("box: expected 3 dimensions, got %d", len(pa.positional))
		}
		return b.solid(pa, d)
	})

	// (rod :height 10 :radius 2 :segments 32)
	env.AddFunction("rod", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("rod", args)
		d := graph.RodData{Segments: b.defaults.Kernel.RodSegments}
		if err := firstErr(
			pa.float("height", &d.Height),
			pa.float("radius", &d.Radius),
			pa.int("segments", &d.Segments),
		); err != nil {
			return zygo.SexpNull, err
		}
		return b.solid(pa, d)
	})

	// (union a b), (difference a b), (intersection a b)
	for _, op := range []graph.BooleanOp{graph.BooleanUnion, graph.BooleanDifference, graph.BooleanIntersection} {
		env.AddFunction(op.String(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(op.String(), args)
			if len(pa.positional) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s: requires exactly 2 solids, got %d", op, len(pa.positional))
			}
			operands := make([]graph.NodeID, 2)
			for i, a := range pa.positional {
				id, err := toNodeRef(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: operand %d: %w", op, i, err)
				}
				if n := b.scene.Get(id); n == nil || !graph.IsSolidTree(b.scene, n) {
					return zygo.SexpNull, fmt.Errorf("%s: operand %d is not a solid", op, i)
				}
				operands[i] = id
			}
			return b.solid(pa, graph.BooleanData{Op: op}, operands...)
		})
	}

	// -----------------------------------------------------------------------
	// Scene structure
	// -----------------------------------------------------------------------

	// (part "name")
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		n := b.scene.Lookup(partName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}
		return &sexpNodeRef{id: n.ID, name: partName}, nil
	})

	// (place ref... :at (vec3 0 0 19) :rotate (vec3 0 0 90))
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("place", args)
		children, err := collect(pa.positional, toNodeRef)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		if len(children) == 0 {
			return zygo.SexpNull, fmt.Errorf("place requires a part reference as first argument")
		}

		td := graph.TransformData{}
		if _, ok := pa.kw["at"]; ok {
			var at geom.Point
			if err := pa.point("at", &at); err != nil {
				return zygo.SexpNull, err
			}
			td.Translation = &at
		}
		if _, ok := pa.kw["rotate"]; ok {
			var rot geom.Point
			if err := pa.point("rotate", &rot); err != nil {
				return zygo.SexpNull, err
			}
			td.Rotation = &rot
		}

		placeName, err := pa.name()
		if err != nil {
			return zygo.SexpNull, err
		}
		ref, err := b.add("place", graph.NodeTransform, placeName, td, children...)
		if err != nil {
			return zygo.SexpNull, err
		}
		return ref, nil
	})

	// (group "name" child...)
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("group requires a name argument")
		}
		groupName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("group: name: %w", err)
		}
		children, err := collect(args[1:], toNodeRef)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("group: %w", err)
		}
		ref, err := b.add("group", graph.NodeGroup, groupName, graph.GroupData{}, children...)
		if err != nil {
			return zygo.SexpNull, err
		}
		return ref, nil
	})
}

// solid parses :name and adds a solid node.
func (b *builder) solid(pa kwArgs, data graph.NodeData, operands ...graph.NodeID) (zygo.Sexp, error) {
	name, err := pa.name()
	if err != nil {
		return zygo.SexpNull, err
	}
	ref, err := b.add(pa.form, graph.NodeSolid, name, data, operands...)
	if err != nil {
		return zygo.SexpNull, err
	}
	return ref, nil
}
