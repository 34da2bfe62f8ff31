package graph

import (
	"github.com/chazu/polymesh/pkg/extrude"
	"github.com/chazu/polymesh/pkg/geom"
)

// ---------------------------------------------------------------------------
// Shapes
// ---------------------------------------------------------------------------

// PolygonData extrudes polygons into prisms.
type PolygonData struct {
	Polygons []geom.Polygon         `json:"polygons"`
	Options  extrude.PolygonOptions `json:"options"`
}

func (PolygonData) nodeData() {}

// LineData extrudes polylines into walls.
type LineData struct {
	Lines   []geom.Polyline     `json:"lines"`
	Options extrude.LineOptions `json:"options"`
}

func (LineData) nodeData() {}

// SlopeData extrudes polylines into walls with a sloped top.
type SlopeData struct {
	Lines   []geom.Polyline      `json:"lines"`
	Options extrude.SlopeOptions `json:"options"`
}

func (SlopeData) nodeData() {}

// PathData lays flat ribbons along 3D spines.
type PathData struct {
	Spines  [][]geom.Point      `json:"spines"`
	Options extrude.PathOptions `json:"options"`
}

func (PathData) nodeData() {}

// TubeData sweeps tubes along 3D spines.
type TubeData struct {
	Spines  [][]geom.Point      `json:"spines"`
	Options extrude.TubeOptions `json:"options"`
}

func (TubeData) nodeData() {}

// SweepData sweeps polygon cross sections along Options.Path.
type SweepData struct {
	Polygons []geom.Polygon        `json:"polygons"`
	Options  extrude.OnPathOptions `json:"options"`
}

func (SweepData) nodeData() {}

// PlaneData is a flat subdivided rectangle.
type PlaneData struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	SegW   int     `json:"seg_w"`
	SegH   int     `json:"seg_h"`
}

func (PlaneData) nodeData() {}

// CylinderData is a capped prism built directly as a mesh.
type CylinderData struct {
	Center  geom.Point              `json:"center"`
	Options extrude.CylinderOptions `json:"options"`
}

func (CylinderData) nodeData() {}

// ---------------------------------------------------------------------------
// Solids
// ---------------------------------------------------------------------------

// BoxData is a kernel box with its minimum corner at the origin.
type BoxData struct {
	Size geom.Point `json:"size"`
}

func (BoxData) nodeData() {}

// RodData is a kernel cylinder standing on the XY plane.
type RodData struct {
	Height   float64 `json:"height"`
	Radius   float64 `json:"radius"`
	Segments int     `json:"segments,omitempty"`
}

func (RodData) nodeData() {}

// BooleanOp enumerates solid boolean operations.
type BooleanOp int

const (
	BooleanUnion BooleanOp = iota
	BooleanDifference
	BooleanIntersection
)

func (op BooleanOp) String() string {
	switch op {
	case BooleanUnion:
		return "union"
	case BooleanDifference:
		return "difference"
	case BooleanIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// BooleanData combines the node's two children, which must be solids or
// placements of solids.
type BooleanData struct {
	Op BooleanOp `json:"op"`
}

func (BooleanData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData places its children. Created by the (place ...) form.
type TransformData struct {
	Translation *geom.Point `json:"translation,omitempty"`
	Rotation    *geom.Point `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData is a logical grouping. Created by the (group ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
