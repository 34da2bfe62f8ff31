package extrude

import (
	"fmt"

	"github.com/chazu/polymesh/pkg/earcut"
	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/mesh"
)

// PolygonOptions controls polygon extrusion.
type PolygonOptions struct {
	// Depth is the height of the prism. Zero means 2.
	Depth float64

	SkipTop    bool
	SkipBottom bool
}

// DefaultPolygonOptions returns the defaults for Polygons.
func DefaultPolygonOptions() PolygonOptions {
	return PolygonOptions{Depth: 2}
}

func (o PolygonOptions) withDefaults() PolygonOptions {
	if o.Depth == 0 {
		o.Depth = 2
	}
	if o.Depth < 0 {
		o.Depth = 0
	}
	return o
}

// PolygonsResult is the merged mesh of extruded polygons.
type PolygonsResult struct {
	mesh.Merged

	// Polygons holds the normalized input: rings open, outer rings
	// clockwise and holes counter-clockwise.
	Polygons []geom.Polygon
}

// Polygons extrudes each polygon into a prism with a top cap, a bottom
// cap and one wall per ring edge.
func Polygons(polys []geom.Polygon, opts PolygonOptions) (*PolygonsResult, error) {
	opts = opts.withDefaults()
	parts := make([]*mesh.Buffers, 0, len(polys))
	normalized := make([]geom.Polygon, 0, len(polys))

	for i, p := range polys {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("extrude: polygon %d: %w", i, err)
		}
		np := p.Normalize()
		b, err := extrudePolygon(np, opts)
		if err != nil {
			return nil, fmt.Errorf("extrude: polygon %d: %w", i, err)
		}
		parts = append(parts, b)
		normalized = append(normalized, np)
	}

	return &PolygonsResult{Merged: *mesh.Merge(parts...), Polygons: normalized}, nil
}

func extrudePolygon(p geom.Polygon, opts PolygonOptions) (*mesh.Buffers, error) {
	data, holes := geom.Flatten(p)
	tris, err := earcut.Triangulate(data, holes, 2)
	if err != nil {
		return nil, err
	}

	n := p.PointCount()
	b := mesh.New(n*2+n*4, len(tris)/3*2+n*2)
	pts := make([]geom.Point, 0, n)
	for _, r := range p {
		pts = append(pts, r...)
	}
	mesh.Caps(b, pts, tris, opts.Depth, !opts.SkipTop, !opts.SkipBottom)
	for _, r := range p {
		mesh.RingWalls(b, r, opts.Depth)
	}
	b.ComputeNormals()
	return b, nil
}
