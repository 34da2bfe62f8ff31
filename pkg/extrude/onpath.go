package extrude

import (
	"fmt"

	"github.com/chazu/polymesh/pkg/earcut"
	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/chazu/polymesh/pkg/spine"
	"gonum.org/v1/gonum/spatial/r3"
)

// OnPathOptions controls sweeping polygons along a path.
type OnPathOptions struct {
	// Path is the spine every polygon is swept along.
	Path []geom.Point

	CornerRadius float64
	CornerSplit  int

	// OpenEnd leaves both ends uncapped.
	OpenEnd bool

	// ZeroCapUV sets every cap UV to zero instead of projecting the cross
	// section onto the cap.
	ZeroCapUV bool
}

// SweepResult is the merged mesh of polygons swept along a path.
type SweepResult struct {
	mesh.Merged

	// Polygons holds the normalized input.
	Polygons []geom.Polygon

	// Frames are the frames along the path shared by all polygons.
	Frames []spine.Frame
}

// PolygonsOnPath sweeps each polygon along opts.Path. The polygons are
// placed in the plane spanned by each frame's up and right vectors, with
// the centre of their combined bounding box on the path: local x runs
// along up and local y along right. Both ends are capped unless OpenEnd
// is set.
func PolygonsOnPath(polys []geom.Polygon, opts OnPathOptions) (*SweepResult, error) {
	frames, err := spine.Frames(opts.Path, spine.FrameOptions{
		CornerRadius: max(0, opts.CornerRadius),
		CornerSplit:  max(0, opts.CornerSplit),
		Up:           worldUp,
	})
	if err != nil {
		return nil, fmt.Errorf("extrude: sweep path: %w", err)
	}

	normalized := make([]geom.Polygon, 0, len(polys))
	for i, p := range polys {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("extrude: sweep polygon %d: %w", i, err)
		}
		normalized = append(normalized, p.Normalize())
	}
	center := geom.Bound(normalized).Center()

	parts := make([]*mesh.Buffers, 0, len(polys))
	for i, p := range normalized {
		b, err := sweepPolygon(p, frames, geom.Pt(center[0], center[1]), opts)
		if err != nil {
			return nil, fmt.Errorf("extrude: sweep polygon %d: %w", i, err)
		}
		parts = append(parts, b)
	}

	return &SweepResult{Merged: *mesh.Merge(parts...), Polygons: normalized, Frames: frames}, nil
}

// sweepPolygon builds the walls and caps of one polygon. Rings are
// reversed first so the outer ring runs counter-clockwise in the cross
// section, which makes the walls between consecutive frames face out.
func sweepPolygon(p geom.Polygon, frames []spine.Frame, center geom.Point, opts OnPathOptions) (*mesh.Buffers, error) {
	local := make(geom.Polygon, len(p))
	for i, r := range p {
		rr := r.Reversed()
		for j := range rr {
			rr[j] = geom.Pt(rr[j].X-center.X, rr[j].Y-center.Y)
		}
		local[i] = rr
	}

	place := func(f spine.Frame, q geom.Point) geom.Point {
		return r3.Add(f.Pos, r3.Add(r3.Scale(q.X, f.Up), r3.Scale(q.Y, f.Right)))
	}

	n := local.PointCount()
	b := mesh.New((n+len(local))*len(frames)+n*2, n*2*len(frames)+n*2)

	outerLen := ringLength(local[0])
	for _, ring := range local {
		ringLen := ringLength(ring)
		if ringLen == 0 {
			continue
		}
		along := closedDistances(ring)
		count := uint32(len(ring))

		var prev uint32
		for k, f := range frames {
			base := uint32(b.VertexCount())
			for j := 0; j <= len(ring); j++ {
				q := ring[j%len(ring)]
				b.AddVertex(place(f, q), f.Dist/ringLen, along[j]/ringLen)
			}
			if k > 0 {
				mesh.Strip(b, prev, base, count)
			}
			prev = base
		}
	}

	if !opts.OpenEnd {
		data, holes := geom.Flatten(local)
		tris, err := earcut.Triangulate(data, holes, 2)
		if err != nil {
			return nil, err
		}
		capUV := func(q geom.Point) (float64, float64) {
			if opts.ZeroCapUV || outerLen == 0 {
				return 0, 0
			}
			return q.X / outerLen, q.Y / outerLen
		}

		for _, end := range []struct {
			frame   spine.Frame
			reverse bool
		}{{frames[0], true}, {frames[len(frames)-1], false}} {
			base := uint32(b.VertexCount())
			for _, ring := range local {
				for _, q := range ring {
					u, v := capUV(q)
					b.AddVertex(place(end.frame, q), u, v)
				}
			}
			for t := 0; t+2 < len(tris); t += 3 {
				i0, i1, i2 := base+uint32(tris[t]), base+uint32(tris[t+1]), base+uint32(tris[t+2])
				if end.reverse {
					i1, i2 = i2, i1
				}
				b.AddTriangle(i0, i1, i2)
			}
		}
	}

	b.ComputeNormals()
	return b, nil
}

// ringLength returns the perimeter of a closed ring.
func ringLength(r geom.Ring) float64 {
	d := closedDistances(r)
	return d[len(d)-1]
}

// closedDistances returns the cumulative distance at each point of r and,
// as a final entry, the full perimeter back to the first point.
func closedDistances(r geom.Ring) []float64 {
	out := make([]float64, len(r)+1)
	for i := 1; i <= len(r); i++ {
		out[i] = out[i-1] + r3.Norm(r3.Sub(r[i%len(r)], r[i-1]))
	}
	return out
}
