package extrude

import (
	"errors"
	"fmt"

	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/chazu/polymesh/pkg/spine"
	"gonum.org/v1/gonum/spatial/r3"
)

var worldUp = geom.Pt3(0, 0, 1)

// PathOptions controls flat ribbons along 3D spines.
type PathOptions struct {
	// Width is the ribbon width. Zero means 1.
	Width float64

	// CornerRadius rounds interior corners when positive.
	CornerRadius float64

	// CornerSplit is the number of segments per rounded corner. Zero
	// means 10.
	CornerSplit int
}

// DefaultPathOptions returns the defaults for Paths.
func DefaultPathOptions() PathOptions {
	return PathOptions{Width: 1, CornerSplit: 10}
}

func (o PathOptions) withDefaults() PathOptions {
	if o.Width <= 0 {
		o.Width = 1
	}
	if o.CornerSplit <= 0 {
		o.CornerSplit = 10
	}
	o.CornerRadius = max(0, o.CornerRadius)
	return o
}

// SpinesResult is the merged mesh of shapes swept along spines.
type SpinesResult struct {
	mesh.Merged

	// Spines echoes the input spines.
	Spines [][]geom.Point

	// Frames holds the frames each spine was swept along, nil for spines
	// that collapsed to a single point.
	Frames [][]spine.Frame
}

// Paths lays a flat ribbon of Width along each spine, facing the frame's
// up vector. Sharp corners are bevelled with a wedge on the outside of the
// turn.
func Paths(spines [][]geom.Point, opts PathOptions) (*SpinesResult, error) {
	opts = opts.withDefaults()
	res := &SpinesResult{Spines: cloneSpines(spines), Frames: make([][]spine.Frame, len(spines))}
	parts := make([]*mesh.Buffers, 0, len(spines))

	for i, pts := range res.Spines {
		frames, err := spine.Frames(pts, spine.FrameOptions{
			CornerRadius: opts.CornerRadius,
			CornerSplit:  opts.CornerSplit,
			Up:           worldUp,
		})
		if errors.Is(err, geom.ErrDegenerateGeometry) {
			parts = append(parts, mesh.New(0, 0))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("extrude: path %d: %w", i, err)
		}
		res.Frames[i] = frames
		parts = append(parts, buildPath(frames, opts.Width))
	}

	res.Merged = *mesh.Merge(parts...)
	return res, nil
}

func buildPath(frames []spine.Frame, width float64) *mesh.Buffers {
	hw := width / 2
	b := mesh.New(len(frames)*5, len(frames)*3)

	section := func(f spine.Frame, right geom.Point, scale float64) uint32 {
		off := r3.Scale(hw*scale, right)
		u := f.Dist / width
		i := b.AddVertexNormal(r3.Sub(f.Pos, off), f.Up, u, 0)
		b.AddVertexNormal(r3.Add(f.Pos, off), f.Up, u, 1)
		return i
	}

	prev := section(frames[0], frames[0].Right, frames[0].WidthScale)
	for k := 1; k < len(frames); k++ {
		f := frames[k]
		if !f.Sharp || k == len(frames)-1 {
			cur := section(f, f.Right, f.WidthScale)
			mesh.Strip(b, prev, cur, 1)
			prev = cur
			continue
		}

		// Split the corner into a section square to the incoming segment
		// and one square to the outgoing segment, and fill the gap on the
		// outside of the turn.
		inDir := r3.NewRotation(-f.Turn/2, f.Up).Rotate(f.Dir)
		outDir := r3.NewRotation(f.Turn/2, f.Up).Rotate(f.Dir)
		a := section(f, r3.Cross(inDir, f.Up), 1)
		mesh.Strip(b, prev, a, 1)
		c := b.AddVertexNormal(f.Pos, f.Up, f.Dist/width, 0.5)
		o := section(f, r3.Cross(outDir, f.Up), 1)

		w0, w1 := a+1, o+1 // outer side is the right rail on a left turn
		if f.Turn < 0 {
			w0, w1 = o, a
		}
		if wedgeFacesUp(b, c, w0, w1, f.Up) {
			b.AddTriangle(c, w0, w1)
		} else {
			b.AddTriangle(c, w1, w0)
		}
		prev = o
	}
	return b
}

func wedgeFacesUp(b *mesh.Buffers, c, i, j uint32, up geom.Point) bool {
	pc := b.Vertex(int(c))
	n := r3.Cross(r3.Sub(b.Vertex(int(i)), pc), r3.Sub(b.Vertex(int(j)), pc))
	return r3.Dot(n, up) >= 0
}

func cloneSpines(spines [][]geom.Point) [][]geom.Point {
	out := make([][]geom.Point, len(spines))
	for i, s := range spines {
		out[i] = append([]geom.Point(nil), s...)
	}
	return out
}
