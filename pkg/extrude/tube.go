package extrude

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/chazu/polymesh/pkg/spine"
	"gonum.org/v1/gonum/spatial/r3"
)

const minRadialSegments = 3

// TubeOptions controls tubes swept along spines.
type TubeOptions struct {
	// Radius is the tube radius. Zero means 1.
	Radius float64

	// RadialSegments is the number of sides. Zero means 8 and the minimum
	// is 3.
	RadialSegments int

	// CornerRadius and CornerSplit round interior corners.
	CornerRadius float64
	CornerSplit  int

	// StartRad rotates the first side about the spine, measured from the
	// frame's up vector.
	StartRad float64
}

// DefaultTubeOptions returns the defaults for Tubes.
func DefaultTubeOptions() TubeOptions {
	return TubeOptions{Radius: 1, RadialSegments: 8, StartRad: -math.Pi / 4}
}

func (o TubeOptions) withDefaults() TubeOptions {
	if o.Radius <= 0 {
		o.Radius = 1
	}
	if o.RadialSegments == 0 {
		o.RadialSegments = 8
	}
	o.RadialSegments = max(minRadialSegments, o.RadialSegments)
	o.CornerRadius = max(0, o.CornerRadius)
	o.CornerSplit = max(0, o.CornerSplit)
	return o
}

// Tubes sweeps a regular polygon of RadialSegments sides around each
// spine. Every ring repeats its first vertex so the texture wraps once
// around the tube. The ends are left open.
func Tubes(spines [][]geom.Point, opts TubeOptions) (*SpinesResult, error) {
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
			return nil, fmt.Errorf("extrude: tube %d: %w", i, err)
		}
		res.Frames[i] = frames
		parts = append(parts, buildTube(frames, opts))
	}

	res.Merged = *mesh.Merge(parts...)
	return res, nil
}

func buildTube(frames []spine.Frame, opts TubeOptions) *mesh.Buffers {
	segs := opts.RadialSegments
	circum := 2 * math.Pi * opts.Radius
	b := mesh.New(len(frames)*(segs+1), (len(frames)-1)*segs*2)

	var prev uint32
	for k, f := range frames {
		base := uint32(b.VertexCount())
		for i := 0; i <= segs; i++ {
			angle := opts.StartRad + 2*math.Pi*float64(i)/float64(segs)
			n := r3.NewRotation(angle, f.Dir).Rotate(f.Up)
			p := r3.Add(f.Pos, r3.Scale(opts.Radius*f.WidthScale, n))
			b.AddVertexNormal(p, n, f.Dist/circum, float64(i)/float64(segs))
		}
		if k > 0 {
			mesh.Strip(b, prev, base, uint32(segs))
		}
		prev = base
	}
	return b
}
