package spine

import (
	"fmt"
	"math"

	"github.com/chazu/polymesh/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// sharpThreshold is how far the cosine of the turn angle may drop below
	// one before a corner counts as sharp.
	sharpThreshold = 0.05

	// radiusShrink keeps the two corner curves on a segment from touching.
	radiusShrink = 0.999999

	minWidthScale = math.Sqrt2 / 2
)

// Frame is an oriented sample along a spine.
type Frame struct {
	Pos   geom.Point
	Dir   geom.Point // unit tangent
	Up    geom.Point
	Right geom.Point // Dir × Up

	// Dist is the arc length from the first frame.
	Dist float64

	// WidthScale narrows the cross-section at corners. It is in
	// [1/√2, 1].
	WidthScale float64

	// Sharp marks an unrounded corner whose turn is large enough that
	// ribbons should bevel it.
	Sharp bool

	// Turn is the signed turn angle about Up in radians. Positive turns
	// left.
	Turn float64
}

// FrameOptions controls frame generation.
type FrameOptions struct {
	// CornerRadius rounds interior corners with a quadratic curve when it
	// and CornerSplit are both positive.
	CornerRadius float64

	// CornerSplit is the number of curve segments per rounded corner.
	CornerSplit int

	// Up pins the reference up vector. The zero vector selects parallel
	// transport from an automatic initial up.
	Up geom.Point
}

type sample struct {
	pos     geom.Point
	dir     geom.Point
	in, out geom.Point
	corner  bool
}

// Frames builds oriented frames along points.
//
// With no rounding there is exactly one frame per input point. Rounding
// replaces every interior point with CornerSplit+1 samples of a quadratic
// curve whose control point is the corner itself.
func Frames(points []geom.Point, opts FrameOptions) ([]Frame, error) {
	n := len(points)
	if n < 2 {
		return nil, fmt.Errorf("spine: frames need 2 points, got %d: %w", n, geom.ErrInsufficientPoints)
	}

	segs, err := segmentDirs(points)
	if err != nil {
		return nil, err
	}

	samples := buildSamples(points, segs, opts)
	frames := make([]Frame, len(samples))

	var up, right geom.Point
	fixedUp := unit(opts.Up)
	for k, s := range samples {
		if k == 0 {
			up, right = initialBasis(s.dir, fixedUp)
		} else if isZero(fixedUp) {
			up = transport(up, samples[k-1].dir, s.dir)
			right = r3.Cross(s.dir, up)
		} else {
			r := unit(r3.Cross(s.dir, fixedUp))
			if isZero(r) {
				r = right
			}
			right = r
			up = unit(r3.Cross(right, s.dir))
		}

		f := Frame{Pos: s.pos, Dir: s.dir, Up: up, Right: right, WidthScale: 1}
		if k > 0 {
			f.Dist = frames[k-1].Dist + r3.Norm(r3.Sub(s.pos, samples[k-1].pos))
		}

		in, out := s.in, s.out
		if !s.corner {
			in, out = chordDirs(samples, k)
		}
		if !isZero(in) && !isZero(out) {
			cos := clamp(r3.Dot(in, out), -1, 1)
			theta := math.Acos(cos)
			f.WidthScale = clamp(math.Cos(theta/2), minWidthScale, 1)
			f.Turn = math.Atan2(r3.Dot(r3.Cross(in, out), up), cos)
			f.Sharp = s.corner && math.Abs(cos-1) > sharpThreshold
		}
		frames[k] = f
	}
	return frames, nil
}

// segmentDirs returns the unit direction of every segment. Zero-length
// segments borrow the direction of the nearest following segment, or of
// the nearest preceding one at the tail.
func segmentDirs(points []geom.Point) ([]geom.Point, error) {
	segs := make([]geom.Point, len(points)-1)
	for i := range segs {
		segs[i] = unit(r3.Sub(points[i+1], points[i]))
	}

	var next geom.Point
	for i := len(segs) - 1; i >= 0; i-- {
		if isZero(segs[i]) {
			segs[i] = next
		} else {
			next = segs[i]
		}
	}
	var prev geom.Point
	for i := range segs {
		if isZero(segs[i]) {
			segs[i] = prev
		} else {
			prev = segs[i]
		}
	}
	if isZero(segs[0]) {
		return nil, fmt.Errorf("spine: all %d points coincide: %w", len(points), geom.ErrDegenerateGeometry)
	}
	return segs, nil
}

func buildSamples(points, segs []geom.Point, opts FrameOptions) []sample {
	n := len(points)
	rounded := opts.CornerRadius > 0 && opts.CornerSplit > 0

	capHint := n
	if rounded {
		capHint += (n - 2) * opts.CornerSplit
	}
	out := make([]sample, 0, capHint)
	out = append(out, sample{pos: points[0], dir: segs[0], out: segs[0]})

	for i := 1; i < n-1; i++ {
		p := points[i]
		in, o := segs[i-1], segs[i]
		if !rounded {
			dir := unit(r3.Add(in, o))
			if isZero(dir) {
				dir = o
			}
			out = append(out, sample{pos: p, dir: dir, in: in, out: o, corner: true})
			continue
		}

		lenIn := r3.Norm(r3.Sub(p, points[i-1]))
		lenOut := r3.Norm(r3.Sub(points[i+1], p))
		r1 := math.Min(opts.CornerRadius, lenIn/2*radiusShrink)
		r2 := math.Min(opts.CornerRadius, lenOut/2*radiusShrink)
		v0 := r3.Sub(p, r3.Scale(r1, in))
		v2 := r3.Add(p, r3.Scale(r2, o))

		for j := 0; j <= opts.CornerSplit; j++ {
			t := float64(j) / float64(opts.CornerSplit)
			out = append(out, sample{
				pos: quadBezier(v0, p, v2, t),
				dir: quadTangent(v0, p, v2, t, in, o),
			})
		}
	}

	last := segs[len(segs)-1]
	return append(out, sample{pos: points[n-1], dir: last, in: last})
}

func quadBezier(p0, p1, p2 geom.Point, t float64) geom.Point {
	u := 1 - t
	return r3.Add(r3.Add(r3.Scale(u*u, p0), r3.Scale(2*u*t, p1)), r3.Scale(t*t, p2))
}

// quadTangent returns the normalized derivative of the curve at t, falling
// back to the incoming or outgoing direction where the derivative vanishes.
func quadTangent(p0, p1, p2 geom.Point, t float64, in, out geom.Point) geom.Point {
	d := r3.Add(r3.Scale(2*(1-t), r3.Sub(p1, p0)), r3.Scale(2*t, r3.Sub(p2, p1)))
	if u := unit(d); !isZero(u) {
		return u
	}
	if t < 0.5 {
		return in
	}
	return out
}

// chordDirs returns the directions of the chords into and out of sample k.
// Ends and zero-length chords yield the zero vector.
func chordDirs(samples []sample, k int) (in, out geom.Point) {
	if k > 0 {
		in = unit(r3.Sub(samples[k].pos, samples[k-1].pos))
	}
	if k < len(samples)-1 {
		out = unit(r3.Sub(samples[k+1].pos, samples[k].pos))
	}
	return in, out
}

// initialBasis picks the first up and right vectors for dir.
func initialBasis(dir, fixedUp geom.Point) (up, right geom.Point) {
	ref := fixedUp
	if isZero(ref) {
		ref = autoUp(dir)
	}
	right = unit(r3.Cross(dir, ref))
	if isZero(right) {
		right = unit(r3.Cross(dir, autoUp(dir)))
	}
	up = unit(r3.Cross(right, dir))
	return up, right
}

func autoUp(dir geom.Point) geom.Point {
	if math.Abs(dir.Z) < 0.999 {
		return geom.Pt3(0, 0, 1)
	}
	return geom.Pt3(0, 1, 0)
}

// transport rotates up by the rotation taking prev onto dir and
// re-orthogonalizes it against dir.
func transport(up, prev, dir geom.Point) geom.Point {
	axis := r3.Cross(prev, dir)
	if s := r3.Norm(axis); s > 1e-12 {
		angle := math.Atan2(s, r3.Dot(prev, dir))
		up = r3.NewRotation(angle, r3.Scale(1/s, axis)).Rotate(up)
	}
	up = unit(r3.Sub(up, r3.Scale(r3.Dot(up, dir), dir)))
	if isZero(up) {
		up, _ = initialBasis(dir, geom.Point{})
	}
	return up
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
