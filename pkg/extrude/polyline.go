package extrude

import (
	"errors"
	"fmt"

	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/chazu/polymesh/pkg/spine"
)

// LineOptions controls polyline extrusion.
type LineOptions struct {
	// Depth is the wall height. Zero means 2.
	Depth float64

	// Width is the distance between the rails. Zero means 1.
	Width float64

	// CutCorner bevels over-long miters.
	CutCorner bool

	// BottomStickGround puts the bottom face at z=0 instead of at the
	// line's own elevation.
	BottomStickGround bool

	// PathUV maps u to the distance along the line instead of using
	// planar x and y.
	PathUV bool
}

// DefaultLineOptions returns the defaults for Polylines.
func DefaultLineOptions() LineOptions {
	return LineOptions{Depth: 2, Width: 1}
}

func (o LineOptions) withDefaults() LineOptions {
	if o.Depth == 0 {
		o.Depth = 2
	}
	if o.Width == 0 {
		o.Width = 1
	}
	o.Depth = max(0, o.Depth)
	o.Width = max(0, o.Width)
	return o
}

// Side selects which rail of a slope is offset from the line.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// SlopeOptions controls slope extrusion.
type SlopeOptions struct {
	// Depth is the height of the rail on the line itself. Zero means 2.
	Depth float64

	// SideDepth is the height of the offset rail.
	SideDepth float64

	// Width is the distance from the line to the offset rail. Zero
	// means 1.
	Width float64

	Side              Side
	BottomStickGround bool
	PathUV            bool
}

// DefaultSlopeOptions returns the defaults for Slopes.
func DefaultSlopeOptions() SlopeOptions {
	return SlopeOptions{Depth: 2, Width: 1, Side: SideLeft}
}

// LinesResult is the merged mesh of extruded polylines or slopes.
type LinesResult struct {
	mesh.Merged

	// Lines echoes the input lines.
	Lines []geom.Polyline

	// Ribbons holds the widening result of each line, nil for lines that
	// collapsed to a single point.
	Ribbons []*spine.Ribbon
}

// Degraded returns the number of offset pairs reused across all lines
// because their offset lines never met.
func (r *LinesResult) Degraded() int {
	n := 0
	for _, rb := range r.Ribbons {
		if rb != nil {
			n += rb.Degraded
		}
	}
	return n
}

// ribbonSpec describes one extruded ribbon.
type ribbonSpec struct {
	left, right           geom.Polyline
	leftDepth, rightDepth float64
	width                 float64
	stickGround           bool
	dist                  []float64 // nil for planar UVs
}

// Polylines widens each line into a ribbon and extrudes it into a wall
// with a top face, a bottom face, two long sides and two end caps.
//
// A line whose points all coincide yields an empty mesh.
func Polylines(lines []geom.Polyline, opts LineOptions) (*LinesResult, error) {
	opts = opts.withDefaults()
	res := &LinesResult{Lines: cloneLines(lines), Ribbons: make([]*spine.Ribbon, len(lines))}
	parts := make([]*mesh.Buffers, 0, len(lines))

	for i, line := range res.Lines {
		rb, err := spine.Expand(line, spine.ExpandOptions{Width: opts.Width, CutCorner: opts.CutCorner})
		if errors.Is(err, geom.ErrDegenerateGeometry) {
			parts = append(parts, mesh.New(0, 0))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("extrude: line %d: %w", i, err)
		}
		res.Ribbons[i] = rb

		rs := ribbonSpec{
			left:        rb.Left,
			right:       rb.Right,
			leftDepth:   opts.Depth,
			rightDepth:  opts.Depth,
			width:       opts.Width,
			stickGround: opts.BottomStickGround,
		}
		if opts.PathUV {
			rs.dist = uvDistances(line, rb.Left)
		}
		parts = append(parts, buildRibbon(rs))
	}

	res.Merged = *mesh.Merge(parts...)
	return res, nil
}

// Slopes extrudes each line against a rail offset by Width to one side.
// The line's own rail is raised by Depth and the offset rail by
// SideDepth, which gives a sloped top.
func Slopes(lines []geom.Polyline, opts SlopeOptions) (*LinesResult, error) {
	lo := LineOptions{Depth: opts.Depth, Width: opts.Width}.withDefaults()
	sideDepth := max(0, opts.SideDepth)

	res := &LinesResult{Lines: cloneLines(lines), Ribbons: make([]*spine.Ribbon, len(lines))}
	parts := make([]*mesh.Buffers, 0, len(lines))

	for i, line := range res.Lines {
		// Widening by twice the width puts each rail a full width away.
		rb, err := spine.Expand(line, spine.ExpandOptions{Width: lo.Width * 2})
		if errors.Is(err, geom.ErrDegenerateGeometry) {
			parts = append(parts, mesh.New(0, 0))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("extrude: slope %d: %w", i, err)
		}
		res.Ribbons[i] = rb

		rs := ribbonSpec{width: lo.Width, stickGround: opts.BottomStickGround}
		if opts.Side == SideLeft {
			rs.left, rs.right = rb.Left, line
			rs.leftDepth, rs.rightDepth = sideDepth, lo.Depth
		} else {
			rs.left, rs.right = line, rb.Right
			rs.leftDepth, rs.rightDepth = lo.Depth, sideDepth
		}
		if opts.PathUV {
			rs.dist = uvDistances(line, rs.left)
		}
		parts = append(parts, buildRibbon(rs))
	}

	res.Merged = *mesh.Merge(parts...)
	return res, nil
}

// buildRibbon lays out four blocks of n vertices: top left, top right,
// bottom left and bottom right. The top and bottom faces index into them;
// the walls get their own vertices.
func buildRibbon(rs ribbonSpec) *mesh.Buffers {
	n := len(rs.left)
	b := mesh.New(n*4+(n+1)*8, n*4+(n+1)*4)

	topL := make([]geom.Point, n)
	topR := make([]geom.Point, n)
	botL := make([]geom.Point, n)
	botR := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		l, r := rs.left[i], rs.right[i]
		topL[i] = geom.Pt3(l.X, l.Y, l.Z+rs.leftDepth)
		topR[i] = geom.Pt3(r.X, r.Y, r.Z+rs.rightDepth)
		botL[i], botR[i] = l, r
		if rs.stickGround {
			botL[i].Z, botR[i].Z = 0, 0
		}
	}

	for _, block := range []struct {
		pts []geom.Point
		v   float64
	}{{topL, 1}, {topR, 0}, {botL, 1}, {botR, 0}} {
		for i, p := range block.pts {
			if rs.dist != nil {
				b.AddVertex(p, rs.dist[i], block.v)
			} else {
				b.AddVertex(p, p.X, p.Y)
			}
		}
	}

	un := uint32(n)
	for i := uint32(0); i+1 < un; i++ {
		a1, b1, c1, d1 := i, i+1, i+un, i+1+un
		b.AddTriangle(a1, c1, b1)
		b.AddTriangle(c1, d1, b1)

		a2, b2, c2, d2 := a1+2*un, b1+2*un, c1+2*un, d1+2*un
		b.AddTriangle(a2, b2, c2)
		b.AddTriangle(c2, b2, d2)
	}

	wall := func(i, j int, top, bot []geom.Point, depthI, depthJ float64) {
		tl, tr, bl, br := top[i], top[j], bot[i], bot[j]
		uv := mesh.SideWallUV(tl, tr, bl, br)
		if rs.dist != nil && rs.width > 0 {
			uv = [4][2]float64{
				{rs.dist[i], depthI / rs.width},
				{rs.dist[j], depthJ / rs.width},
				{rs.dist[i], 0},
				{rs.dist[j], 0},
			}
		}
		mesh.SideWall(b, tl, tr, bl, br, uv)
	}
	for i := 0; i+1 < n; i++ {
		wall(i, i+1, topL, botL, rs.leftDepth, rs.leftDepth)
	}
	for i := n - 1; i > 0; i-- {
		wall(i, i-1, topR, botR, rs.rightDepth, rs.rightDepth)
	}

	// End caps run from the right rail to the left at the start and back
	// at the end.
	endCap := func(tl, tr, bl, br geom.Point, du float64) {
		uv := mesh.SideWallUV(tl, tr, bl, br)
		if rs.dist != nil && rs.width > 0 {
			uv = [4][2]float64{
				{du, (tl.Z - bl.Z) / rs.width},
				{du, (tr.Z - br.Z) / rs.width},
				{du, 0},
				{du, 0},
			}
		}
		mesh.SideWall(b, tl, tr, bl, br, uv)
	}
	var first, last float64
	if rs.dist != nil {
		first, last = rs.dist[0], rs.dist[n-1]
	}
	endCap(topR[0], topL[0], botR[0], botL[0], first)
	endCap(topL[n-1], topR[n-1], botL[n-1], botR[n-1], last)

	b.ComputeNormals()
	return b
}

// uvDistances returns the cumulative distance at each rail point, measured
// along line when the rail has one point per line point and along rail
// otherwise.
func uvDistances(line, rail geom.Polyline) []float64 {
	if len(rail) == len(line) {
		return line.Distances()
	}
	return rail.Distances()
}

func cloneLines(lines []geom.Polyline) []geom.Polyline {
	out := make([]geom.Polyline, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
	}
	return out
}
