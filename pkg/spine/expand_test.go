package spine_test

import (
	"math"
	"testing"

	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/spine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPoint(t *testing.T, want, got geom.Point, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, 1e-9, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, 1e-9, msgAndArgs...)
}

func planar(a, b geom.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func TestExpandStraightLine(t *testing.T) {
	for _, w := range []float64{0.5, 1, 2, 7} {
		rb, err := spine.Expand(geom.Polyline{geom.Pt(0, 0), geom.Pt(10, 0)}, spine.ExpandOptions{Width: w})
		require.NoError(t, err)
		require.Len(t, rb.Left, 2)
		require.Len(t, rb.Right, 2)
		require.Len(t, rb.Offsets, 2)

		assertPoint(t, geom.Pt(0, w/2), rb.Left[0])
		assertPoint(t, geom.Pt(10, w/2), rb.Left[1])
		assertPoint(t, geom.Pt(0, -w/2), rb.Right[0])
		assertPoint(t, geom.Pt(10, -w/2), rb.Right[1])
		for i := range rb.Left {
			assert.InDelta(t, w, planar(rb.Left[i], rb.Right[i]), 1e-9)
		}
		assert.NoError(t, rb.Err())
	}
}

func TestExpandMiterCorner(t *testing.T) {
	line := geom.Polyline{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10)}
	rb, err := spine.Expand(line, spine.ExpandOptions{Width: 2})
	require.NoError(t, err)
	require.Len(t, rb.Left, 3)

	assertPoint(t, geom.Pt(0, 1), rb.Left[0])
	assertPoint(t, geom.Pt(9, 1), rb.Left[1])
	assertPoint(t, geom.Pt(9, 10), rb.Left[2])
	assertPoint(t, geom.Pt(0, -1), rb.Right[0])
	assertPoint(t, geom.Pt(11, -1), rb.Right[1])
	assertPoint(t, geom.Pt(11, 10), rb.Right[2])
}

func TestExpandKeepsZ(t *testing.T) {
	line := geom.Polyline{geom.Pt3(0, 0, 3), geom.Pt3(10, 0, 4)}
	rb, err := spine.Expand(line, spine.ExpandOptions{Width: 1})
	require.NoError(t, err)
	assert.Equal(t, 3.0, rb.Left[0].Z)
	assert.Equal(t, 4.0, rb.Right[1].Z)
}

func TestExpandReversal(t *testing.T) {
	line := geom.Polyline{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(5, 0)}
	rb, err := spine.Expand(line, spine.ExpandOptions{Width: 2})
	require.NoError(t, err)
	require.Len(t, rb.Left, 3)
	assert.Zero(t, rb.Degraded)
	assertPoint(t, geom.Pt(10, -1), rb.Left[1])
	assertPoint(t, geom.Pt(10, 1), rb.Right[1])
}

func TestExpandDuplicatePointsPad(t *testing.T) {
	tests := []struct {
		name string
		line geom.Polyline
	}{
		{"leading", geom.Polyline{geom.Pt(0, 0), geom.Pt(0, 0), geom.Pt(10, 0)}},
		{"middle", geom.Polyline{geom.Pt(0, 0), geom.Pt(5, 0), geom.Pt(5, 0), geom.Pt(10, 0)}},
		{"trailing", geom.Polyline{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 0)}},
		{"trailing run", geom.Polyline{geom.Pt(0, 0), geom.Pt(4, 0), geom.Pt(10, 0), geom.Pt(10, 0), geom.Pt(10, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb, err := spine.Expand(tt.line, spine.ExpandOptions{Width: 2})
			require.NoError(t, err)
			assert.Len(t, rb.Left, len(tt.line))
			assert.Len(t, rb.Right, len(tt.line))
			assert.Len(t, rb.Offsets, len(tt.line))
			assert.Zero(t, rb.Degraded)
			assert.NoError(t, rb.Err())
			for i := range rb.Left {
				assert.InDelta(t, tt.line[i].X, rb.Left[i].X, 1e-9, "left %d", i)
				assert.InDelta(t, tt.line[i].X, rb.Right[i].X, 1e-9, "right %d", i)
				assert.InDelta(t, 1, rb.Left[i].Y, 1e-9)
				assert.InDelta(t, -1, rb.Right[i].Y, 1e-9)
			}
		})
	}
}

func TestExpandCutCorner(t *testing.T) {
	spike := geom.Polyline{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(0, 2)}

	plain, err := spine.Expand(spike, spine.ExpandOptions{Width: 2})
	require.NoError(t, err)
	require.Len(t, plain.Left, 3)
	far := math.Max(planar(spike[1], plain.Left[1]), planar(spike[1], plain.Right[1]))
	assert.Greater(t, far, 2.0)

	cut, err := spine.Expand(spike, spine.ExpandOptions{Width: 2, CutCorner: true})
	require.NoError(t, err)
	assert.Len(t, cut.Left, 4)
	assert.Len(t, cut.Right, 4)
	assert.Len(t, cut.Offsets, 3)
}

func TestExpandErrors(t *testing.T) {
	_, err := spine.Expand(geom.Polyline{geom.Pt(1, 1)}, spine.ExpandOptions{Width: 1})
	assert.ErrorIs(t, err, geom.ErrInsufficientPoints)

	_, err = spine.Expand(geom.Polyline{geom.Pt(1, 1), geom.Pt(1, 1), geom.Pt(1, 1)}, spine.ExpandOptions{Width: 1})
	assert.ErrorIs(t, err, geom.ErrDegenerateGeometry)
}

func TestExpandHairpinIsDegraded(t *testing.T) {
	// The turning point has no incoming direction distinct from its
	// outgoing one, so it borrows the first point's pair.
	line := geom.Polyline{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(0, 0)}
	rb, err := spine.Expand(line, spine.ExpandOptions{Width: 2})
	require.NoError(t, err)
	require.Len(t, rb.Left, 3)
	require.Len(t, rb.Right, 3)

	assert.Equal(t, 1, rb.Degraded)
	assert.ErrorIs(t, rb.Err(), geom.ErrUnresolvedIntersection)
	assertPoint(t, rb.Left[0], rb.Left[1])
	assertPoint(t, rb.Right[0], rb.Right[1])
}

func TestRibbonErr(t *testing.T) {
	assert.NoError(t, (&spine.Ribbon{}).Err())
	assert.ErrorIs(t, (&spine.Ribbon{Degraded: 2}).Err(), geom.ErrUnresolvedIntersection)
}

func TestLineHelpers(t *testing.T) {
	a, b := geom.Pt(0, 0), geom.Pt(10, 0)
	assert.True(t, spine.LeftOnLine(geom.Pt(5, 1), a, b))
	assert.False(t, spine.LeftOnLine(geom.Pt(5, -1), a, b))
	assert.False(t, spine.LeftOnLine(geom.Pt(5, 0), a, b))

	left, right, ok := spine.TranslateLine(a, b, 2)
	require.True(t, ok)
	assertPoint(t, geom.Pt(0, 2), left[0])
	assertPoint(t, geom.Pt(10, -2), right[1])

	_, _, ok = spine.TranslateLine(a, a, 2)
	assert.False(t, ok)

	p, ok := spine.LineIntersection(geom.Pt(0, 0), geom.Pt(2, 2), geom.Pt(0, 2), geom.Pt(2, 0))
	require.True(t, ok)
	assertPoint(t, geom.Pt(1, 1), p)

	_, ok = spine.LineIntersection(geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(0, 1), geom.Pt(1, 1))
	assert.False(t, ok)
}
