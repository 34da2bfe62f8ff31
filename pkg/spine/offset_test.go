package spine_test

import (
	"testing"

	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/spine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetStraight(t *testing.T) {
	line := geom.Polyline{geom.Pt3(0, 0, 1), geom.Pt3(10, 0, 2)}

	left := spine.Offset(line, 1)
	require.Len(t, left, 2)
	assertPoint(t, geom.Pt3(0, 1, 1), left[0])
	assertPoint(t, geom.Pt3(10, 1, 2), left[1])

	right := spine.Offset(line, -1)
	assertPoint(t, geom.Pt3(0, -1, 1), right[0])
}

func TestOffsetZeroIsCopy(t *testing.T) {
	line := geom.Polyline{geom.Pt(0, 0), geom.Pt(1, 1)}
	out := spine.Offset(line, 0)
	assert.Equal(t, line, out)
	out[0].X = 42
	assert.Equal(t, 0.0, line[0].X)
}

func TestOffsetInnerCorner(t *testing.T) {
	line := geom.Polyline{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10)}
	out := spine.Offset(line, 1)
	require.Len(t, out, 3)
	assertPoint(t, geom.Pt(0, 1), out[0])
	assertPoint(t, geom.Pt(9, 1), out[1])
	assertPoint(t, geom.Pt(9, 10), out[2])
}

func TestOffsetOuterCornerArc(t *testing.T) {
	corner := geom.Pt(10, 0)
	line := geom.Polyline{geom.Pt(0, 0), corner, geom.Pt(10, -10)}
	out := spine.Offset(line, 1)
	require.Len(t, out, 7)

	assertPoint(t, geom.Pt(0, 1), out[0])
	assertPoint(t, geom.Pt(11, -10), out[6])
	for _, p := range out[1:6] {
		assert.InDelta(t, 1, planar(corner, p), 1e-9)
	}
	assertPoint(t, geom.Pt(10, 1), out[1])
	assertPoint(t, geom.Pt(11, 0), out[5])
}

func TestOffsetSkipsDuplicates(t *testing.T) {
	line := geom.Polyline{geom.Pt(0, 0), geom.Pt(0, 0), geom.Pt(10, 0)}
	out := spine.Offset(line, 2)
	require.Len(t, out, 2)
	assertPoint(t, geom.Pt(0, 2), out[0])

	assert.Empty(t, spine.Offset(geom.Polyline{geom.Pt(1, 1), geom.Pt(1, 1)}, 1))
}

func TestRound(t *testing.T) {
	line := geom.Polyline{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10)}

	out := spine.Round(line, 2, 4)
	require.Len(t, out, 7)
	assertPoint(t, line[0], out[0])
	assertPoint(t, geom.Pt(8, 0), out[1])
	assertPoint(t, geom.Pt(10, 2), out[5])
	assertPoint(t, line[2], out[6])

	def := spine.Round(line, 2, 0)
	assert.Len(t, def, 2+spine.DefaultRoundSteps+1)
}

func TestRoundKeepsShortCorners(t *testing.T) {
	tests := []struct {
		name string
		line geom.Polyline
		size float64
	}{
		{"segment shorter than size", geom.Polyline{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(1, 10)}, 2},
		{"two points", geom.Polyline{geom.Pt(0, 0), geom.Pt(1, 0)}, 2},
		{"zero size", geom.Polyline{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.line, spine.Round(tt.line, tt.size, 4))
		})
	}
}
