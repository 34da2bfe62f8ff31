package spine

import (
	"github.com/chazu/polymesh/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultRoundSteps is the number of curve segments Round uses per corner
// when steps is not positive.
const DefaultRoundSteps = 10

// Round replaces the interior corners of line with quadratic curves that
// start and end size away from the corner. A corner is kept as is when
// either adjacent segment is shorter than size, or when the curve would be
// shorter than a tenth of size. The first and last points never move.
func Round(line geom.Polyline, size float64, steps int) geom.Polyline {
	if size <= 0 || len(line) < 3 {
		return line.Clone()
	}
	if steps <= 0 {
		steps = DefaultRoundSteps
	}

	out := geom.Polyline{line[0]}
	prev := line[0]
	for i := 1; i < len(line)-1; i++ {
		p1, p2, p3 := line[i-1], line[i], line[i+1]
		if prev == p2 {
			continue
		}
		prev = p2

		d1 := r3.Norm(r3.Sub(p2, p1))
		d2 := r3.Norm(r3.Sub(p3, p2))
		if d1 < size || d2 < size {
			out = append(out, p2)
			continue
		}

		c1 := r3.Add(p1, r3.Scale((d1-size)/d1, r3.Sub(p2, p1)))
		c2 := r3.Add(p2, r3.Scale(size/d2, r3.Sub(p3, p2)))
		if r3.Norm(r3.Sub(c2, c1)) < size/10 {
			out = append(out, p2)
			continue
		}
		for j := 0; j <= steps; j++ {
			out = append(out, quadBezier(c1, p2, c2, float64(j)/float64(steps)))
		}
	}
	return append(out, line[len(line)-1])
}
