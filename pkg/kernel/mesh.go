package kernel

import (
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/chewxy/math32"
)

// ProjectUV sets every UV of b by box projection: each vertex takes the two
// coordinates of the plane most facing its normal, divided by scale. A
// scale of zero or less means 1.
func ProjectUV(b *mesh.Buffers, scale float64) {
	s := float32(1)
	if scale > 0 {
		s = float32(scale)
	}
	for i := 0; i < b.VertexCount(); i++ {
		x, y, z := b.Position[i*3], b.Position[i*3+1], b.Position[i*3+2]
		nx, ny, nz := math32.Abs(b.Normal[i*3]), math32.Abs(b.Normal[i*3+1]), math32.Abs(b.Normal[i*3+2])

		u, v := x, y
		switch {
		case nx >= ny && nx >= nz:
			u, v = y, z
		case ny >= nz:
			u, v = x, z
		}
		b.UV[i*2], b.UV[i*2+1] = u/s, v/s
	}
}
