package mesh

import (
	"github.com/chazu/polymesh/pkg/geom"
	"github.com/go-gl/mathgl/mgl32"
)

// Placement returns the matrix that rotates by the Euler angles in rot
// (degrees, applied X then Y then Z) and then translates by at.
func Placement(at, rot geom.Point) mgl32.Mat4 {
	r := mgl32.HomogRotate3DZ(mgl32.DegToRad(float32(rot.Z))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(float32(rot.Y)))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(float32(rot.X))))
	return mgl32.Translate3D(float32(at.X), float32(at.Y), float32(at.Z)).Mul4(r)
}

// Transform applies m to every position. Normals are transformed by the
// inverse transpose of m's upper 3x3 and renormalized.
func (b *Buffers) Transform(m mgl32.Mat4) {
	if m == mgl32.Ident4() {
		return
	}
	nm := m.Mat3().Inv().Transpose()
	for i := 0; i+2 < len(b.Position); i += 3 {
		p := m.Mul4x1(mgl32.Vec4{b.Position[i], b.Position[i+1], b.Position[i+2], 1})
		b.Position[i], b.Position[i+1], b.Position[i+2] = p[0], p[1], p[2]

		n := nm.Mul3x1(mgl32.Vec3{b.Normal[i], b.Normal[i+1], b.Normal[i+2]})
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		b.Normal[i], b.Normal[i+1], b.Normal[i+2] = n[0], n[1], n[2]
	}
}
