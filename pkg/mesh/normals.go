package mesh

import "github.com/go-gl/mathgl/mgl32"

// GenerateNormals returns smooth vertex normals for the indexed triangles.
// Each triangle adds its unnormalized face normal to its three vertices,
// which weights the sum by area. Vertices used by no triangle, or whose
// contributions cancel, get a zero normal.
func GenerateNormals(indices []uint32, position []float32) []float32 {
	acc := make([]mgl32.Vec3, len(position)/3)
	at := func(i uint32) mgl32.Vec3 {
		return mgl32.Vec3{position[i*3], position[i*3+1], position[i*3+2]}
	}

	for f := 0; f+2 < len(indices); f += 3 {
		a, b, c := indices[f], indices[f+1], indices[f+2]
		p1, p2, p3 := at(a), at(b), at(c)
		n := p3.Sub(p2).Cross(p1.Sub(p2))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}

	normals := make([]float32, len(position))
	for i, n := range acc {
		if n.Len() == 0 {
			continue
		}
		n = n.Normalize()
		normals[i*3], normals[i*3+1], normals[i*3+2] = n[0], n[1], n[2]
	}
	return normals
}
