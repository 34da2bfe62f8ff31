package mesh

// Merged is the concatenation of several meshes. Parts keeps the inputs in
// merge order.
type Merged struct {
	Buffers
	Parts []*Buffers `json:"-"`
}

// Merge concatenates parts in order, rebasing each part's indices by the
// number of vertices merged before it. A single part is shared, not
// copied. Nil parts are skipped.
func Merge(parts ...*Buffers) *Merged {
	kept := make([]*Buffers, 0, len(parts))
	for _, p := range parts {
		if p != nil {
			kept = append(kept, p)
		}
	}
	if len(kept) == 1 {
		return &Merged{Buffers: *kept[0], Parts: kept}
	}

	var plen, ilen int
	for _, p := range kept {
		plen += len(p.Position)
		ilen += len(p.Indices)
	}
	out := &Merged{
		Buffers: Buffers{
			Position: make([]float32, 0, plen),
			Normal:   make([]float32, 0, plen),
			UV:       make([]float32, 0, plen/3*2),
			Indices:  make([]uint32, 0, ilen),
		},
		Parts: kept,
	}
	for _, p := range kept {
		offset := uint32(out.VertexCount())
		out.Position = append(out.Position, p.Position...)
		out.Normal = append(out.Normal, p.Normal...)
		out.UV = append(out.UV, p.UV...)
		for _, idx := range p.Indices {
			out.Indices = append(out.Indices, idx+offset)
		}
	}
	return out
}
