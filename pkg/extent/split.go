package extent

// Split partitions e into at most n sub-extents whose disjoint union is
// exactly e. Pieces are emitted in element order: cuts are made along the
// slowest-varying axis first, so every piece is a maximal contiguous run in
// the flat layout of e. When n exceeds the number of elements the piece
// count is clamped to the element count; that is a normal outcome, not an
// error. n <= 1, an empty extent, or a zero-dimensional extent all yield a
// single piece equal to e.
func Split(e Extent, n int) []Extent {
	if n <= 1 || e.Dims() == 0 || e.IsEmpty() {
		return []Extent{e.Clone()}
	}
	if total := e.Elements(); n > total {
		n = total
	}
	out := make([]Extent, 0, n)
	splitAlong(e, e.Dims()-1, n, &out)
	return out
}

func splitAlong(e Extent, axis, n int, out *[]Extent) {
	if n <= 1 {
		*out = append(*out, e.Clone())
		return
	}

	// Skip unit axes from the slow end; the caller guarantees n never
	// exceeds the element count, so axis 0 always has room for n pieces
	// once every outer axis is exhausted.
	for axis > 0 && e.Size[axis] <= 1 {
		axis--
	}

	s := e.Size[axis]
	if s >= n {
		for k := 0; k < n; k++ {
			lo := e.Start[axis] + k*s/n
			hi := e.Start[axis] + (k+1)*s/n
			piece := e.Clone()
			piece.Start[axis] = lo
			piece.Size[axis] = hi - lo
			*out = append(*out, piece)
		}
		return
	}

	// More pieces than slices along this axis: one unit slice per index,
	// each subdivided along the inner axes. Proportional rounding keeps
	// every slice's share at least 1 and at most its element count.
	for i := 0; i < s; i++ {
		share := n*(i+1)/s - n*i/s
		slice := e.Clone()
		slice.Start[axis] = e.Start[axis] + i
		slice.Size[axis] = 1
		splitAlong(slice, axis-1, share, out)
	}
}
