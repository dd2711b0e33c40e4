package filter

import (
	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/iterator"
)

// emptyLike returns a zero-size extent with e's dimensionality and start,
// used to request nothing of an input while keeping metadata well-formed.
func emptyLike(e extent.Extent) extent.Extent {
	return extent.Extent{
		Start: append([]int(nil), e.Start...),
		Size:  make([]int, e.Dims()),
	}
}

// copyValues walks src to its end, storing each element through dst. The
// two iterators must cover regions with the same element count.
func copyValues[T any](dst *iterator.MutIterator[T], src *iterator.Iterator[T]) {
	for ; !src.IsAtEnd(); src.Advance() {
		dst.Set(src.Get())
		dst.Advance()
	}
}
