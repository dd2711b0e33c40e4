// Package extent models axis-aligned N-dimensional index boxes and the
// deterministic partitioning used for streaming and intra-node parallelism.
//
// Axis 0 is the fastest-varying axis. Buffers addressed by an extent are laid
// out with stride 1 along axis 0 and the last axis varying slowest, so a
// sub-extent that spans full inner axes is a contiguous run in element order.
package extent

import (
	"fmt"
	"strings"
)

// Extent is an axis-aligned N-dimensional index box: a start index and a
// size per axis. The zero value has no axes and is treated as unset.
// Size[i] must never be negative.
type Extent struct {
	Start []int
	Size  []int
}

// New returns an extent with the given start corner and per-axis size.
// The two slices must have equal length.
func New(start, size []int) Extent {
	if len(start) != len(size) {
		panic(fmt.Sprintf("extent: start has %d axes, size has %d", len(start), len(size)))
	}
	return Extent{
		Start: append([]int(nil), start...),
		Size:  append([]int(nil), size...),
	}
}

// Of returns a zero-based extent of the given per-axis sizes.
func Of(size ...int) Extent {
	return Extent{
		Start: make([]int, len(size)),
		Size:  append([]int(nil), size...),
	}
}

// Dims returns the number of axes.
func (e Extent) Dims() int {
	return len(e.Size)
}

// End returns the exclusive upper bound of the given axis.
func (e Extent) End(axis int) int {
	return e.Start[axis] + e.Size[axis]
}

// Elements returns the number of index positions inside the extent.
// An extent with no axes holds no elements.
func (e Extent) Elements() int {
	if len(e.Size) == 0 {
		return 0
	}
	n := 1
	for _, s := range e.Size {
		n *= s
	}
	return n
}

// IsEmpty reports whether the extent covers no index positions.
func (e Extent) IsEmpty() bool {
	return e.Elements() == 0
}

// Clone returns a deep copy.
func (e Extent) Clone() Extent {
	return Extent{
		Start: append([]int(nil), e.Start...),
		Size:  append([]int(nil), e.Size...),
	}
}

// Equal reports whether both extents have identical axes.
func (e Extent) Equal(o Extent) bool {
	if len(e.Size) != len(o.Size) {
		return false
	}
	for i := range e.Size {
		if e.Start[i] != o.Start[i] || e.Size[i] != o.Size[i] {
			return false
		}
	}
	return true
}

// Contains reports whether o lies fully inside e. An empty o is contained
// in any extent; extents of different dimensionality never contain each
// other.
func (e Extent) Contains(o Extent) bool {
	if o.IsEmpty() {
		return true
	}
	if len(e.Size) != len(o.Size) {
		return false
	}
	for i := range e.Size {
		if o.Start[i] < e.Start[i] || o.End(i) > e.End(i) {
			return false
		}
	}
	return true
}

// Intersect returns the overlap of a and b: the elementwise max of starts
// and min of ends. Axes that do not overlap get size zero. Both extents
// must have the same dimensionality.
func Intersect(a, b Extent) Extent {
	if len(a.Size) != len(b.Size) {
		panic(fmt.Sprintf("extent: cannot intersect %d-d with %d-d", len(a.Size), len(b.Size)))
	}
	out := Extent{
		Start: make([]int, len(a.Size)),
		Size:  make([]int, len(a.Size)),
	}
	for i := range a.Size {
		lo := max(a.Start[i], b.Start[i])
		hi := min(a.End(i), b.End(i))
		out.Start[i] = lo
		if hi > lo {
			out.Size[i] = hi - lo
		}
	}
	return out
}

// Strides returns the per-axis flat strides of a buffer shaped by e,
// with stride 1 along axis 0.
func (e Extent) Strides() []int {
	strides := make([]int, len(e.Size))
	acc := 1
	for i := range e.Size {
		strides[i] = acc
		acc *= e.Size[i]
	}
	return strides
}

// Offset returns the flat offset of the given index within a buffer shaped
// by e. The index must lie inside the extent.
func (e Extent) Offset(index []int) int {
	off := 0
	acc := 1
	for i := range e.Size {
		off += (index[i] - e.Start[i]) * acc
		acc *= e.Size[i]
	}
	return off
}

func (e Extent) String() string {
	if len(e.Size) == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteByte('[')
	for i := range e.Size {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d:%d", e.Start[i], e.End(i))
	}
	b.WriteByte(']')
	return b.String()
}
