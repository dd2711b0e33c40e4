// Package iterator walks rectangular regions of N-dimensional buffers in
// row-major order (axis 0 varies fastest). One walking core backs both the
// read-only and the writable iterator; the writable variant only adds the
// store capability.
package iterator

import (
	"errors"

	"github.com/voxelflow/voxelflow/pkg/extent"
)

// ErrOutOfBounds is returned when an iterator is constructed over a region
// that the buffer does not cover. It signals a programming error, not a
// recoverable condition.
var ErrOutOfBounds = errors.New("iterator: region not contained in buffer extent")

// walker holds the shared iteration state: the current index vector plus
// the flat offset and the end offset of the current fastest-axis run, so
// the hot path is a single increment and compare.
type walker[T any] struct {
	buf     []T
	region  extent.Extent
	strides []int
	ends    []int // exclusive per-axis upper bounds of region
	index   []int
	begin   int // flat offset of the region's start corner
	offset  int
	spanEnd int
	done    bool
}

// Iterator provides read access to every element of a region, visiting each
// index exactly once in row-major order.
type Iterator[T any] struct {
	walker[T]
}

// MutIterator is an Iterator that can also store values. It shares the
// walking state and advance logic with the read-only variant.
type MutIterator[T any] struct {
	Iterator[T]
}

// New returns a read-only iterator over region within a buffer shaped by
// bufferExtent. Fails with ErrOutOfBounds unless the buffer extent contains
// the region and buf is large enough to hold the buffer extent.
func New[T any](buf []T, bufferExtent, region extent.Extent) (*Iterator[T], error) {
	w, err := newWalker(buf, bufferExtent, region)
	if err != nil {
		return nil, err
	}
	return &Iterator[T]{*w}, nil
}

// NewMut returns a writable iterator over region within a buffer shaped by
// bufferExtent, under the same bounds rules as New.
func NewMut[T any](buf []T, bufferExtent, region extent.Extent) (*MutIterator[T], error) {
	w, err := newWalker(buf, bufferExtent, region)
	if err != nil {
		return nil, err
	}
	return &MutIterator[T]{Iterator[T]{*w}}, nil
}

func newWalker[T any](buf []T, bufferExtent, region extent.Extent) (*walker[T], error) {
	if !bufferExtent.Contains(region) {
		return nil, ErrOutOfBounds
	}
	if len(buf) < bufferExtent.Elements() {
		return nil, ErrOutOfBounds
	}

	strides := bufferExtent.Strides()
	ends := make([]int, region.Dims())
	for i := range ends {
		ends[i] = region.End(i)
	}

	w := &walker[T]{
		buf:     buf,
		region:  region,
		strides: strides,
		ends:    ends,
		index:   make([]int, region.Dims()),
		offset:  0,
		spanEnd: 0,
	}
	if !region.IsEmpty() {
		w.begin = bufferExtent.Offset(region.Start)
	}
	w.GoToBegin()
	return w, nil
}

// GoToBegin positions the iterator at the region's start corner.
func (w *walker[T]) GoToBegin() {
	copy(w.index, w.region.Start)
	w.done = w.region.IsEmpty()
	if w.done {
		return
	}
	w.offset = w.begin
	w.spanEnd = w.offset + w.region.Size[0]
}

// IsAtEnd reports whether the iterator has advanced past the region's last
// element.
func (w *walker[T]) IsAtEnd() bool {
	return w.done
}

// Advance moves to the next element in row-major order, wrapping to the
// next line when the fastest axis is exhausted. Amortized O(1); worst case
// proportional to the number of axes rolling over at once.
func (w *walker[T]) Advance() {
	w.index[0]++
	w.offset++
	if w.offset < w.spanEnd {
		return
	}

	// End of the current line: reset the fastest axis and carry outward.
	w.index[0] = w.region.Start[0]
	w.offset -= w.region.Size[0]
	for d := 1; ; d++ {
		if d >= len(w.index) {
			w.done = true
			return
		}
		w.index[d]++
		w.offset += w.strides[d]
		if w.index[d] < w.ends[d] {
			break
		}
		w.index[d] = w.region.Start[d]
		w.offset -= w.region.Size[d] * w.strides[d]
	}
	w.spanEnd = w.offset + w.region.Size[0]
}

// Index returns the current index vector. The slice is reused by Advance;
// callers must not modify or retain it.
func (w *walker[T]) Index() []int {
	return w.index
}

// Get returns the element at the current position.
func (w *walker[T]) Get() T {
	return w.buf[w.offset]
}

// Set stores a value at the current position.
func (m *MutIterator[T]) Set(v T) {
	m.buf[m.offset] = v
}

// Begin repositions the iterator at the region's start corner.
//
// Deprecated: use GoToBegin.
func (w *walker[T]) Begin() {
	w.GoToBegin()
}

// End reports whether the iterator is past the region's last element.
//
// Deprecated: use IsAtEnd.
func (w *walker[T]) End() bool {
	return w.IsAtEnd()
}
