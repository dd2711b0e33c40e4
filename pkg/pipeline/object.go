package pipeline

import (
	"errors"
	"fmt"
	"unsafe"

	interrors "github.com/voxelflow/voxelflow/internal/errors"
	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/iterator"
)

var errNoStagedBuffer = errors.New("pipeline: no staged buffer, call Stage before MutIter or Commit")

// DataObject is the extent-and-staleness surface the executor traverses.
// Element access goes through the concrete Object type; the executor never
// touches buffer contents. Implemented only by *Object.
type DataObject interface {
	// Producer returns the node that owns and generates this object, or
	// nil for objects fed into the pipeline from outside.
	Producer() Node

	Dims() int
	WholeExtent() extent.Extent
	SetWholeExtent(extent.Extent)
	RequestedExtent() extent.Extent
	SetRequestedExtent(extent.Extent)
	SetRequestedExtentToWhole()
	BufferedExtent() extent.Extent

	// ModifiedTime is a monotonic stamp of the last content change.
	ModifiedTime() uint64
	// Modified records an external content change.
	Modified()

	ReleaseDataFlag() bool
	SetReleaseDataFlag(bool)
	// ReleaseData frees the committed buffer to bound memory during
	// streaming; the next update regenerates on demand.
	ReleaseData()

	setProducer(Node)
	discardStaging()
}

// Object is a data object over elements of type T: a contiguous buffer
// addressed by the buffered extent's strides, plus the three pipeline
// extents and a modification stamp.
//
// Writes go through a staging buffer: Stage allocates, MutIter writes,
// Commit publishes. The committed buffer is never overwritten in place, so
// readers holding references across a failed or concurrent-free update
// always observe the last successful state.
type Object[T any] struct {
	producer Node

	whole     extent.Extent
	requested extent.Extent
	buffered  extent.Extent

	buf      []T
	staging  []T
	stagingX extent.Extent

	modified    uint64
	releaseData bool
	maxBytes    int64
}

var _ DataObject = (*Object[float64])(nil)

// NewObject returns an empty data object. Its whole extent is assigned
// during information propagation by the producing node (or directly, for
// externally fed objects).
func NewObject[T any]() *Object[T] {
	return &Object[T]{}
}

func (o *Object[T]) Producer() Node     { return o.producer }
func (o *Object[T]) setProducer(n Node) { o.producer = n }

func (o *Object[T]) Dims() int { return o.whole.Dims() }

func (o *Object[T]) WholeExtent() extent.Extent { return o.whole }

func (o *Object[T]) SetWholeExtent(e extent.Extent) { o.whole = e.Clone() }

func (o *Object[T]) RequestedExtent() extent.Extent { return o.requested }

func (o *Object[T]) SetRequestedExtent(e extent.Extent) { o.requested = e.Clone() }

func (o *Object[T]) SetRequestedExtentToWhole() { o.requested = o.whole.Clone() }

func (o *Object[T]) BufferedExtent() extent.Extent { return o.buffered }

func (o *Object[T]) ModifiedTime() uint64 { return o.modified }

func (o *Object[T]) Modified() { o.modified = tick() }

func (o *Object[T]) ReleaseDataFlag() bool { return o.releaseData }

func (o *Object[T]) SetReleaseDataFlag(on bool) { o.releaseData = on }

func (o *Object[T]) ReleaseData() {
	o.buf = nil
	o.buffered = extent.Extent{}
}

// SetMaxBytes bounds the size of any single staged buffer. Staging a
// region that would exceed the bound fails with ErrAllocation instead of
// attempting the allocation. Zero (the default) means unbounded.
func (o *Object[T]) SetMaxBytes(n int64) { o.maxBytes = n }

// Stage allocates a fresh write buffer covering ext. The committed buffer
// stays untouched until Commit, so a failed generation is not observable.
func (o *Object[T]) Stage(ext extent.Extent) error {
	if o.whole.Dims() > 0 && !o.whole.Contains(ext) {
		return interrors.With(ErrRegionOutOfBounds,
			fmt.Errorf("cannot stage %v outside whole extent %v", ext, o.whole))
	}
	n := ext.Elements()
	if n < 0 {
		return interrors.With(ErrAllocation, fmt.Errorf("extent %v overflows", ext))
	}
	if o.maxBytes > 0 {
		var zero T
		if bytes := int64(n) * int64(unsafe.Sizeof(zero)); bytes > o.maxBytes {
			return interrors.With(ErrAllocation,
				fmt.Errorf("staging %v needs %d bytes, limit is %d", ext, bytes, o.maxBytes))
		}
	}
	o.staging = make([]T, n)
	o.stagingX = ext.Clone()
	return nil
}

// MutIter returns a writable iterator over region of the staged buffer.
func (o *Object[T]) MutIter(region extent.Extent) (*iterator.MutIterator[T], error) {
	if o.staging == nil {
		return nil, errNoStagedBuffer
	}
	return iterator.NewMut(o.staging, o.stagingX, region)
}

// Commit publishes the staged buffer as the object's content, sets the
// buffered extent to the staged extent and bumps the modification stamp.
func (o *Object[T]) Commit() error {
	if o.staging == nil {
		return errNoStagedBuffer
	}
	o.buf = o.staging
	o.buffered = o.stagingX
	o.staging = nil
	o.stagingX = extent.Extent{}
	o.modified = tick()
	return nil
}

func (o *Object[T]) discardStaging() {
	o.staging = nil
	o.stagingX = extent.Extent{}
}

// Iter returns a read iterator over region of the committed buffer. The
// region must lie inside the buffered extent.
func (o *Object[T]) Iter(region extent.Extent) (*iterator.Iterator[T], error) {
	return iterator.New(o.buf, o.buffered, region)
}

// Buffer exposes the committed buffer, shaped by BufferedExtent. Intended
// for serializers and tests; treat it as read-only.
func (o *Object[T]) Buffer() []T { return o.buf }
