package filter

import (
	"context"
	"fmt"

	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/pipeline"
)

// Extract copies a sub-extent of its input. Axes given size zero in the
// extraction extent are collapsed away, lowering the output's
// dimensionality: extracting a size-zero slab at z=k from a volume yields
// the 2-D slice at that index.
type Extract[T any] struct {
	*pipeline.Base

	in     *pipeline.Object[T]
	out    *pipeline.Object[T]
	region extent.Extent
}

func NewExtract[T any](name string) *Extract[T] {
	e := &Extract[T]{
		Base: pipeline.NewBase(name),
		out:  pipeline.NewObject[T](),
	}
	e.Bind(e)
	e.RegisterOutput(e.out)
	return e
}

func (e *Extract[T]) SetInput(obj *pipeline.Object[T]) {
	e.in = obj
	e.Base.SetInput(0, obj)
}

func (e *Extract[T]) Output() *pipeline.Object[T] { return e.out }

// SetExtractionExtent configures the sub-extent to copy, in input
// coordinates. Size-zero axes collapse.
func (e *Extract[T]) SetExtractionExtent(ext extent.Extent) {
	e.region = ext.Clone()
	e.Modified()
}

// collapse drops size-zero axes of the extraction extent.
func (e *Extract[T]) collapse() extent.Extent {
	var start, size []int
	for i := range e.region.Size {
		if e.region.Size[i] > 0 {
			start = append(start, e.region.Start[i])
			size = append(size, e.region.Size[i])
		}
	}
	return extent.Extent{Start: start, Size: size}
}

// expand maps an output-space extent back to input space, re-inserting
// the collapsed axes as unit runs at their extraction index.
func (e *Extract[T]) expand(out extent.Extent) extent.Extent {
	start := make([]int, e.region.Dims())
	size := make([]int, e.region.Dims())
	j := 0
	for i := range e.region.Size {
		if e.region.Size[i] > 0 {
			start[i] = out.Start[j]
			size[i] = out.Size[j]
			j++
		} else {
			start[i] = e.region.Start[i]
			size[i] = 1
		}
	}
	return extent.Extent{Start: start, Size: size}
}

func (e *Extract[T]) GenerateOutputInformation() error {
	if e.in == nil {
		return fmt.Errorf("extract %q has no input: %w", e.Name(), pipeline.ErrStructuralMismatch)
	}
	if e.region.Dims() != e.in.WholeExtent().Dims() {
		return fmt.Errorf("extract %q: extraction extent %v does not match %d-d input: %w",
			e.Name(), e.region, e.in.WholeExtent().Dims(), pipeline.ErrStructuralMismatch)
	}
	e.out.SetWholeExtent(e.collapse())
	return nil
}

func (e *Extract[T]) PropagateRequestedExtent(out pipeline.DataObject) error {
	req := out.RequestedExtent()
	if req.IsEmpty() {
		e.in.SetRequestedExtent(emptyLike(e.in.WholeExtent()))
		return nil
	}
	e.in.SetRequestedExtent(e.expand(req))
	return nil
}

func (e *Extract[T]) GenerateData(ctx context.Context) error {
	req := e.out.RequestedExtent()
	if err := e.out.Stage(req); err != nil {
		return err
	}
	if !req.IsEmpty() {
		src, err := e.in.Iter(e.expand(req))
		if err != nil {
			return err
		}
		dst, err := e.out.MutIter(req)
		if err != nil {
			return err
		}
		copyValues(dst, src)
	}
	return e.out.Commit()
}
