package filter

import (
	"context"
	"fmt"

	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/pipeline"
)

// JoinSeries collects a sequence of same-shaped inputs into one output
// with an extra slowest axis: the i-th pushed input becomes the slab at
// index i. Only inputs intersecting the requested range of the new axis
// are ever pulled, so a streamed consumer touches one slab's upstream at a
// time.
type JoinSeries[T any] struct {
	*pipeline.Base

	out *pipeline.Object[T]
}

func NewJoinSeries[T any](name string) *JoinSeries[T] {
	j := &JoinSeries[T]{
		Base: pipeline.NewBase(name),
		out:  pipeline.NewObject[T](),
	}
	j.Bind(j)
	j.RegisterOutput(j.out)
	return j
}

// PushInput appends one slab to the series. The output's new axis grows
// by one.
func (j *JoinSeries[T]) PushInput(obj *pipeline.Object[T]) {
	j.Base.PushInput(obj)
}

func (j *JoinSeries[T]) Output() *pipeline.Object[T] { return j.out }

func (j *JoinSeries[T]) GenerateOutputInformation() error {
	ins := j.Inputs()
	if len(ins) == 0 {
		return fmt.Errorf("join %q has no inputs: %w", j.Name(), pipeline.ErrStructuralMismatch)
	}
	slab := ins[0].WholeExtent()
	for i, in := range ins {
		if !in.WholeExtent().Equal(slab) {
			return fmt.Errorf("join %q: input %d whole extent %v differs from %v: %w",
				j.Name(), i, in.WholeExtent(), slab, pipeline.ErrStructuralMismatch)
		}
	}

	whole := extent.Extent{
		Start: append(append([]int(nil), slab.Start...), 0),
		Size:  append(append([]int(nil), slab.Size...), len(ins)),
	}
	j.out.SetWholeExtent(whole)
	return nil
}

// crossSection strips the series axis off an output-space extent.
func (j *JoinSeries[T]) crossSection(req extent.Extent) extent.Extent {
	d := req.Dims() - 1
	return extent.New(req.Start[:d], req.Size[:d])
}

func (j *JoinSeries[T]) PropagateRequestedExtent(out pipeline.DataObject) error {
	req := out.RequestedExtent()
	ins := j.Inputs()
	if req.IsEmpty() {
		for _, in := range ins {
			in.SetRequestedExtent(emptyLike(in.WholeExtent()))
		}
		return nil
	}

	cross := j.crossSection(req)
	axis := req.Dims() - 1
	lo, hi := req.Start[axis], req.End(axis)
	for i, in := range ins {
		if i >= lo && i < hi {
			in.SetRequestedExtent(cross)
		} else {
			in.SetRequestedExtent(emptyLike(in.WholeExtent()))
		}
	}
	return nil
}

func (j *JoinSeries[T]) GenerateData(ctx context.Context) error {
	req := j.out.RequestedExtent()
	if err := j.out.Stage(req); err != nil {
		return err
	}
	if req.IsEmpty() {
		return j.out.Commit()
	}

	cross := j.crossSection(req)
	axis := req.Dims() - 1
	ins := j.Inputs()
	for i := req.Start[axis]; i < req.End(axis); i++ {
		in, ok := ins[i].(*pipeline.Object[T])
		if !ok {
			return fmt.Errorf("join %q: input %d has wrong element type: %w",
				j.Name(), i, pipeline.ErrStructuralMismatch)
		}
		src, err := in.Iter(cross)
		if err != nil {
			return err
		}

		slab := extent.Extent{
			Start: append(append([]int(nil), cross.Start...), i),
			Size:  append(append([]int(nil), cross.Size...), 1),
		}
		dst, err := j.out.MutIter(slab)
		if err != nil {
			return err
		}
		copyValues(dst, src)
	}
	return j.out.Commit()
}
