package filter

import (
	"context"

	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/pipeline"
)

// ShiftScale computes out = in*scale + shift elementwise. Generation is
// split across the node's workers; pieces are disjoint, so any worker
// count produces the identical result.
type ShiftScale struct {
	*pipeline.Base

	in    *pipeline.Object[float64]
	out   *pipeline.Object[float64]
	shift float64
	scale float64
}

func NewShiftScale(name string) *ShiftScale {
	s := &ShiftScale{
		Base:  pipeline.NewBase(name),
		out:   pipeline.NewObject[float64](),
		scale: 1,
	}
	s.Bind(s)
	s.RegisterOutput(s.out)
	return s
}

func (s *ShiftScale) SetInput(obj *pipeline.Object[float64]) {
	s.in = obj
	s.Base.SetInput(0, obj)
}

func (s *ShiftScale) Output() *pipeline.Object[float64] { return s.out }

func (s *ShiftScale) SetShift(v float64) {
	s.shift = v
	s.Modified()
}

func (s *ShiftScale) SetScale(v float64) {
	s.scale = v
	s.Modified()
}

func (s *ShiftScale) GenerateData(ctx context.Context) error {
	req := s.out.RequestedExtent()
	if err := s.out.Stage(req); err != nil {
		return err
	}
	if req.IsEmpty() {
		return s.out.Commit()
	}

	err := s.ParallelGenerate(ctx, req, func(ctx context.Context, piece extent.Extent) error {
		src, err := s.in.Iter(piece)
		if err != nil {
			return err
		}
		dst, err := s.out.MutIter(piece)
		if err != nil {
			return err
		}
		for ; !src.IsAtEnd(); src.Advance() {
			dst.Set(src.Get()*s.scale + s.shift)
			dst.Advance()
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.out.Commit()
}
