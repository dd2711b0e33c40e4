package filter

import (
	"context"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/voxelflow/voxelflow/pkg/pipeline"
)

// Statistics is a pass-through node that computes summary statistics of
// every region it generates. Values flow through unchanged, so it can sit
// anywhere in a pipeline.
type Statistics struct {
	*pipeline.Base

	in  *pipeline.Object[float64]
	out *pipeline.Object[float64]

	count  int
	mean   float64
	stddev float64
	min    float64
	max    float64
}

func NewStatistics(name string) *Statistics {
	s := &Statistics{
		Base: pipeline.NewBase(name),
		out:  pipeline.NewObject[float64](),
	}
	s.Bind(s)
	s.RegisterOutput(s.out)
	return s
}

func (s *Statistics) SetInput(obj *pipeline.Object[float64]) {
	s.in = obj
	s.Base.SetInput(0, obj)
}

func (s *Statistics) Output() *pipeline.Object[float64] { return s.out }

// Count, Mean, StdDev, Min and Max describe the values of the last
// generated region. All five are zero after an empty generation.
func (s *Statistics) Count() int      { return s.count }
func (s *Statistics) Mean() float64   { return s.mean }
func (s *Statistics) StdDev() float64 { return s.stddev }
func (s *Statistics) Min() float64    { return s.min }
func (s *Statistics) Max() float64    { return s.max }

func (s *Statistics) GenerateData(ctx context.Context) error {
	req := s.out.RequestedExtent()
	if err := s.out.Stage(req); err != nil {
		return err
	}
	if req.IsEmpty() {
		s.count = 0
		s.mean, s.stddev, s.min, s.max = 0, 0, 0, 0
		return s.out.Commit()
	}

	src, err := s.in.Iter(req)
	if err != nil {
		return err
	}
	dst, err := s.out.MutIter(req)
	if err != nil {
		return err
	}

	values := make([]float64, 0, req.Elements())
	for ; !src.IsAtEnd(); src.Advance() {
		v := src.Get()
		values = append(values, v)
		dst.Set(v)
		dst.Advance()
	}

	s.count = len(values)
	s.mean = stat.Mean(values, nil)
	s.stddev = stat.StdDev(values, nil)
	s.min = floats.Min(values)
	s.max = floats.Max(values)

	return s.out.Commit()
}
