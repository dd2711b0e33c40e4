package filter

import (
	"context"

	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/pipeline"
)

// Monitor is a pass-through node that records every generation it
// performs: how often it ran and over which extents. Useful for observing
// what a streaming or staleness scenario actually recomputed.
type Monitor[T any] struct {
	*pipeline.Base

	in  *pipeline.Object[T]
	out *pipeline.Object[T]

	updates int
	regions []extent.Extent
}

func NewMonitor[T any](name string) *Monitor[T] {
	m := &Monitor[T]{
		Base: pipeline.NewBase(name),
		out:  pipeline.NewObject[T](),
	}
	m.Bind(m)
	m.RegisterOutput(m.out)
	return m
}

func (m *Monitor[T]) SetInput(obj *pipeline.Object[T]) {
	m.in = obj
	m.Base.SetInput(0, obj)
}

func (m *Monitor[T]) Output() *pipeline.Object[T] { return m.out }

// Updates returns how many times the node generated data.
func (m *Monitor[T]) Updates() int { return m.updates }

// Regions returns the requested extents of every generation, in order.
func (m *Monitor[T]) Regions() []extent.Extent { return m.regions }

// ResetCounters clears the recorded history without touching the
// pipeline's staleness state.
func (m *Monitor[T]) ResetCounters() {
	m.updates = 0
	m.regions = nil
}

func (m *Monitor[T]) GenerateData(ctx context.Context) error {
	req := m.out.RequestedExtent()
	if err := m.out.Stage(req); err != nil {
		return err
	}
	if !req.IsEmpty() {
		src, err := m.in.Iter(req)
		if err != nil {
			return err
		}
		dst, err := m.out.MutIter(req)
		if err != nil {
			return err
		}
		copyValues(dst, src)
	}
	m.updates++
	m.regions = append(m.regions, req.Clone())
	return m.out.Commit()
}
