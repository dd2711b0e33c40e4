package filter

import (
	"context"
	"fmt"

	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/iterator"
	"github.com/voxelflow/voxelflow/pkg/pipeline"
)

// ReadFunc fills the given region through the iterator. It is the narrow
// interface to an external reader (file, codec, generator); the pipeline
// treats it as a black box.
type ReadFunc[T any] func(ctx context.Context, region extent.Extent, it *iterator.MutIterator[T]) error

// Source feeds external data into a pipeline. Its whole extent is fixed
// configuration; each generation reads exactly the requested extent.
type Source[T any] struct {
	*pipeline.Base

	out   *pipeline.Object[T]
	whole extent.Extent
	read  ReadFunc[T]
	reads int
}

func NewSource[T any](name string, whole extent.Extent, read ReadFunc[T]) *Source[T] {
	s := &Source[T]{
		Base:  pipeline.NewBase(name),
		out:   pipeline.NewObject[T](),
		whole: whole.Clone(),
		read:  read,
	}
	s.Bind(s)
	s.RegisterOutput(s.out)
	return s
}

// Output returns the source's owned output object.
func (s *Source[T]) Output() *pipeline.Object[T] { return s.out }

// SetWholeExtent reconfigures the extent the external reader can supply.
func (s *Source[T]) SetWholeExtent(e extent.Extent) {
	s.whole = e.Clone()
	s.Modified()
}

// Reads returns how many times the external reader ran.
func (s *Source[T]) Reads() int { return s.reads }

func (s *Source[T]) GenerateOutputInformation() error {
	if s.whole.Dims() == 0 {
		return fmt.Errorf("source %q has no whole extent: %w", s.Name(), pipeline.ErrStructuralMismatch)
	}
	s.out.SetWholeExtent(s.whole)
	return nil
}

func (s *Source[T]) GenerateData(ctx context.Context) error {
	req := s.out.RequestedExtent()
	if err := s.out.Stage(req); err != nil {
		return err
	}
	if !req.IsEmpty() && s.read != nil {
		it, err := s.out.MutIter(req)
		if err != nil {
			return err
		}
		if err := s.read(ctx, req, it); err != nil {
			return err
		}
		s.reads++
	}
	return s.out.Commit()
}
