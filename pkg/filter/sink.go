package filter

import (
	"context"
	"errors"

	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/iterator"
	"github.com/voxelflow/voxelflow/pkg/pipeline"
)

// WriteFunc consumes one buffered piece through the iterator. It is the
// narrow interface to an external writer (file, codec, network); the
// pipeline treats it as a black box.
type WriteFunc[T any] func(ctx context.Context, piece extent.Extent, it *iterator.Iterator[T]) error

// Sink is the terminal consumer of a pipeline: it drives the streaming
// driver over its input and hands every computed piece to an external
// writer. With one stream division it degenerates to a single full
// update.
type Sink[T any] struct {
	in       *pipeline.Object[T]
	streamer *pipeline.Streamer
	write    WriteFunc[T]
}

func NewSink[T any](exec *pipeline.Executor, write WriteFunc[T], opts ...pipeline.StreamerOption) *Sink[T] {
	return &Sink[T]{
		streamer: pipeline.NewStreamer(exec, opts...),
		write:    write,
	}
}

func (s *Sink[T]) SetInput(obj *pipeline.Object[T]) { s.in = obj }

// SetNumberOfStreamDivisions sets how many sequential pieces the sink
// requests when writing.
func (s *Sink[T]) SetNumberOfStreamDivisions(k int) {
	s.streamer.SetNumberOfStreamDivisions(k)
}

// Write runs the full update protocol piece by piece and serializes each
// piece while it is buffered.
func (s *Sink[T]) Write(ctx context.Context) error {
	if s.in == nil {
		return errors.New("filter: sink has no input")
	}
	return s.streamer.Stream(ctx, s.in, func(ctx context.Context, piece extent.Extent) error {
		it, err := s.in.Iter(piece)
		if err != nil {
			return err
		}
		return s.write(ctx, piece, it)
	})
}
