package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/voxelflow/voxelflow/internal/concurrency"
	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/logger"
)

// PieceEvent describes one committed stream piece. Events are delivered
// best-effort to an optional observer channel.
type PieceEvent struct {
	Index int
	Total int
	Piece extent.Extent
}

// Streamer replays a full update as a sequence of bounded-memory pieces.
// The final requested extent is split once; each piece is requested,
// updated and consumed before the next piece starts. Because every node's
// generation is a pure function of its requested extent and its inputs,
// the concatenation of the pieces is identical to a single whole-extent
// update.
type Streamer struct {
	exec      *Executor
	log       logger.Logger
	divisions int
	events    chan<- PieceEvent
}

type StreamerOption func(*Streamer)

func WithStreamerLogger(log logger.Logger) StreamerOption {
	return func(s *Streamer) {
		s.log = log
	}
}

// WithPieceEvents delivers a PieceEvent after each consumed piece. Sends
// are dropped when the context is cancelled; the channel is never closed
// by the streamer.
func WithPieceEvents(ch chan<- PieceEvent) StreamerOption {
	return func(s *Streamer) {
		s.events = ch
	}
}

func NewStreamer(exec *Executor, opts ...StreamerOption) *Streamer {
	s := &Streamer{
		exec:      exec,
		log:       logger.NewNoopLogger(),
		divisions: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNumberOfStreamDivisions sets the target piece count. The effective
// count is clamped to the number of elements in the streamed extent.
func (s *Streamer) SetNumberOfStreamDivisions(k int) {
	if k < 1 {
		k = 1
	}
	s.divisions = k
}

// NumberOfStreamDivisions returns the target piece count.
func (s *Streamer) NumberOfStreamDivisions() int { return s.divisions }

// Stream computes obj piece by piece and hands each piece to consume
// while it is buffered. The streamed extent is obj's requested extent, or
// its whole extent when no request is set. If obj's release-data flag is
// set, each piece's buffer is freed after consumption, bounding peak
// memory to a single piece.
func (s *Streamer) Stream(ctx context.Context, obj DataObject, consume func(ctx context.Context, piece extent.Extent) error) error {
	if err := s.exec.UpdateInformation(ctx, obj); err != nil {
		return err
	}

	final := obj.RequestedExtent()
	if final.Dims() == 0 {
		final = obj.WholeExtent()
	}
	// The piece loop overwrites obj's request with each piece; put the
	// caller's full demand back so a later Stream or Update sees it, not
	// the last piece.
	defer obj.SetRequestedExtent(final)

	pieces := extent.Split(final, s.divisions)
	s.log.Debug("streaming",
		zap.Stringer("extent", final),
		zap.Int("divisions", s.divisions),
		zap.Int("pieces", len(pieces)),
	)

	for i, piece := range pieces {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.exec.UpdateExtent(ctx, obj, piece); err != nil {
			return err
		}
		if consume != nil {
			if err := consume(ctx, piece); err != nil {
				return err
			}
		}
		piecesStreamedTotal.Inc()
		if s.events != nil {
			concurrency.TrySendThroughChannel(ctx, PieceEvent{Index: i, Total: len(pieces), Piece: piece}, s.events)
		}
		if obj.ReleaseDataFlag() {
			obj.ReleaseData()
		}
	}
	return nil
}
