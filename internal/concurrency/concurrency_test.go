package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewPoolReturnsFirstError(t *testing.T) {
	t.Cleanup(func() {
		goleak.VerifyNone(t)
	})

	errBoom := errors.New("boom")

	p := NewPool(context.Background(), 2)
	for i := 0; i < 8; i++ {
		i := i
		p.Go(func(ctx context.Context) error {
			if i == 3 {
				return errBoom
			}
			return nil
		})
	}

	require.ErrorIs(t, p.Wait(), errBoom)
}

func TestNewPoolCancelsRemainingTasks(t *testing.T) {
	t.Cleanup(func() {
		goleak.VerifyNone(t)
	})

	var cancelled atomic.Int32

	p := NewPool(context.Background(), 1)
	p.Go(func(ctx context.Context) error {
		return errors.New("first")
	})
	for i := 0; i < 4; i++ {
		p.Go(func(ctx context.Context) error {
			if ctx.Err() != nil {
				cancelled.Add(1)
			}
			return ctx.Err()
		})
	}

	require.Error(t, p.Wait())
	require.Positive(t, cancelled.Load())
}

func TestTrySendThroughChannel(t *testing.T) {
	var testcases = map[string]struct {
		ctxCancelled bool
	}{
		`ctx_cancel`:    {ctxCancelled: true},
		`no_ctx_cancel`: {ctxCancelled: false},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var channel chan int

			if tc.ctxCancelled {
				channel = make(chan int)
				var cancel context.CancelFunc
				ctx, cancel = context.WithCancel(ctx)
				cancel()
			} else {
				channel = make(chan int, 1)
			}

			sent := TrySendThroughChannel(ctx, 7, channel)
			if tc.ctxCancelled {
				require.False(t, sent)
			} else {
				require.True(t, sent)
				require.Equal(t, 7, <-channel)
			}
		})
	}
}
