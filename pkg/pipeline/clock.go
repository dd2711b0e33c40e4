package pipeline

import "sync/atomic"

// clock is the process-wide modification clock. Every content or
// configuration change takes a fresh tick, so staleness comparisons are
// total-ordered across all nodes and data objects.
var clock atomic.Uint64

func tick() uint64 {
	return clock.Add(1)
}
