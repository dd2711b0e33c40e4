// Package testutils contains helpers shared by the engine tests.
package testutils

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/iterator"
)

// Collect drains it in iteration order and returns the visited values.
func Collect[T any](it *iterator.Iterator[T]) []T {
	var out []T
	for it.GoToBegin(); !it.IsAtEnd(); it.Advance() {
		out = append(out, it.Get())
	}
	return out
}

// CollectIndexed drains it and returns value plus a copy of each index,
// for tests that assert on traversal order.
func CollectIndexed[T any](it *iterator.Iterator[T]) ([]T, [][]int) {
	var values []T
	var indices [][]int
	for it.GoToBegin(); !it.IsAtEnd(); it.Advance() {
		values = append(values, it.Get())
		idx := it.Index()
		indices = append(indices, append([]int(nil), idx...))
	}
	return values, indices
}

// ChecksumFloat64 digests values bit-exactly. Two buffers produced by
// equivalent update schedules must hash identically.
func ChecksumFloat64(values []float64) uint64 {
	h := xxhash.New()
	var scratch [8]byte
	for _, v := range values {
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
		_, _ = h.Write(scratch[:])
	}
	return h.Sum64()
}

// RampFill writes idx-derived ramp values so every element of a buffer
// is distinguishable: value = offset within the whole extent.
func RampFill(whole extent.Extent) func(ctx context.Context, region extent.Extent, it *iterator.MutIterator[float64]) error {
	return func(ctx context.Context, region extent.Extent, it *iterator.MutIterator[float64]) error {
		for it.GoToBegin(); !it.IsAtEnd(); it.Advance() {
			it.Set(float64(whole.Offset(it.Index())))
		}
		return nil
	}
}
