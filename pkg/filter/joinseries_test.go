package filter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/filter"
	"github.com/voxelflow/voxelflow/pkg/iterator"
	"github.com/voxelflow/voxelflow/pkg/pipeline"
	"github.com/voxelflow/voxelflow/pkg/testutils"
)

func TestJoinSeriesRebuildsVolumeFromSlices(t *testing.T) {
	whole := extent.New([]int{0, 0}, []int{3, 2})
	join := filter.NewJoinSeries[float64]("join")
	for i := 0; i < 3; i++ {
		base := float64(i * 100)
		src := filter.NewSource[float64]("slice", whole,
			func(ctx context.Context, region extent.Extent, it *iterator.MutIterator[float64]) error {
				for it.GoToBegin(); !it.IsAtEnd(); it.Advance() {
					it.Set(base + float64(whole.Offset(it.Index())))
				}
				return nil
			})
		join.PushInput(src.Output())
	}

	require.NoError(t, pipeline.NewExecutor().Update(context.Background(), join.Output()))

	out := join.Output()
	require.True(t, out.WholeExtent().Equal(extent.New([]int{0, 0, 0}, []int{3, 2, 3})))

	it, err := out.Iter(out.WholeExtent())
	require.NoError(t, err)
	values := testutils.Collect(it)
	require.Len(t, values, 18)
	for i, v := range values {
		require.Equal(t, float64((i/6)*100+i%6), v)
	}
}

func TestJoinSeriesInformationErrors(t *testing.T) {
	t.Run("no_inputs", func(t *testing.T) {
		join := filter.NewJoinSeries[float64]("join")
		err := pipeline.NewExecutor().Update(context.Background(), join.Output())
		require.ErrorIs(t, err, pipeline.ErrStructuralMismatch)
	})

	t.Run("mismatched_slices", func(t *testing.T) {
		a := extent.New([]int{0}, []int{4})
		b := extent.New([]int{0}, []int{5})
		join := filter.NewJoinSeries[float64]("join")
		join.PushInput(filter.NewSource[float64]("a", a, testutils.RampFill(a)).Output())
		join.PushInput(filter.NewSource[float64]("b", b, testutils.RampFill(b)).Output())

		err := pipeline.NewExecutor().Update(context.Background(), join.Output())
		require.ErrorIs(t, err, pipeline.ErrStructuralMismatch)
	})
}

// TestJoinSeriesStreamedSliceBySlice drives a slice-extraction fan-out
// through a streamed join: one volume source feeds a monitor, the monitor
// feeds one extractor per z slice, and the join stacks the slices back
// into a volume. Streaming the join with one division per slice must pull
// exactly one slab of the upstream volume at a time and reproduce the
// single-update result bit for bit.
func TestJoinSeriesStreamedSliceBySlice(t *testing.T) {
	const slices = 4
	whole := extent.New([]int{0, 0, 0}, []int{4, 4, slices})
	ctx := context.Background()

	build := func() (*filter.Source[float64], *filter.Monitor[float64], *filter.JoinSeries[float64]) {
		src := filter.NewSource[float64]("volume", whole, testutils.RampFill(whole))
		mon := filter.NewMonitor[float64]("monitor")
		mon.SetInput(src.Output())
		mon.Output().SetReleaseDataFlag(true)

		join := filter.NewJoinSeries[float64]("join")
		for i := 0; i < slices; i++ {
			ex := filter.NewExtract[float64]("slice")
			ex.SetInput(mon.Output())
			ex.SetExtractionExtent(extent.New([]int{0, 0, i}, []int{4, 4, 0}))
			ex.Output().SetReleaseDataFlag(true)
			join.PushInput(ex.Output())
		}
		return src, mon, join
	}

	// Reference: one monolithic update. The extractors demand different
	// slabs of the shared monitor output, so even here the volume is
	// pulled slab by slab, once per slice.
	refSrc, refMon, refJoin := build()
	require.NoError(t, pipeline.NewExecutor().Update(ctx, refJoin.Output()))
	refIt, err := refJoin.Output().Iter(whole)
	require.NoError(t, err)
	want := testutils.ChecksumFloat64(testutils.Collect(refIt))
	require.Equal(t, slices, refSrc.Reads())
	require.Equal(t, slices, refMon.Updates())

	src, mon, join := build()
	streamer := pipeline.NewStreamer(pipeline.NewExecutor())
	streamer.SetNumberOfStreamDivisions(slices)

	collected := make([]float64, whole.Elements())
	err = streamer.Stream(ctx, join.Output(), func(ctx context.Context, piece extent.Extent) error {
		it, err := join.Output().Iter(piece)
		if err != nil {
			return err
		}
		for it.GoToBegin(); !it.IsAtEnd(); it.Advance() {
			collected[whole.Offset(it.Index())] = it.Get()
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, want, testutils.ChecksumFloat64(collected))

	// One slab of the volume was pulled per streamed piece.
	require.Equal(t, slices, src.Reads())
	require.Equal(t, slices, mon.Updates())
	for i, region := range mon.Regions() {
		require.True(t, region.Equal(extent.New([]int{0, 0, i}, []int{4, 4, 1})),
			"slab %d, got %v", i, region)
	}
}
