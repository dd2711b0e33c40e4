package filter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/filter"
	"github.com/voxelflow/voxelflow/pkg/pipeline"
	"github.com/voxelflow/voxelflow/pkg/testutils"
)

func TestStatisticsSummarizesAndPassesThrough(t *testing.T) {
	whole := extent.New([]int{0}, []int{5})
	src := filter.NewSource[float64]("ramp", whole, testutils.RampFill(whole))

	stats := filter.NewStatistics("stats")
	stats.SetInput(src.Output())

	require.NoError(t, pipeline.NewExecutor().Update(context.Background(), stats.Output()))

	require.Equal(t, 5, stats.Count())
	require.Equal(t, 2.0, stats.Mean())
	require.Equal(t, 0.0, stats.Min())
	require.Equal(t, 4.0, stats.Max())
	require.InDelta(t, 1.5811, stats.StdDev(), 1e-4)

	it, err := stats.Output().Iter(whole)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1, 2, 3, 4}, testutils.Collect(it))
}

func TestStatisticsEmptyRegionClearsMoments(t *testing.T) {
	whole := extent.New([]int{0}, []int{5})
	src := filter.NewSource[float64]("ramp", whole, testutils.RampFill(whole))

	stats := filter.NewStatistics("stats")
	stats.SetInput(src.Output())

	ctx := context.Background()
	require.NoError(t, pipeline.NewExecutor().Update(ctx, stats.Output()))
	require.Equal(t, 4.0, stats.Max())

	// An empty generation must not leave the previous region's moments
	// behind the zeroed count.
	stats.Output().SetRequestedExtent(extent.New([]int{0}, []int{0}))
	require.NoError(t, stats.GenerateData(ctx))

	require.Zero(t, stats.Count())
	require.Zero(t, stats.Mean())
	require.Zero(t, stats.StdDev())
	require.Zero(t, stats.Min())
	require.Zero(t, stats.Max())
}

func TestStatisticsOnSubRegion(t *testing.T) {
	whole := extent.New([]int{0}, []int{10})
	src := filter.NewSource[float64]("ramp", whole, testutils.RampFill(whole))

	stats := filter.NewStatistics("stats")
	stats.SetInput(src.Output())

	req := extent.New([]int{6}, []int{3})
	require.NoError(t, pipeline.NewExecutor().UpdateExtent(context.Background(), stats.Output(), req))

	require.Equal(t, 3, stats.Count())
	require.Equal(t, 7.0, stats.Mean())
	require.Equal(t, 6.0, stats.Min())
	require.Equal(t, 8.0, stats.Max())
}
