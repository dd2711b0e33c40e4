package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/voxelflow/voxelflow/internal/build"
)

var (
	updatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: build.ProjectName,
		Name:      "pipeline_updates_total",
		Help:      "The total number of top-level pipeline updates.",
	})

	nodesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: build.ProjectName,
		Name:      "pipeline_nodes_generated_total",
		Help:      "The total number of node generation steps executed.",
	})

	nodesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: build.ProjectName,
		Name:      "pipeline_nodes_skipped_total",
		Help:      "The total number of nodes reused without recomputation.",
	})

	piecesStreamedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: build.ProjectName,
		Name:      "pipeline_pieces_streamed_total",
		Help:      "The total number of stream pieces computed and consumed.",
	})

	updateDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: build.ProjectName,
		Name:      "pipeline_update_duration_seconds",
		Help:      "Duration of top-level pipeline updates.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
	})
)
