package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestMustNewTracerProviderExportsSampledSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()

	tp := MustNewTracerProvider(
		WithServiceName("voxelflow-test"),
		WithSamplingRatio(1),
		WithExporter(exporter),
	)
	t.Cleanup(func() {
		require.NoError(t, tp.Shutdown(context.Background()))
	})

	_, span := tp.Tracer("test").Start(context.Background(), "update")
	span.End()

	require.NoError(t, tp.ForceFlush(context.Background()))
	require.Len(t, exporter.GetSpans(), 1)
	require.Equal(t, "update", exporter.GetSpans()[0].Name)
}

func TestMustNewTracerProviderWithoutExporter(t *testing.T) {
	tp := MustNewTracerProvider(WithSamplingRatio(0))
	t.Cleanup(func() {
		require.NoError(t, tp.Shutdown(context.Background()))
	})

	_, span := tp.Tracer("test").Start(context.Background(), "update")
	span.End()
}

func TestTraceError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSyncer(exporter),
	)
	t.Cleanup(func() {
		require.NoError(t, tp.Shutdown(context.Background()))
	})

	_, span := tp.Tracer("test").Start(context.Background(), "update")
	TraceError(span, errors.New("boom"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
	require.Equal(t, oteltrace.SpanKindInternal, spans[0].SpanKind)
}
