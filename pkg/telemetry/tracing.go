// Package telemetry wires up the OTel tracer provider used to trace
// pipeline updates.
package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/voxelflow/voxelflow/internal/build"
)

type TracerOption func(t *CustomTracer)

func WithServiceName(serviceName string) TracerOption {
	return func(t *CustomTracer) {
		t.serviceName = serviceName
	}
}

func WithSamplingRatio(samplingRatio float64) TracerOption {
	return func(t *CustomTracer) {
		t.samplingRatio = samplingRatio
	}
}

// WithExporter sets the span exporter. Without one the provider samples
// spans but exports nothing, which is the right default for a library
// embedded in a larger process.
func WithExporter(exp sdktrace.SpanExporter) TracerOption {
	return func(t *CustomTracer) {
		t.exporter = exp
	}
}

type CustomTracer struct {
	serviceName   string
	samplingRatio float64
	exporter      sdktrace.SpanExporter
}

// MustNewTracerProvider builds a tracer provider, installs it as the
// global provider, and returns it. Panics on resource construction
// failure.
func MustNewTracerProvider(opts ...TracerOption) *sdktrace.TracerProvider {
	tracer := &CustomTracer{
		serviceName:   build.ProjectName,
		samplingRatio: 0,
		exporter:      nil,
	}

	for _, opt := range opts {
		opt(tracer)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceNameKey.String(tracer.serviceName),
			semconv.ServiceVersionKey.String(build.Version),
		))
	if err != nil {
		panic(err)
	}

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(tracer.samplingRatio)),
		sdktrace.WithResource(res),
	}
	if tracer.exporter != nil {
		providerOpts = append(providerOpts, sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(tracer.exporter)))
	}

	tp := sdktrace.NewTracerProvider(providerOpts...)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	otel.SetTracerProvider(tp)

	return tp
}

// TraceError records err against the span and marks the span as failed.
func TraceError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
