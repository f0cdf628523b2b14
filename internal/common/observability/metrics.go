package observability

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the OpenTelemetry meter and tracer providers of the
// process. Metrics are exported through the Prometheus registry.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
	matchScore     otelmetric.Float64Histogram
}

type Options struct {
	// SampleRatio is the fraction of root spans recorded. Zero disables tracing.
	SampleRatio float64
	// Registerer receives the exporter collector. Nil means the default registry.
	Registerer prometheus.Registerer
}

func New(serviceName string) *Observability {
	return NewWithOptions(serviceName, Options{SampleRatio: 1})
}

func NewWithOptions(serviceName string, opts Options) *Observability {
	res := resource.NewSchemaless(semconv.ServiceName(serviceName))

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
	)
	otel.SetTracerProvider(tracerProvider)

	o := &Observability{
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(serviceName),
	}

	var exporterOpts []otelprom.Option
	if opts.Registerer != nil {
		exporterOpts = append(exporterOpts, otelprom.WithRegisterer(opts.Registerer))
	}

	exporter, err := otelprom.New(exporterOpts...)
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	matchScore, _ := meter.Float64Histogram(
		"matching.top_score",
		otelmetric.WithDescription("Score of the best ranked broker"),
	)

	o.meterProvider = provider
	o.meter = meter
	o.jobCounter = jobCounter
	o.jobDuration = jobDuration
	o.matchScore = matchScore
	return o
}

// Tracer returns the process tracer.
func (o *Observability) Tracer() trace.Tracer {
	if o.tracer == nil {
		return otel.Tracer("broker-match-workers")
	}
	return o.tracer
}

// StartSpan opens a span on the process tracer.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordTopScore(ctx context.Context, score float64) {
	if o.matchScore != nil {
		o.matchScore.Record(ctx, score)
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Failed to shut down tracer provider: %v", err)
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			log.Printf("Failed to shut down meter provider: %v", err)
		}
	}
}
