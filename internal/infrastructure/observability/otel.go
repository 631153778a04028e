package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/zatekoja/mediflow-admin"

// Metrics holds all application metrics
type Metrics struct {
	OperationCount     metric.Int64Counter
	OperationDuration  metric.Float64Histogram
	APIRequestCount    metric.Int64Counter
	APIRequestDuration metric.Float64Histogram
	NotificationCount  metric.Int64Counter
}

// Setup initializes OpenTelemetry tracing, metrics, log export and runtime instrumentation
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	// Set up trace exporter
	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Set up metric exporter
	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	// Set up log exporter
	logExporter, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(endpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		_ = meterProvider.Shutdown(ctx)
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(loggerProvider)

	if err := runtime.Start(
		runtime.WithMeterProvider(meterProvider),
		runtime.WithMinimumReadMemStatsInterval(15*time.Second),
	); err != nil {
		_ = loggerProvider.Shutdown(ctx)
		_ = meterProvider.Shutdown(ctx)
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			loggerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
			tracerProvider.Shutdown(ctx),
		)
	}

	return shutdown, nil
}

// InitMetrics initializes application metrics on the global meter provider
func InitMetrics() (*Metrics, error) {
	return newMetrics(otel.Meter(instrumentationName))
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	operationCount, err := meter.Int64Counter(
		"collection.operation.count",
		metric.WithDescription("Number of collection sync operations"),
	)
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram(
		"collection.operation.duration",
		metric.WithDescription("Collection sync operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	apiRequestCount, err := meter.Int64Counter(
		"api.client.request.count",
		metric.WithDescription("Number of backend API requests"),
	)
	if err != nil {
		return nil, err
	}

	apiRequestDuration, err := meter.Float64Histogram(
		"api.client.request.duration",
		metric.WithDescription("Backend API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	notificationCount, err := meter.Int64Counter(
		"notification.count",
		metric.WithDescription("Number of user notifications emitted"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		OperationCount:     operationCount,
		OperationDuration:  operationDuration,
		APIRequestCount:    apiRequestCount,
		APIRequestDuration: apiRequestDuration,
		NotificationCount:  notificationCount,
	}, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(instrumentationName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError records an error in the current span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// RecordOperationMetric records one collection operation. A nil Metrics is a no-op.
func RecordOperationMetric(ctx context.Context, metrics *Metrics, collection, operation string, success bool, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("collection", collection),
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	}
	metrics.OperationCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.OperationDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordAPIMetric records one backend request. A nil Metrics is a no-op.
func RecordAPIMetric(ctx context.Context, metrics *Metrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	}
	metrics.APIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.APIRequestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordNotificationMetric records one emitted notification. A nil Metrics is a no-op.
func RecordNotificationMetric(ctx context.Context, metrics *Metrics, kind, sink string) {
	if metrics == nil {
		return
	}
	metrics.NotificationCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("sink", sink),
	))
}
