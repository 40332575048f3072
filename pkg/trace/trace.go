// Package trace sets up OpenTelemetry tracing for the speech binding and its CLI.
// Until Initialize is called every span goes to the global no-op tracer, so library
// code can always start spans.
package trace

import (
	"context"
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of every span in this module.
const TracerName = "github.com/realtime-ai/speech-sdk-go"

// Exporter names accepted in Config.ExporterType.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// AttrEngine is the resource attribute naming the speech engine behind the spans.
const AttrEngine = "speech.engine"

var (
	mu       sync.RWMutex
	provider *sdktrace.TracerProvider
)

// Config holds the configuration for tracing.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// Environment is the deployment environment (development, staging, production).
	Environment string
	// Engine names the speech engine, "sdk" or "mock".
	Engine string
	// ExporterType is one of ExporterNone, ExporterStdout or ExporterOTLP.
	ExporterType string
	// OTLPEndpoint is the gRPC endpoint of the OTLP collector, e.g. "localhost:4317".
	OTLPEndpoint string
	// SamplingRate is the fraction of root spans sampled, 0.0 to 1.0.
	SamplingRate float64
}

// DefaultConfig returns a configuration with tracing disabled.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "speechctl",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		Engine:         "sdk",
		ExporterType:   ExporterNone,
		OTLPEndpoint:   "localhost:4317",
		SamplingRate:   1.0,
	}
}

// spanProcessor returns nil for ExporterNone: spans are then sampled and carry trace
// ids for log correlation, but are never exported.
func spanProcessor(ctx context.Context, cfg *Config) (sdktrace.SpanProcessor, error) {
	var exporter sdktrace.SpanExporter
	var err error
	switch cfg.ExporterType {
	case ExporterNone, "":
		return nil, nil
	case ExporterStdout:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case ExporterOTLP:
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.ExporterType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s exporter: %w", cfg.ExporterType, err)
	}
	return sdktrace.NewBatchSpanProcessor(exporter), nil
}

// Initialize installs the global tracer provider. It fails if called twice without
// Shutdown in between.
func Initialize(ctx context.Context, cfg *Config) error {
	mu.Lock()
	defer mu.Unlock()

	if provider != nil {
		return fmt.Errorf("tracer provider already initialized")
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
			attribute.String(AttrEngine, cfg.Engine),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	processor, err := spanProcessor(ctx, cfg)
	if err != nil {
		return err
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRate))),
	}
	if processor != nil {
		opts = append(opts, sdktrace.WithSpanProcessor(processor))
	}

	provider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Printf("[Trace] tracing initialized (exporter=%s, engine=%s)", cfg.ExporterType, cfg.Engine)
	return nil
}

// Shutdown flushes pending spans and removes the tracer provider.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if provider == nil {
		return nil
	}
	if err := provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	provider = nil
	return nil
}

// GetTracer returns the module tracer from the installed provider, or from the global
// one before Initialize.
func GetTracer() trace.Tracer {
	mu.RLock()
	defer mu.RUnlock()

	if provider == nil {
		return otel.Tracer(TracerName)
	}
	return provider.Tracer(TracerName)
}

// StartSpan starts a span on the module tracer.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, spanName, opts...)
}
