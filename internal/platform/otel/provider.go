// Package otel configures OpenTelemetry tracing for the wedding commands.
package otel

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/wedding.rsvp/internal/platform/config"
)

const tracerPrefix = "github.com/louisbranch/wedding.rsvp/"

// Config selects the trace collector. Tracing stays off until Endpoint is
// set.
type Config struct {
	Endpoint    string  `env:"WEDDING_OTEL_ENDPOINT"`
	Enabled     bool    `env:"WEDDING_OTEL_ENABLED" envDefault:"true"`
	SampleRatio float64 `env:"WEDDING_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

func (c Config) active() bool {
	return c.Enabled && strings.TrimSpace(c.Endpoint) != ""
}

func (c Config) sampler() sdktrace.Sampler {
	switch {
	case c.SampleRatio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case c.SampleRatio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
	}
}

// SetupFromEnv reads Config from the environment and calls Setup.
func SetupFromEnv(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return noop, err
	}
	return Setup(ctx, serviceName, cfg)
}

// Setup registers a global tracer provider exporting over OTLP/HTTP and
// returns its shutdown function. An inactive cfg registers nothing.
func Setup(ctx context.Context, serviceName string, cfg Config) (func(context.Context) error, error) {
	if !cfg.active() {
		return noop, nil
	}
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(strings.TrimSpace(cfg.Endpoint)))
	if err != nil {
		return noop, fmt.Errorf("create otlp exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, fmt.Errorf("build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(cfg.sampler()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

// Tracer returns a tracer named under the module path, e.g. "wedding/rsvp".
func Tracer(name string) trace.Tracer {
	return otel.Tracer(tracerPrefix + strings.TrimPrefix(name, "/"))
}

func noop(context.Context) error { return nil }
