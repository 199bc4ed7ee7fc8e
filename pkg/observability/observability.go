// Package observability provides tracing for Tabular. The exporter is
// deliberately stdout-only; this layer has no network surface and its
// spans exist for local diagnosis of slow reads and config loads.
package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/corvus-data/tabular/pkg/errors"
)

// Config contains tracing configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	PrettyPrint    bool
}

var (
	tracer   trace.Tracer = noop.NewTracerProvider().Tracer("tabular")
	provider *sdktrace.TracerProvider
	initOnce sync.Once
)

// Init sets up the tracer provider with a stdout span exporter. It is
// safe to call more than once; only the first call takes effect.
func Init(ctx context.Context, cfg Config) error {
	var err error

	initOnce.Do(func() {
		var opts []stdouttrace.Option
		if cfg.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}

		exporter, exportErr := stdouttrace.New(opts...)
		if exportErr != nil {
			err = errors.Wrap(exportErr, errors.ErrorTypeInternal, "failed to create stdout exporter")
			return
		}

		res, resErr := resource.New(ctx,
			resource.WithAttributes(
				semconv.ServiceNameKey.String(cfg.ServiceName),
				semconv.ServiceVersionKey.String(cfg.ServiceVersion),
				semconv.DeploymentEnvironmentKey.String(cfg.Environment),
			),
		)
		if resErr != nil {
			err = errors.Wrap(resErr, errors.ErrorTypeInternal, "failed to create resource")
			return
		}

		provider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(exporter),
		)

		otel.SetTracerProvider(provider)
		tracer = provider.Tracer(cfg.ServiceName)
	})

	return err
}

// Tracer returns the global tracer. Before Init it is a no-op tracer.
func Tracer() trace.Tracer {
	return tracer
}

// StartSpan starts a span on the global tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Shutdown flushes pending spans and stops the provider.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	if err := provider.Shutdown(ctx); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to shut down tracer provider")
	}
	return nil
}
