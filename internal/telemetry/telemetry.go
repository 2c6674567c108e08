// Package telemetry installs the OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/elektrokombinacija/rgm/internal/config"
)

// ErrUnknownExporter is returned for an unsupported traces setting.
var ErrUnknownExporter = errors.New("telemetry: unknown exporter")

// ShutdownFunc flushes and stops the provider.
type ShutdownFunc func(context.Context) error

// Init installs a global tracer provider per cfg. Spans go to w when the
// stdout exporter is selected; nil w means os.Stderr. With traces "none"
// the global no-op provider stays in place.
func Init(ctx context.Context, cfg config.TelemetryConfig, w io.Writer) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch cfg.Traces {
	case "", "none":
		return noop, nil
	case "stdout":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.Traces)
	}

	if w == nil {
		w = os.Stderr
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("telemetry: create exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
	)
	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
