// Package telemetry wires otel tracing and the prometheus run metrics.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ServiceName identifies this tool in traces.
const ServiceName = "filegraph"

// InitTracing installs a global TracerProvider that writes spans as JSON to
// traceFile. With an empty traceFile the global no-op provider stays in
// place. The returned shutdown flushes pending spans and closes the file.
func InitTracing(ctx context.Context, traceFile, version string) (shutdown func(context.Context) error, err error) {
	if traceFile == "" {
		return func(context.Context) error { return nil }, nil
	}

	f, err := os.Create(traceFile)
	if err != nil {
		return nil, fmt.Errorf("create trace file: %w", err)
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f), stdouttrace.WithPrettyPrint())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", version),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), f.Close())
	}, nil
}
