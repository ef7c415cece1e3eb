// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package telemetry provides OpenTelemetry tracing utilities for cfgtree.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName is the tracer name used by the config resolver.
const InstrumentationName = "github.com/ManuGH/cfgtree/internal/config"

// Exporter names accepted in Config.Exporter.
const (
	ExporterGRPC = "grpc"
	ExporterHTTP = "http"
)

const (
	defaultServiceName   = "cfgtree"
	defaultExportTimeout = 10 * time.Second
	shutdownTimeout      = 5 * time.Second
)

// ErrUnsupportedExporter is returned for an Exporter name with no constructor.
var ErrUnsupportedExporter = errors.New("unsupported exporter type")

// Config selects where resolution spans are exported. The zero value
// disables tracing.
type Config struct {
	Enabled        bool
	ServiceName    string // default "cfgtree"
	ServiceVersion string

	// Exporter is ExporterGRPC or ExporterHTTP.
	Exporter string
	// Endpoint is host:port of the collector; empty uses the exporter's default.
	Endpoint string
	// Insecure disables TLS towards the collector.
	Insecure bool
	// Headers are sent with every export request.
	Headers map[string]string
	// ExportTimeout bounds one export call. Default 10s.
	ExportTimeout time.Duration

	// SamplingRate is the share of resolutions traced, 0.0 to 1.0.
	SamplingRate float64
}

type exporterFunc func(context.Context, Config) (sdktrace.SpanExporter, error)

var exporters = map[string]exporterFunc{
	ExporterGRPC: grpcExporter,
	ExporterHTTP: httpExporter,
}

// Validate reports configuration errors without dialing the collector.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, ok := exporters[c.Exporter]; !ok {
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedExporter, c.Exporter,
			strings.Join(slices.Sorted(maps.Keys(exporters)), ", "))
	}
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		return fmt.Errorf("sampling rate %v out of range [0, 1]", c.SamplingRate)
	}
	return nil
}

// Provider owns the tracer provider installed by NewProvider.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// NewProvider installs a global tracer provider built from cfg. A disabled
// config installs a noop provider, so resolver spans cost nothing.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return &Provider{}, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}
	if cfg.ExportTimeout <= 0 {
		cfg.ExportTimeout = defaultExportTimeout
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	exp, err := exporters[cfg.Exporter](ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s exporter: %w", cfg.Exporter, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp, sdktrace.WithExportTimeout(cfg.ExportTimeout)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(samplerFor(cfg.SamplingRate))),
	)
	otel.SetTracerProvider(tp)
	return &Provider{tp: tp}, nil
}

func grpcExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithTimeout(cfg.ExportTimeout)}
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	return otlptracegrpc.New(ctx, opts...)
}

func httpExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithTimeout(cfg.ExportTimeout)}
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

func samplerFor(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.TraceIDRatioBased(rate)
}

// Shutdown flushes buffered spans. It is a no-op for a disabled provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return p.tp.Shutdown(ctx)
}

// Tracer returns a tracer for the given name from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
