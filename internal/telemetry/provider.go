package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"

	"github.com/unkn0wn-root/playterm/internal/errdef"
)

const TracerName = "github.com/unkn0wn-root/playterm/dispatch"

// Provider owns the tracer provider and how to flush it.
type Provider struct {
	tp       trace.TracerProvider
	shutdown func(context.Context) error
}

func (p *Provider) Tracer() trace.Tracer {
	return p.tp.Tracer(TracerName)
}

// Shutdown flushes pending spans. It is safe to call on a noop provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

// Noop returns a provider whose spans are discarded.
func Noop() *Provider {
	return &Provider{tp: noop.NewTracerProvider()}
}

// Setup builds an OTLP/gRPC exporter when cfg is enabled and a noop
// provider otherwise.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled() {
		return Noop(), nil
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithTimeout(cfg.DialTimeout),
		otlptracegrpc.WithDialOption(grpc.WithUserAgent(userAgent(cfg))),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}

	exp, err := otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeConfig, err, "create otlp exporter")
	}

	attrs := []attribute.KeyValue{attribute.String("service.name", cfg.ServiceName)}
	if cfg.Version != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.Version))
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(attrs...)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	return &Provider{tp: tp, shutdown: tp.Shutdown}, nil
}

func userAgent(cfg Config) string {
	if cfg.Version == "" {
		return cfg.ServiceName
	}
	return cfg.ServiceName + "/" + cfg.Version
}
