package trace

import (
	"context"
	"io"
	"os"

	"trade-journal/internal/infrastructure/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Provider 包裝 tracer provider；未啟用時所有操作皆為 no-op。
type Provider struct {
	tp      *sdktrace.TracerProvider
	tracer  oteltrace.Tracer
	enabled bool
}

// Init 依設定建立 stdout exporter 並設為全域 provider。
func Init(ctx context.Context, cfg config.TracingConfig) (*Provider, error) {
	return InitWithWriter(ctx, cfg, os.Stdout)
}

// InitWithWriter 同 Init，但 span 輸出到指定 writer。
func InitWithWriter(ctx context.Context, cfg config.TracingConfig, w io.Writer) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}

	name := cfg.ServiceName
	if name == "" {
		name = "trade-journal"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(name),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return &Provider{tp: tp, tracer: tp.Tracer(name), enabled: true}, nil
}

// Enabled 是否有實際輸出 span。
func (p *Provider) Enabled() bool {
	return p != nil && p.enabled
}

// StartSpan 開一個 span；未啟用時沿用 context 內既有的 span。
func (p *Provider) StartSpan(ctx context.Context, name string, opts ...oteltrace.SpanStartOption) (context.Context, oteltrace.Span) {
	if !p.Enabled() {
		return ctx, oteltrace.SpanFromContext(ctx)
	}
	return p.tracer.Start(ctx, name, opts...)
}

// Shutdown 送出尚未匯出的 span。
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// TraceFields 取出 context 中的 trace/span id，供日誌使用。
func TraceFields(ctx context.Context) (traceID, spanID string, ok bool) {
	sc := oteltrace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}
