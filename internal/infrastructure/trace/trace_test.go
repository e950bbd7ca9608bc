package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"trade-journal/internal/infrastructure/config"
)

func TestDisabledProviderIsNoop(t *testing.T) {
	p, err := Init(context.Background(), config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Enabled() {
		t.Fatalf("provider should be disabled")
	}
	ctx, span := p.StartSpan(context.Background(), "noop")
	span.End()
	if _, _, ok := TraceFields(ctx); ok {
		t.Fatalf("disabled provider should not produce a valid span")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestEnabledProviderExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	p, err := InitWithWriter(context.Background(), config.TracingConfig{Enabled: true, ServiceName: "journal-test"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, span := p.StartSpan(context.Background(), "analytics.query")
	traceID, spanID, ok := TraceFields(ctx)
	if !ok || traceID == "" || spanID == "" {
		t.Fatalf("expected trace fields, got %q %q %v", traceID, spanID, ok)
	}
	span.End()

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "analytics.query") || !strings.Contains(out, "journal-test") {
		t.Fatalf("span not exported: %s", out)
	}
}

func TestNilProvider(t *testing.T) {
	var p *Provider
	if p.Enabled() {
		t.Fatalf("nil provider should be disabled")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
