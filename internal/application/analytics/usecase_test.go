package analytics

import (
	"context"
	"errors"
	"testing"

	analyticsDomain "trade-journal/internal/domain/analytics"
	"trade-journal/internal/domain/journal"
)

type fakeTradeReader struct {
	trades []journal.Trade
	err    error
	calls  int
	last   journal.Filter
}

func (f *fakeTradeReader) List(_ context.Context, filter journal.Filter) ([]journal.Trade, error) {
	f.calls++
	f.last = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.trades, nil
}

func TestUseCaseQuery(t *testing.T) {
	reader := &fakeTradeReader{trades: sampleTrades()}
	uc := NewUseCase(reader)

	rows, err := uc.Query(context.Background(), "u1", analyticsDomain.DimensionTrend, analyticsDomain.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[0].Total != 1 || rows[1].Total != 1 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if reader.last.UserID != "u1" {
		t.Fatalf("expected user filter, got %+v", reader.last)
	}
}

func TestUseCaseQuery_InvalidSkipsLoad(t *testing.T) {
	reader := &fakeTradeReader{}
	uc := NewUseCase(reader)

	if _, err := uc.Query(context.Background(), "u1", "hour", analyticsDomain.Options{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := uc.Query(context.Background(), "u1", analyticsDomain.DimensionDay, analyticsDomain.Options{Month: 13}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := uc.Overview(context.Background(), "", analyticsDomain.Options{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing user, got %v", err)
	}
	if reader.calls != 0 {
		t.Fatalf("repo should not be called, calls=%d", reader.calls)
	}
}

func TestUseCaseQuery_RepoError(t *testing.T) {
	boom := errors.New("db down")
	uc := NewUseCase(&fakeTradeReader{err: boom})
	if _, err := uc.Query(context.Background(), "u1", analyticsDomain.DimensionDay, analyticsDomain.Options{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}

func TestUseCaseDashboard(t *testing.T) {
	reader := &fakeTradeReader{trades: sampleTrades()}
	uc := NewUseCase(reader)

	out, err := uc.Dashboard(context.Background(), "u1", analyticsDomain.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reader.calls != 1 {
		t.Fatalf("dashboard should load trades once, calls=%d", reader.calls)
	}
	if len(out.Dimensions) != len(analyticsDomain.Dimensions) {
		t.Fatalf("expected all dimensions, got %d", len(out.Dimensions))
	}
	if got := out.Dimensions[analyticsDomain.DimensionDay]; len(got) != 5 || got[0].Total != 2 {
		t.Fatalf("unexpected day rows: %+v", got)
	}
	if out.Overview.Total != 2 || out.Overview.ProfitLoss != 20 {
		t.Fatalf("unexpected overview: %+v", out.Overview)
	}
	if len(out.Equity) != 2 || out.Equity[1].Cumulative != 20 {
		t.Fatalf("unexpected equity: %+v", out.Equity)
	}
}
