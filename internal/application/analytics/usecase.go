package analytics

import (
	"context"
	"fmt"
	"log"

	analyticsDomain "trade-journal/internal/domain/analytics"
	"trade-journal/internal/domain/journal"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "trade-journal/analytics"

// TradeReader 讀取使用者交易紀錄。
type TradeReader interface {
	List(ctx context.Context, filter journal.Filter) ([]journal.Trade, error)
}

// UseCase 載入交易並執行分析引擎。
type UseCase struct {
	trades TradeReader
	tracer trace.Tracer
}

// NewUseCase 建立分析用例，span 走全域 TracerProvider。
func NewUseCase(trades TradeReader) *UseCase {
	return &UseCase{
		trades: trades,
		tracer: otel.Tracer(tracerName),
	}
}

// Query 單一維度分組。
func (u *UseCase) Query(ctx context.Context, userID string, dim analyticsDomain.Dimension, opts analyticsDomain.Options) ([]analyticsDomain.GroupSummary, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("%w: unknown dimension %q", ErrInvalidInput, dim)
	}
	ctx, span := u.tracer.Start(ctx, "analytics.Query", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.String("dimension", string(dim)),
	))
	defer span.End()

	trades, err := u.load(ctx, userID, opts)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	rows, err := Summarize(dim, trades, opts)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("groups", len(rows)))
	log.Printf("analytics query done user_id=%s dim=%s trades=%d groups=%d", userID, dim, len(trades), len(rows))
	return rows, nil
}

// Overview 整體績效。
func (u *UseCase) Overview(ctx context.Context, userID string, opts analyticsDomain.Options) (analyticsDomain.Overview, error) {
	ctx, span := u.tracer.Start(ctx, "analytics.Overview", trace.WithAttributes(attribute.String("user_id", userID)))
	defer span.End()

	trades, err := u.load(ctx, userID, opts)
	if err != nil {
		recordErr(span, err)
		return analyticsDomain.Overview{}, err
	}
	return Overview(trades, opts)
}

// Equity 累積損益曲線。
func (u *UseCase) Equity(ctx context.Context, userID string, opts analyticsDomain.Options) ([]analyticsDomain.EquityPoint, error) {
	ctx, span := u.tracer.Start(ctx, "analytics.Equity", trace.WithAttributes(attribute.String("user_id", userID)))
	defer span.End()

	trades, err := u.load(ctx, userID, opts)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	return EquityCurve(trades, opts)
}

// Dashboard 只讀一次交易，各維度並行計算。
func (u *UseCase) Dashboard(ctx context.Context, userID string, opts analyticsDomain.Options) (analyticsDomain.Dashboard, error) {
	ctx, span := u.tracer.Start(ctx, "analytics.Dashboard", trace.WithAttributes(attribute.String("user_id", userID)))
	defer span.End()

	out := analyticsDomain.Dashboard{}
	trades, err := u.load(ctx, userID, opts)
	if err != nil {
		recordErr(span, err)
		return out, err
	}

	results := make([][]analyticsDomain.GroupSummary, len(analyticsDomain.Dimensions))
	g, gctx := errgroup.WithContext(ctx)
	for i, dim := range analyticsDomain.Dimensions {
		g.Go(func() error {
			_, child := u.tracer.Start(gctx, "analytics.Summarize", trace.WithAttributes(attribute.String("dimension", string(dim))))
			defer child.End()
			rows, err := Summarize(dim, trades, opts)
			if err != nil {
				recordErr(child, err)
				return err
			}
			results[i] = rows
			return nil
		})
	}
	g.Go(func() error {
		ov, err := Overview(trades, opts)
		out.Overview = ov
		return err
	})
	g.Go(func() error {
		eq, err := EquityCurve(trades, opts)
		out.Equity = eq
		return err
	})
	if err := g.Wait(); err != nil {
		recordErr(span, err)
		return analyticsDomain.Dashboard{}, err
	}

	out.Dimensions = make(map[analyticsDomain.Dimension][]analyticsDomain.GroupSummary, len(results))
	for i, dim := range analyticsDomain.Dimensions {
		out.Dimensions[dim] = results[i]
	}
	log.Printf("analytics dashboard done user_id=%s trades=%d", userID, len(trades))
	return out, nil
}

// load 參數不合法時不讀資料庫；日期區間先交給 repo 縮小範圍。
func (u *UseCase) load(ctx context.Context, userID string, opts analyticsDomain.Options) ([]journal.Trade, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	trades, err := u.trades.List(ctx, journal.Filter{
		UserID: userID,
		From:   opts.From,
		To:     opts.To,
	})
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	return trades, nil
}

func recordErr(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
