package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	analyticsDomain "trade-journal/internal/domain/analytics"
)

// AnalyticsReader 提供分析查詢。
type AnalyticsReader interface {
	Query(ctx context.Context, userID string, dim analyticsDomain.Dimension, opts analyticsDomain.Options) ([]analyticsDomain.GroupSummary, error)
	Overview(ctx context.Context, userID string, opts analyticsDomain.Options) (analyticsDomain.Overview, error)
}

// UseCase 報表匯出與摘要文字。
type UseCase struct {
	analytics AnalyticsReader
	now       func() time.Time
}

// NewUseCase 建立報表用例。
func NewUseCase(analytics AnalyticsReader) *UseCase {
	return &UseCase{
		analytics: analytics,
		now:       time.Now,
	}
}

// ExportDimensionCSV 匯出單一維度的分組摘要 CSV。
func (u *UseCase) ExportDimensionCSV(ctx context.Context, userID string, dim analyticsDomain.Dimension, opts analyticsDomain.Options) (string, error) {
	rows, err := u.analytics.Query(ctx, userID, dim, opts)
	if err != nil {
		return "", err
	}

	withAvg := dim == analyticsDomain.DimensionConfluenceCount || dim == analyticsDomain.DimensionConfluenceCombination
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	header := []string{"group", "total", "wins", "losses", "breakeven", "win_rate", "profit_loss"}
	if withAvg {
		header = append(header, "avg_profit_loss")
	}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, r := range rows {
		record := []string{
			r.GroupKey,
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses),
			strconv.Itoa(r.Breakeven),
			formatFloat(r.WinRate),
			formatFloat(r.ProfitLoss),
		}
		if withAvg {
			record = append(record, formatPtr(r.AvgProfitLoss))
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// BuildDigest 產出推播用的績效摘要文字，統計當月資料。
func (u *UseCase) BuildDigest(ctx context.Context, userID string) (string, error) {
	now := u.now()
	opts := analyticsDomain.Options{Month: int(now.Month()), Year: now.Year()}
	ov, err := u.analytics.Overview(ctx, userID, opts)
	if err != nil {
		return "", err
	}
	trend, err := u.analytics.Query(ctx, userID, analyticsDomain.DimensionTrend, opts)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Journal digest %s\n", now.Format("2006-01"))
	fmt.Fprintf(&sb, "Trades: %d (W %d / L %d / BE %d)\n", ov.Total, ov.Wins, ov.Losses, ov.Breakeven)
	fmt.Fprintf(&sb, "Win rate: %s%%  P/L: %s\n", formatFloat(ov.WinRate), formatFloat(ov.ProfitLoss))
	fmt.Fprintf(&sb, "Profit factor: %s  Streak: %d\n", formatFloat(ov.ProfitFactor), ov.Streak)
	for _, r := range trend {
		fmt.Fprintf(&sb, "%s: %d trades, %s%%\n", r.GroupKey, r.Total, formatFloat(r.WinRate))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
