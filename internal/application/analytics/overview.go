package analytics

import (
	"sort"

	analyticsDomain "trade-journal/internal/domain/analytics"
	"trade-journal/internal/domain/journal"

	"github.com/shopspring/decimal"
)

// Overview 計算篩選後交易的整體績效。
func Overview(trades []journal.Trade, opts analyticsDomain.Options) (analyticsDomain.Overview, error) {
	if err := ValidateOptions(opts); err != nil {
		return analyticsDomain.Overview{}, err
	}
	filtered := Filter(trades, opts)

	var (
		out                 analyticsDomain.Overview
		grossWin, grossLoss decimal.Decimal
	)
	for _, t := range filtered {
		out.Total++
		pl := decimal.NewFromFloat(t.ProfitLoss)
		switch t.Outcome() {
		case journal.OutcomeWin:
			out.Wins++
			grossWin = grossWin.Add(pl)
			if t.ProfitLoss > out.LargestWin {
				out.LargestWin = t.ProfitLoss
			}
		case journal.OutcomeLoss:
			out.Losses++
			grossLoss = grossLoss.Add(pl)
			if t.ProfitLoss < out.LargestLoss {
				out.LargestLoss = t.ProfitLoss
			}
		default:
			out.Breakeven++
		}
	}

	net := grossWin.Add(grossLoss)
	out.WinRate = winRate(out.Wins, out.Total-out.Breakeven)
	out.ProfitLoss = net.InexactFloat64()
	out.AvgWin = average(grossWin, out.Wins)
	out.AvgLoss = average(grossLoss, out.Losses)
	if !grossLoss.IsZero() {
		out.ProfitFactor = grossWin.Div(grossLoss.Abs()).Round(2).InexactFloat64()
	}
	out.Expectancy = average(net, out.Total)
	out.Streak = streak(sortedByDate(filtered))
	return out, nil
}

// EquityCurve 依交易日期排序後累加損益，同日依原始順序。
func EquityCurve(trades []journal.Trade, opts analyticsDomain.Options) ([]analyticsDomain.EquityPoint, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	ordered := sortedByDate(Filter(trades, opts))

	points := make([]analyticsDomain.EquityPoint, 0, len(ordered))
	cum := decimal.Zero
	for _, t := range ordered {
		cum = cum.Add(decimal.NewFromFloat(t.ProfitLoss))
		points = append(points, analyticsDomain.EquityPoint{
			Date:       t.Date,
			ProfitLoss: t.ProfitLoss,
			Cumulative: cum.InexactFloat64(),
		})
	}
	return points, nil
}

// streak 從最後一筆往回數，保本交易跳過。
func streak(ordered []journal.Trade) int {
	s := 0
	for i := len(ordered) - 1; i >= 0; i-- {
		switch ordered[i].Outcome() {
		case journal.OutcomeWin:
			if s < 0 {
				return s
			}
			s++
		case journal.OutcomeLoss:
			if s > 0 {
				return s
			}
			s--
		}
	}
	return s
}

func sortedByDate(trades []journal.Trade) []journal.Trade {
	out := append([]journal.Trade(nil), trades...)
	sort.SliceStable(out, func(i, j int) bool {
		return dateOnly(out[i].Date).Before(dateOnly(out[j].Date))
	})
	return out
}
