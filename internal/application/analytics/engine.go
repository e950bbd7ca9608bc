package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	analyticsDomain "trade-journal/internal/domain/analytics"
	"trade-journal/internal/domain/journal"

	"github.com/shopspring/decimal"
)

// TopCombinationLimit 匯合組合報表固定只回傳前 15 名，需要更多請加篩選條件重查。
const TopCombinationLimit = 15

const (
	comboSeparator = " + "
	maxConfluences = 5
	seededCounts   = 4
)

var ErrInvalidInput = errors.New("invalid analytics input")

// ValidateOptions 在分組前檢查篩選參數。
func ValidateOptions(opts analyticsDomain.Options) error {
	if opts.Month < 0 || opts.Month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	if opts.Year < 0 {
		return fmt.Errorf("%w: year must not be negative", ErrInvalidInput)
	}
	if opts.From != nil && opts.To != nil && dateOnly(*opts.From).After(dateOnly(*opts.To)) {
		return fmt.Errorf("%w: from must not be after to", ErrInvalidInput)
	}
	return nil
}

// Filter 依月份、年份、日期區間與市場狀態篩選，回傳新的切片，不修改輸入。
func Filter(trades []journal.Trade, opts analyticsDomain.Options) []journal.Trade {
	out := make([]journal.Trade, 0, len(trades))
	for _, t := range trades {
		if opts.Month != 0 && int(t.Date.Month()) != opts.Month {
			continue
		}
		if opts.Year != 0 && t.Date.Year() != opts.Year {
			continue
		}
		if opts.From != nil && dateOnly(t.Date).Before(dateOnly(*opts.From)) {
			continue
		}
		if opts.To != nil && dateOnly(t.Date).After(dateOnly(*opts.To)) {
			continue
		}
		if opts.MarketCondition != "" && t.MarketCondition != opts.MarketCondition {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Summarize 依維度分派到對應的分組函式。
func Summarize(dim analyticsDomain.Dimension, trades []journal.Trade, opts analyticsDomain.Options) ([]analyticsDomain.GroupSummary, error) {
	switch dim {
	case analyticsDomain.DimensionMarketCondition:
		return ByMarketCondition(trades, opts)
	case analyticsDomain.DimensionDay:
		return ByDay(trades, opts)
	case analyticsDomain.DimensionTrend:
		return ByTrend(trades, opts)
	case analyticsDomain.DimensionConfluenceCount:
		return ByConfluenceCount(trades, opts)
	case analyticsDomain.DimensionConfluenceCombination:
		return ByConfluenceCombination(trades, opts)
	default:
		return nil, fmt.Errorf("%w: unknown dimension %q", ErrInvalidInput, dim)
	}
}

// ByMarketCondition 依市場狀態分組，依首次出現順序輸出。
func ByMarketCondition(trades []journal.Trade, opts analyticsDomain.Options) ([]analyticsDomain.GroupSummary, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	groups := newGroupSet()
	for _, t := range Filter(trades, opts) {
		groups.get(conditionKey(t)).add(t)
	}
	return groups.summaries(false), nil
}

// ByDay 預先建立週一至週五，非標準日名歸入 Unknown 並排在最後。
func ByDay(trades []journal.Trade, opts analyticsDomain.Options) ([]analyticsDomain.GroupSummary, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	groups := newGroupSet()
	for _, d := range journal.Weekdays {
		groups.get(d)
	}
	for _, t := range Filter(trades, opts) {
		key := strings.TrimSpace(t.Day)
		if !journal.IsWeekday(key) {
			key = analyticsDomain.UnknownKey
		}
		groups.get(key).add(t)
	}
	return groups.summaries(false), nil
}

// ByTrend 順勢/逆勢二分；缺少 action 或 direction 的交易不列入。
func ByTrend(trades []journal.Trade, opts analyticsDomain.Options) ([]analyticsDomain.GroupSummary, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	groups := newGroupSet()
	with := groups.get(analyticsDomain.WithTrend)
	against := groups.get(analyticsDomain.AgainstTrend)
	for _, t := range Filter(trades, opts) {
		aligned, ok := trendAligned(t)
		if !ok {
			continue
		}
		if aligned {
			with.add(t)
		} else {
			against.add(t)
		}
	}
	return groups.summaries(false), nil
}

// ByConfluenceCount 依有效匯合因子數量分組，空的分組不輸出。
func ByConfluenceCount(trades []journal.Trade, opts analyticsDomain.Options) ([]analyticsDomain.GroupSummary, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	buckets := make([]*accumulator, maxConfluences+1)
	for i := 0; i <= seededCounts; i++ {
		buckets[i] = &accumulator{key: strconv.Itoa(i)}
	}
	for _, t := range Filter(trades, opts) {
		n := len(t.ActiveConfluences())
		if buckets[n] == nil {
			buckets[n] = &accumulator{key: strconv.Itoa(n)}
		}
		buckets[n].add(t)
	}

	out := make([]analyticsDomain.GroupSummary, 0, len(buckets))
	for _, b := range buckets {
		if b == nil || b.total == 0 {
			continue
		}
		out = append(out, b.summary(true))
	}
	return out, nil
}

// ByConfluenceCombination 依匯合組合分組，依勝率與平均損益排序後取前 TopCombinationLimit 名。
func ByConfluenceCombination(trades []journal.Trade, opts analyticsDomain.Options) ([]analyticsDomain.GroupSummary, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	groups := newGroupSet()
	for _, t := range Filter(trades, opts) {
		key := comboKey(t, opts.KeyByType)
		if key == "" {
			continue
		}
		if opts.SplitByCondition {
			key = fmt.Sprintf("%s (%s)", key, conditionKey(t))
		}
		groups.get(key).add(t)
	}

	out := groups.summaries(true)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		ai, aj := *out[i].AvgProfitLoss, *out[j].AvgProfitLoss
		if ai != aj {
			return ai > aj
		}
		return out[i].GroupKey < out[j].GroupKey
	})
	if len(out) > TopCombinationLimit {
		out = out[:TopCombinationLimit]
	}
	return out, nil
}

func conditionKey(t journal.Trade) string {
	if !journal.IsPresent(t.MarketCondition) {
		return analyticsDomain.UnknownKey
	}
	return strings.TrimSpace(t.MarketCondition)
}

// trendAligned 第二個回傳值為 false 表示欄位缺漏或無法辨識。
func trendAligned(t journal.Trade) (bool, bool) {
	action := strings.TrimSpace(string(t.Action))
	direction := strings.TrimSpace(string(t.Direction))
	buy := strings.EqualFold(action, string(journal.ActionBuy))
	sell := strings.EqualFold(action, string(journal.ActionSell))
	bullish := strings.EqualFold(direction, string(journal.DirectionBullish))
	bearish := strings.EqualFold(direction, string(journal.DirectionBearish))
	if !(buy || sell) || !(bullish || bearish) {
		return false, false
	}
	return (buy && bullish) || (sell && bearish), true
}

func comboKey(t journal.Trade, byType bool) string {
	active := t.ActiveConfluences()
	if len(active) == 0 {
		return ""
	}
	parts := make([]string, len(active))
	for i, c := range active {
		if byType {
			parts[i] = string(c.Tag)
		} else {
			parts[i] = string(c.Tag) + ":" + c.Value
		}
	}
	return strings.Join(parts, comboSeparator)
}

type accumulator struct {
	key       string
	total     int
	wins      int
	losses    int
	breakeven int
	pl        decimal.Decimal
}

func (a *accumulator) add(t journal.Trade) {
	a.total++
	switch t.Outcome() {
	case journal.OutcomeWin:
		a.wins++
	case journal.OutcomeLoss:
		a.losses++
	default:
		a.breakeven++
	}
	a.pl = a.pl.Add(decimal.NewFromFloat(t.ProfitLoss))
}

func (a *accumulator) summary(withAvg bool) analyticsDomain.GroupSummary {
	out := analyticsDomain.GroupSummary{
		GroupKey:   a.key,
		Total:      a.total,
		Wins:       a.wins,
		Losses:     a.losses,
		Breakeven:  a.breakeven,
		WinRate:    winRate(a.wins, a.total-a.breakeven),
		ProfitLoss: a.pl.InexactFloat64(),
	}
	if withAvg {
		avg := average(a.pl, a.total)
		out.AvgProfitLoss = &avg
	}
	return out
}

// groupSet 保留分組建立順序。
type groupSet struct {
	order []*accumulator
	byKey map[string]*accumulator
}

func newGroupSet() *groupSet {
	return &groupSet{byKey: make(map[string]*accumulator)}
}

func (g *groupSet) get(key string) *accumulator {
	if a, ok := g.byKey[key]; ok {
		return a
	}
	a := &accumulator{key: key}
	g.byKey[key] = a
	g.order = append(g.order, a)
	return a
}

func (g *groupSet) summaries(withAvg bool) []analyticsDomain.GroupSummary {
	out := make([]analyticsDomain.GroupSummary, 0, len(g.order))
	for _, a := range g.order {
		out = append(out, a.summary(withAvg))
	}
	return out
}

// winRate 保本交易不計入分母，分母為 0 時回傳 0。
func winRate(wins, decided int) float64 {
	if decided <= 0 {
		return 0
	}
	return math.Round(float64(wins) / float64(decided) * 100)
}

func average(sum decimal.Decimal, n int) float64 {
	if n <= 0 {
		return 0
	}
	return sum.Div(decimal.NewFromInt(int64(n))).InexactFloat64()
}

func dateOnly(t time.Time) time.Time {
	return journal.DateOnly(t)
}
