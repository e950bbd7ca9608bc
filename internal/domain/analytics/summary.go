package analytics

import "time"

// Dimension 分組維度。
type Dimension string

const (
	DimensionMarketCondition       Dimension = "market_condition"
	DimensionDay                   Dimension = "day"
	DimensionTrend                 Dimension = "trend"
	DimensionConfluenceCount       Dimension = "confluence_count"
	DimensionConfluenceCombination Dimension = "confluence_combination"
)

// Dimensions 依報表顯示順序列出所有維度。
var Dimensions = []Dimension{
	DimensionMarketCondition,
	DimensionDay,
	DimensionTrend,
	DimensionConfluenceCount,
	DimensionConfluenceCombination,
}

// Valid 是否為已知維度。
func (d Dimension) Valid() bool {
	for _, v := range Dimensions {
		if v == d {
			return true
		}
	}
	return false
}

const (
	UnknownKey   = "Unknown"
	WithTrend    = "With Trend"
	AgainstTrend = "Against Trend"
)

// GroupSummary 單一分組的績效摘要。
type GroupSummary struct {
	GroupKey      string   `json:"group_key"`
	Total         int      `json:"total"`
	Wins          int      `json:"wins"`
	Losses        int      `json:"losses"`
	Breakeven     int      `json:"breakeven"`
	WinRate       float64  `json:"win_rate"`
	ProfitLoss    float64  `json:"profit_loss"`
	AvgProfitLoss *float64 `json:"avg_profit_loss,omitempty"`
}

// Options 篩選與分組參數，每次呼叫獨立傳入。
type Options struct {
	Month           int // 1-12，0 表示不限
	Year            int // 0 表示不限
	MarketCondition string
	From            *time.Time
	To              *time.Time
	// SplitByCondition 僅作用於匯合組合：同一組合依市場狀態拆成不同分組。
	SplitByCondition bool
	// KeyByType 僅作用於匯合組合：只以因子種類組鍵，忽略因子值。
	KeyByType bool
}

// Overview 整體績效指標。
type Overview struct {
	Total        int     `json:"total"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Breakeven    int     `json:"breakeven"`
	WinRate      float64 `json:"win_rate"`
	ProfitLoss   float64 `json:"profit_loss"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	LargestWin   float64 `json:"largest_win"`
	LargestLoss  float64 `json:"largest_loss"`
	ProfitFactor float64 `json:"profit_factor"`
	Expectancy   float64 `json:"expectancy"` // 每筆平均損益，分母含保本
	// Streak 目前連續結果，正數為連勝、負數為連敗；保本不中斷也不累加。
	Streak int `json:"streak"`
}

// EquityPoint 累積損益曲線上的一點。
type EquityPoint struct {
	Date       time.Time `json:"date"`
	ProfitLoss float64   `json:"profit_loss"`
	Cumulative float64   `json:"cumulative"`
}

// Dashboard 一次取得所有維度。
type Dashboard struct {
	Overview   Overview                     `json:"overview"`
	Dimensions map[Dimension][]GroupSummary `json:"dimensions"`
	Equity     []EquityPoint                `json:"equity"`
}
