package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxPeriods 單次試算上限。
const MaxPeriods = 600

var ErrInvalidInput = errors.New("invalid calculator input")

// Input 複利試算參數，RatePct 為每期報酬率（百分比，可為負）。
type Input struct {
	StartBalance float64 `json:"start_balance"`
	RatePct      float64 `json:"rate_pct"`
	Periods      int     `json:"periods"`
	Contribution float64 `json:"contribution"`
}

// Row 單期結果。
type Row struct {
	Period      int     `json:"period"`
	Opening     float64 `json:"opening"`
	Gain        float64 `json:"gain"`
	Contributed float64 `json:"contributed"`
	Closing     float64 `json:"closing"`
}

// Projection 試算結果。
type Projection struct {
	Rows             []Row   `json:"rows"`
	FinalBalance     float64 `json:"final_balance"`
	TotalContributed float64 `json:"total_contributed"`
	TotalGain        float64 `json:"total_gain"`
	GrowthMultiplier float64 `json:"growth_multiplier"`
}

// Project 每期先計息再加入追加金額，金額四捨五入到分。
func Project(in Input) (Projection, error) {
	if in.StartBalance < 0 {
		return Projection{}, fmt.Errorf("%w: start balance must not be negative", ErrInvalidInput)
	}
	if in.Periods < 0 || in.Periods > MaxPeriods {
		return Projection{}, fmt.Errorf("%w: periods must be between 0 and %d", ErrInvalidInput, MaxPeriods)
	}
	if in.RatePct <= -100 {
		return Projection{}, fmt.Errorf("%w: rate must be greater than -100%%", ErrInvalidInput)
	}

	rate := decimal.NewFromFloat(in.RatePct).Div(decimal.NewFromInt(100))
	contrib := decimal.NewFromFloat(in.Contribution)
	start := decimal.NewFromFloat(in.StartBalance)
	balance := start
	totalContrib := decimal.Zero
	totalGain := decimal.Zero

	rows := make([]Row, 0, in.Periods)
	for p := 1; p <= in.Periods; p++ {
		opening := balance
		gain := opening.Mul(rate).Round(2)
		closing := opening.Add(gain).Add(contrib)
		if closing.IsNegative() {
			closing = decimal.Zero
		}
		totalGain = totalGain.Add(gain)
		totalContrib = totalContrib.Add(contrib)
		balance = closing
		rows = append(rows, Row{
			Period:      p,
			Opening:     opening.InexactFloat64(),
			Gain:        gain.InexactFloat64(),
			Contributed: contrib.InexactFloat64(),
			Closing:     closing.InexactFloat64(),
		})
	}

	out := Projection{
		Rows:             rows,
		FinalBalance:     balance.InexactFloat64(),
		TotalContributed: totalContrib.InexactFloat64(),
		TotalGain:        totalGain.InexactFloat64(),
	}
	if base := start.Add(totalContrib); base.IsPositive() {
		out.GrowthMultiplier = balance.Div(base).Round(4).InexactFloat64()
	}
	return out, nil
}
