package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Action 下單方向。
type Action string

const (
	ActionBuy  Action = "Buy"
	ActionSell Action = "Sell"
)

// Direction 進場時記錄的市場偏向。
type Direction string

const (
	DirectionBullish Direction = "Bullish"
	DirectionBearish Direction = "Bearish"
)

// Outcome 交易結果分類。
type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeLoss      Outcome = "loss"
	OutcomeBreakeven Outcome = "breakeven"
)

// ConfluenceTag 五種匯合因子的標籤，順序即組合鍵的固定順序。
type ConfluenceTag string

const (
	TagPivot   ConfluenceTag = "Pivot"
	TagBanking ConfluenceTag = "Banking"
	TagMA      ConfluenceTag = "MA"
	TagFib     ConfluenceTag = "Fib"
	TagBalance ConfluenceTag = "Balance"
)

// ConfluenceOrder 組合鍵使用的標籤順序。
var ConfluenceOrder = []ConfluenceTag{TagPivot, TagBanking, TagMA, TagFib, TagBalance}

// Weekdays 交易日（週一至週五）。
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

var (
	ErrInvalidTrade  = errors.New("invalid trade")
	ErrTradeNotFound = errors.New("trade not found")
)

// Trade 一筆外匯交易紀錄。
type Trade struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Pair            string    `json:"pair"`
	Date            time.Time `json:"date"`
	Day             string    `json:"day"`
	Action          Action    `json:"action"`
	Direction       Direction `json:"direction"`
	MarketCondition string    `json:"market_condition"`
	EntryPrice      float64   `json:"entry_price"`
	ExitPrice       float64   `json:"exit_price"`
	LotSize         float64   `json:"lot_size"`
	ProfitLoss      float64   `json:"profit_loss"`
	Pivots          string    `json:"pivots"`
	BankingLevel    string    `json:"banking_level"`
	MA              string    `json:"ma"`
	Fib             string    `json:"fib"`
	TopBobFv        string    `json:"top_bob_fv"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Confluence 已啟用的匯合因子。
type Confluence struct {
	Tag   ConfluenceTag
	Value string
}

// Validate 檢查寫入前的必要欄位。
func (t Trade) Validate() error {
	if t.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidTrade)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidTrade)
	}
	switch t.Action {
	case ActionBuy, ActionSell:
	default:
		return fmt.Errorf("%w: action must be Buy or Sell", ErrInvalidTrade)
	}
	switch t.Direction {
	case DirectionBullish, DirectionBearish, "":
	default:
		return fmt.Errorf("%w: direction must be Bullish or Bearish", ErrInvalidTrade)
	}
	return nil
}

// Outcome 依 profit/loss 正負判斷勝負。
func (t Trade) Outcome() Outcome {
	switch {
	case t.ProfitLoss > 0:
		return OutcomeWin
	case t.ProfitLoss < 0:
		return OutcomeLoss
	default:
		return OutcomeBreakeven
	}
}

// ActiveConfluences 依固定順序回傳有值的匯合因子。
func (t Trade) ActiveConfluences() []Confluence {
	values := [...]string{t.Pivots, t.BankingLevel, t.MA, t.Fib, t.TopBobFv}
	out := make([]Confluence, 0, len(values))
	for i, v := range values {
		if !IsPresent(v) {
			continue
		}
		out = append(out, Confluence{Tag: ConfluenceOrder[i], Value: strings.TrimSpace(v)})
	}
	return out
}

// IsPresent 非空且不是 "None" 哨兵值才算有填寫。
func IsPresent(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "none")
}

// IsWeekday 是否為五個標準交易日名稱之一。
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Normalize 補上衍生欄位並清理空白。
func (t Trade) Normalize() Trade {
	t.Pair = strings.ToUpper(strings.TrimSpace(t.Pair))
	t.MarketCondition = strings.TrimSpace(t.MarketCondition)
	t.Day = strings.TrimSpace(t.Day)
	if !t.Date.IsZero() {
		t.Date = DateOnly(t.Date)
		if t.Day == "" {
			t.Day = t.Date.Weekday().String()
		}
	}
	return t
}

// DateOnly 取該時間所在時區的日曆日，回傳 UTC 零點。
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Filter 查詢交易紀錄用。
type Filter struct {
	UserID          string
	Pair            string
	MarketCondition string
	From            *time.Time
	To              *time.Time
	Limit           int
}

// DateBounds 以日曆日解讀 From/To：回傳 From 當日零點與 To 隔日零點（不含）。
func (f Filter) DateBounds() (from, until *time.Time) {
	if f.From != nil {
		v := DateOnly(*f.From)
		from = &v
	}
	if f.To != nil {
		v := DateOnly(*f.To).AddDate(0, 0, 1)
		until = &v
	}
	return from, until
}
