package journal

import (
	"errors"
	"testing"
	"time"
)

func TestTrade_Validate(t *testing.T) {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		trade   Trade
		wantErr bool
	}{
		{
			name:    "Valid Buy",
			trade:   Trade{UserID: "u-1", Date: date, Action: ActionBuy, Direction: DirectionBullish},
			wantErr: false,
		},
		{
			name:    "Valid Sell Without Direction",
			trade:   Trade{UserID: "u-1", Date: date, Action: ActionSell},
			wantErr: false,
		},
		{
			name:    "Missing User",
			trade:   Trade{Date: date, Action: ActionBuy},
			wantErr: true,
		},
		{
			name:    "Missing Date",
			trade:   Trade{UserID: "u-1", Action: ActionBuy},
			wantErr: true,
		},
		{
			name:    "Bad Action",
			trade:   Trade{UserID: "u-1", Date: date, Action: "Hold"},
			wantErr: true,
		},
		{
			name:    "Bad Direction",
			trade:   Trade{UserID: "u-1", Date: date, Action: ActionBuy, Direction: "Sideways"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.trade.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTrade) {
				t.Errorf("expected ErrInvalidTrade, got %v", err)
			}
		})
	}
}

func TestTrade_Outcome(t *testing.T) {
	if (Trade{ProfitLoss: 12.5}).Outcome() != OutcomeWin {
		t.Error("expected win")
	}
	if (Trade{ProfitLoss: -3}).Outcome() != OutcomeLoss {
		t.Error("expected loss")
	}
	if (Trade{}).Outcome() != OutcomeBreakeven {
		t.Error("expected breakeven")
	}
}

func TestTrade_ActiveConfluences(t *testing.T) {
	tr := Trade{
		Pivots:       " R1 ",
		BankingLevel: "None",
		MA:           "200 EMA",
		Fib:          "none",
		TopBobFv:     "",
	}
	got := tr.ActiveConfluences()
	if len(got) != 2 {
		t.Fatalf("expected 2 confluences, got %d", len(got))
	}
	if got[0].Tag != TagPivot || got[0].Value != "R1" {
		t.Errorf("unexpected first confluence: %+v", got[0])
	}
	if got[1].Tag != TagMA || got[1].Value != "200 EMA" {
		t.Errorf("unexpected second confluence: %+v", got[1])
	}
}

func TestTrade_Normalize(t *testing.T) {
	tr := Trade{Pair: " eurusd ", Date: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)}.Normalize()
	if tr.Pair != "EURUSD" {
		t.Errorf("expected EURUSD, got %s", tr.Pair)
	}
	if tr.Day != "Wednesday" {
		t.Errorf("expected Wednesday, got %s", tr.Day)
	}

	kept := Trade{Day: "Monday", Date: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)}.Normalize()
	if kept.Day != "Monday" {
		t.Errorf("explicit day should be kept, got %s", kept.Day)
	}
}

func TestTrade_NormalizeTruncatesDate(t *testing.T) {
	tr := Trade{Date: time.Date(2024, 1, 31, 15, 30, 0, 0, time.UTC)}.Normalize()
	if !tr.Date.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected calendar date, got %v", tr.Date)
	}

	taipei := time.FixedZone("UTC+8", 8*3600)
	local := Trade{Date: time.Date(2024, 2, 1, 2, 0, 0, 0, taipei)}.Normalize()
	if !local.Date.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) || local.Day != "Thursday" {
		t.Errorf("expected local calendar day kept, got %v %s", local.Date, local.Day)
	}
}

func TestFilter_DateBounds(t *testing.T) {
	from := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	lo, hi := Filter{From: &from, To: &to}.DateBounds()
	if lo == nil || !lo.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected lower bound %v", lo)
	}
	if hi == nil || !hi.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("upper bound should be the start of the next day, got %v", hi)
	}

	lo, hi = Filter{}.DateBounds()
	if lo != nil || hi != nil {
		t.Errorf("expected open bounds, got %v %v", lo, hi)
	}
}

func TestIsWeekday(t *testing.T) {
	if !IsWeekday("Friday") {
		t.Error("Friday is a weekday")
	}
	if IsWeekday("Saturday") || IsWeekday("monday") {
		t.Error("only canonical weekday names count")
	}
}
