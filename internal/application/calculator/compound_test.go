package calculator

import (
	"errors"
	"testing"
)

func TestProject(t *testing.T) {
	got, err := Project(Input{StartBalance: 1000, RatePct: 10, Periods: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got.Rows))
	}
	want := []float64{1100, 1210, 1331}
	for i, r := range got.Rows {
		if r.Closing != want[i] {
			t.Fatalf("period %d closing=%v want %v", r.Period, r.Closing, want[i])
		}
	}
	if got.FinalBalance != 1331 || got.TotalGain != 331 || got.GrowthMultiplier != 1.331 {
		t.Fatalf("unexpected totals: %+v", got)
	}
}

func TestProject_Contribution(t *testing.T) {
	got, err := Project(Input{StartBalance: 100, RatePct: 0, Periods: 4, Contribution: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FinalBalance != 200 || got.TotalContributed != 100 || got.GrowthMultiplier != 1 {
		t.Fatalf("unexpected projection: %+v", got)
	}
}

func TestProject_ZeroPeriods(t *testing.T) {
	got, err := Project(Input{StartBalance: 50, RatePct: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Rows) != 0 || got.FinalBalance != 50 {
		t.Fatalf("unexpected projection: %+v", got)
	}
}

func TestProject_Invalid(t *testing.T) {
	cases := []Input{
		{StartBalance: -1, Periods: 1},
		{StartBalance: 1, Periods: -1},
		{StartBalance: 1, Periods: MaxPeriods + 1},
		{StartBalance: 1, Periods: 1, RatePct: -100},
	}
	for _, in := range cases {
		if _, err := Project(in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
}
