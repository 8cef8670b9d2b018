package finance

import (
	"math"
	"testing"
	"time"

	"github.com/musso17/facturascr/internal/core"
)

var projNow = time.Date(2024, 11, 20, 9, 0, 0, 0, time.Local)

func TestProjectIncomeLengthAndMonths(t *testing.T) {
	out := ProjectIncome(nil, 1000, 12, 1.0, projNow)
	if len(out) != 12 {
		t.Fatalf("projection length = %d, want 12", len(out))
	}
	if out[0].Month != "2024-12" {
		t.Fatalf("first month = %s, want 2024-12", out[0].Month)
	}
	if out[1].Month != "2025-01" {
		t.Fatalf("year rollover failed: %s", out[1].Month)
	}
	if out[11].Month != "2025-11" {
		t.Fatalf("last month = %s, want 2025-11", out[11].Month)
	}
	for i := 1; i < len(out); i++ {
		if out[i].Month <= out[i-1].Month {
			t.Fatalf("months not ascending: %s after %s", out[i].Month, out[i-1].Month)
		}
	}
}

func TestProjectIncomeNeutralSeasonality(t *testing.T) {
	out := ProjectIncome(nil, 1234.5, 6, 1.0, projNow)
	for _, p := range out {
		if p.Income != 1234.5 {
			t.Fatalf("flat growth with no history must repeat the baseline, got %v", p.Income)
		}
	}
}

func TestProjectIncomeSeasonalityApplied(t *testing.T) {
	aggs := []MonthlyAggregate{
		{Month: "2023-12", Income: 2400},
		{Month: "2024-01", Income: 1200},
	}
	index := SeasonalityIndex(aggs)

	out := ProjectIncome(aggs, 1000, 3, 1.0, projNow)
	// Steps land on Dec, Jan, Feb.
	if want := core.Round2(1000 * index[12]); out[0].Income != want {
		t.Fatalf("december projection = %v, want %v", out[0].Income, want)
	}
	if want := core.Round2(1000 * index[1]); out[1].Income != want {
		t.Fatalf("january projection = %v, want %v", out[1].Income, want)
	}
	if want := core.Round2(1000 * index[2]); out[2].Income != want {
		t.Fatalf("february projection = %v, want %v", out[2].Income, want)
	}
}

func TestProjectIncomeGrowthCompounds(t *testing.T) {
	out := ProjectIncome(nil, 1000, 3, 1.1, projNow)
	wants := []float64{
		core.Round2(1000 * 1.1),
		core.Round2(1000 * 1.1 * 1.1),
		core.Round2(1000 * math.Pow(1.1, 3)),
	}
	for i, want := range wants {
		if out[i].Income != want {
			t.Fatalf("step %d = %v, want %v", i+1, out[i].Income, want)
		}
	}
}

func TestProjectProfitAndLoss(t *testing.T) {
	b := Baseline{AvgFixedCosts: 500, VariableRate: 0.4, CashBalance: 1000}
	projection := []ProjectedMonth{
		{Month: "2025-01", Income: 2000},
		{Month: "2025-02", Income: 1000},
	}
	pl := ProjectProfitAndLoss(projection, b)
	if pl[0].VariableCosts != 800 || pl[0].OperatingProfit != 700 {
		t.Fatalf("jan P&L = %+v", pl[0])
	}
	if pl[1].VariableCosts != 400 || pl[1].OperatingProfit != 100 {
		t.Fatalf("feb P&L = %+v", pl[1])
	}

	cash := ProjectCashFlow(pl, b)
	if cash[0].Balance != 1700 {
		t.Fatalf("jan cash = %v, want 1700", cash[0].Balance)
	}
	if cash[1].Balance != 1800 {
		t.Fatalf("feb cash = %v, want 1800", cash[1].Balance)
	}
}
