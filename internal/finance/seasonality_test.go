package finance

import "testing"

func TestSeasonalityNoHistory(t *testing.T) {
	index := SeasonalityIndex(nil)
	if len(index) != 12 {
		t.Fatalf("index must have 12 entries, got %d", len(index))
	}
	for m := 1; m <= 12; m++ {
		if index[m] != 1.0 {
			t.Fatalf("month %d index = %v, want 1.0", m, index[m])
		}
	}
}

func TestSeasonalityPoolsYears(t *testing.T) {
	aggs := []MonthlyAggregate{
		{Month: "2022-01", Income: 100},
		{Month: "2023-01", Income: 300},
		{Month: "2022-07", Income: 200},
	}
	index := SeasonalityIndex(aggs)

	// January averages (100+300)/2 = 200, July 200, other months 0.
	// Global average = (200+200)/12. Raw January index = 200/(400/12) = 6,
	// clamped to 2.0.
	if index[1] != 2.0 {
		t.Fatalf("january index = %v, want clamped 2.0", index[1])
	}
	if index[7] != 2.0 {
		t.Fatalf("july index = %v, want clamped 2.0", index[7])
	}
	// Months with zero income sit below the lower trigger and clamp to 0.5.
	if index[3] != 0.5 {
		t.Fatalf("empty month index = %v, want clamped 0.5", index[3])
	}
}

func TestSeasonalitySingleOutlierMonth(t *testing.T) {
	// One observed month at 3x the trivial global average clamps to 2.0.
	aggs := []MonthlyAggregate{
		{Month: "2024-01", Income: 3600},
		{Month: "2024-02", Income: 0},
	}
	index := SeasonalityIndex(aggs)
	// January average 3600, global 300, raw index 12 -> clamp 2.0.
	if index[1] != 2.0 {
		t.Fatalf("outlier month must clamp to 2.0, got %v", index[1])
	}
}

func TestSeasonalityBounds(t *testing.T) {
	aggs := []MonthlyAggregate{
		{Month: "2023-01", Income: 50},
		{Month: "2023-02", Income: 1000},
		{Month: "2023-03", Income: 980},
		{Month: "2023-04", Income: 1020},
		{Month: "2023-05", Income: 5},
	}
	index := SeasonalityIndex(aggs)
	if len(index) != 12 {
		t.Fatalf("index must have 12 entries, got %d", len(index))
	}
	for m, v := range index {
		if v < 0.5 || v > 2.0 {
			t.Fatalf("month %d index %v escapes the dampened range [0.5, 2.0]", m, v)
		}
	}
}

func TestSeasonalityMidRangeUndamped(t *testing.T) {
	// All 12 months observed with mild variation: indexes stay raw.
	aggs := make([]MonthlyAggregate, 0, 12)
	months := []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}
	for i, m := range months {
		income := 1000.0
		if i == 0 {
			income = 1500.0
		}
		aggs = append(aggs, MonthlyAggregate{Month: "2023-" + m, Income: income})
	}
	index := SeasonalityIndex(aggs)

	global := (1500.0 + 11*1000.0) / 12
	want := 1500.0 / global
	if diff := index[1] - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("january index = %v, want raw %v", index[1], want)
	}
}
