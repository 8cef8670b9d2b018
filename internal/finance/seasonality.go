package finance

import "strconv"

// Seasonality clamping constants. The dampening is intentionally asymmetric
// and lossy: extreme months keep a bounded, presentation-safe index instead
// of their true magnitude, and downstream projections depend on these exact
// bounds.
const (
	seasonalityUpperTrigger = 2.5
	seasonalityUpperClamp   = 2.0
	seasonalityLowerTrigger = 0.3
	seasonalityLowerClamp   = 0.5
)

// SeasonalityIndex computes a multiplicative factor per calendar month
// (1-12), pooling all years of history together. 1.0 means an average month.
// The result always has exactly 12 entries; with no history every index is
// 1.0.
func SeasonalityIndex(aggs []MonthlyAggregate) map[int]float64 {
	index := make(map[int]float64, 12)
	for m := 1; m <= 12; m++ {
		index[m] = 1.0
	}
	if len(aggs) == 0 {
		return index
	}

	sums := make(map[int]float64, 12)
	counts := make(map[int]int, 12)
	for _, agg := range aggs {
		m := calendarMonth(agg.Month)
		if m == 0 {
			continue
		}
		sums[m] += agg.Income
		counts[m]++
	}

	// Unobserved months average 0, which pulls the global mean down. That
	// matches the reporting behavior: a business with only summer history
	// shows summer as above-average.
	averages := make(map[int]float64, 12)
	var global float64
	for m := 1; m <= 12; m++ {
		if counts[m] > 0 {
			averages[m] = sums[m] / float64(counts[m])
		}
		global += averages[m]
	}
	global /= 12

	if global == 0 {
		return index
	}
	for m := 1; m <= 12; m++ {
		idx := averages[m] / global
		if idx > seasonalityUpperTrigger {
			idx = seasonalityUpperClamp
		} else if idx < seasonalityLowerTrigger {
			idx = seasonalityLowerClamp
		}
		index[m] = idx
	}
	return index
}

// calendarMonth extracts the month number from a YYYY-MM key, 0 when the
// key is malformed.
func calendarMonth(key string) int {
	if len(key) < 7 {
		return 0
	}
	m, err := strconv.Atoi(key[5:7])
	if err != nil || m < 1 || m > 12 {
		return 0
	}
	return m
}
