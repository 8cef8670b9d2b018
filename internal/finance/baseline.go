package finance

import "math"

// DefaultWindow is the trailing number of aggregates the baseline averages
// over when the caller does not say otherwise.
const DefaultWindow = 6

// Baseline is the cost-behavior snapshot over a trailing window of monthly
// aggregates. CashBalance is an externally supplied figure and only passes
// through.
type Baseline struct {
	AvgFixedCosts float64 `json:"costos_fijos_promedio"`
	VariableRate  float64 `json:"tasa_variable"` // decimal, not x100
	AvgIncome     float64 `json:"ingreso_promedio"`
	CashBalance   float64 `json:"caja_actual"`
}

// Metrics derives from a baseline: the monthly revenue needed to cover fixed
// costs, and how many months the current cash lasts at the current burn.
type Metrics struct {
	BreakEvenRevenue float64 `json:"punto_equilibrio"`
	RunwayMonths     float64 `json:"meses_caja"`
}

// ComputeBaseline averages the most recent `window` aggregates (all of them
// when fewer exist; DefaultWindow when window <= 0). An empty sequence
// yields zeros with the cash balance passed through unchanged.
func ComputeBaseline(aggs []MonthlyAggregate, cashBalance float64, window int) Baseline {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(aggs) > window {
		aggs = aggs[len(aggs)-window:]
	}

	b := Baseline{CashBalance: cashBalance}
	if len(aggs) == 0 {
		return b
	}

	var income, fixed, variable float64
	for _, agg := range aggs {
		income += agg.Income
		fixed += agg.FixedExpenses
		variable += agg.VariableExpenses
	}

	n := float64(len(aggs))
	b.AvgFixedCosts = fixed / n
	b.AvgIncome = income / n
	if income > 0 {
		b.VariableRate = variable / income
	}
	return b
}

// ComputeMetrics derives break-even revenue and cash runway. Division by
// zero cases resolve to 0 or +Inf per the contribution-margin semantics:
// a variable rate at or above 100% makes fixed costs unreachable, and a
// non-positive net burn means cash never runs out.
//
// Runway deliberately ignores variable costs, treating them as self-funded
// by their associated revenue.
func ComputeMetrics(b Baseline) Metrics {
	var m Metrics

	margin := 1 - b.VariableRate
	switch {
	case margin > 0:
		m.BreakEvenRevenue = b.AvgFixedCosts / margin
	case b.AvgFixedCosts > 0:
		m.BreakEvenRevenue = math.Inf(1)
	default:
		m.BreakEvenRevenue = 0
	}

	netBurn := b.AvgFixedCosts - b.AvgIncome
	if netBurn > 0 {
		m.RunwayMonths = b.CashBalance / netBurn
	} else {
		m.RunwayMonths = math.Inf(1)
	}
	return m
}
