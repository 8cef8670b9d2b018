package finance

import (
	"math"
	"time"

	"github.com/musso17/facturascr/internal/core"
)

type (
	// ProjectedMonth is one forward step of the income projection.
	ProjectedMonth struct {
		Month  string  `json:"mes"` // YYYY-MM
		Income float64 `json:"ingreso_proyectado"`
	}

	// ProjectedPL attaches the baseline cost structure to a projected month.
	ProjectedPL struct {
		Month           string  `json:"mes"`
		Income          float64 `json:"ingreso"`
		VariableCosts   float64 `json:"costos_variables"`
		FixedCosts      float64 `json:"costos_fijos"`
		OperatingProfit float64 `json:"utilidad_operativa"`
	}

	// ProjectedCash is the running cash position after each projected month.
	ProjectedCash struct {
		Month   string  `json:"mes"`
		Balance float64 `json:"saldo"`
	}
)

// ProjectIncome produces a months-long income projection anchored at now.
// Step i (1-indexed from the current calendar month) is
//
//	round(baselineIncome × index[month(now+i)] × growth^i)
//
// With no history the seasonality index is neutral, so the output is always
// exactly `months` entries long.
func ProjectIncome(aggs []MonthlyAggregate, baselineIncome float64, months int, growth float64, now time.Time) []ProjectedMonth {
	if months <= 0 {
		return nil
	}
	index := SeasonalityIndex(aggs)

	out := make([]ProjectedMonth, 0, months)
	for i := 1; i <= months; i++ {
		// Anchor on the first of the month so e.g. Jan 31 + 1 month does
		// not skip February.
		target := time.Date(now.Year(), now.Month()+time.Month(i), 1, 0, 0, 0, 0, now.Location())
		out = append(out, ProjectedMonth{
			Month:  target.Format("2006-01"),
			Income: core.Round2(baselineIncome * index[int(target.Month())] * math.Pow(growth, float64(i))),
		})
	}
	return out
}

// ProjectProfitAndLoss expands an income projection into per-month operating
// results using the baseline's fixed-cost average and variable-cost rate.
func ProjectProfitAndLoss(projection []ProjectedMonth, b Baseline) []ProjectedPL {
	out := make([]ProjectedPL, 0, len(projection))
	for _, p := range projection {
		variable := core.Round2(p.Income * b.VariableRate)
		fixed := core.Round2(b.AvgFixedCosts)
		out = append(out, ProjectedPL{
			Month:           p.Month,
			Income:          p.Income,
			VariableCosts:   variable,
			FixedCosts:      fixed,
			OperatingProfit: core.Round2(p.Income - variable - fixed),
		})
	}
	return out
}

// ProjectCashFlow chains operating profit into a running cash balance
// starting from the baseline's current cash figure.
func ProjectCashFlow(pl []ProjectedPL, b Baseline) []ProjectedCash {
	out := make([]ProjectedCash, 0, len(pl))
	balance := b.CashBalance
	for _, p := range pl {
		balance = core.Round2(balance + p.OperatingProfit)
		out = append(out, ProjectedCash{Month: p.Month, Balance: balance})
	}
	return out
}
