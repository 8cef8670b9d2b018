package services

import (
	"context"
	"time"

	"github.com/musso17/facturascr/internal/core"
	"github.com/musso17/facturascr/internal/finance"
	"github.com/musso17/facturascr/internal/storage"
)

// ProjectionReport bundles everything the projection endpoint returns.
type ProjectionReport struct {
	Baseline    finance.Baseline          `json:"base"`
	Metrics     finance.Metrics           `json:"indicadores"`
	Income      []finance.ProjectedMonth  `json:"ingresos_proyectados"`
	ProfitLoss  []finance.ProjectedPL     `json:"resultado_proyectado"`
	CashFlow    []finance.ProjectedCash   `json:"flujo_caja_proyectado"`
	Seasonality map[int]float64           `json:"estacionalidad"`
	History     []finance.MonthlyAggregate `json:"historial"`
}

// DashboardService derives monthly aggregates, metrics, and projections from
// the stored records. All derivations are pure; the clock is injected.
type DashboardService struct {
	storage *storage.SQLiteRepository
	fixed   core.CategorySet
	window  int
}

func NewDashboardService(storage *storage.SQLiteRepository, window int) *DashboardService {
	if window <= 0 {
		window = finance.DefaultWindow
	}
	return &DashboardService{
		storage: storage,
		fixed:   core.DefaultFixedCategories(),
		window:  window,
	}
}

// Monthly returns the per-month income and expense aggregates.
func (s *DashboardService) Monthly(ctx context.Context, now time.Time) ([]finance.MonthlyAggregate, error) {
	invoices, expenses, err := s.load(ctx, now)
	if err != nil {
		return nil, err
	}
	return finance.MonthlyAggregates(invoices, expenses, s.fixed), nil
}

// Projection computes the baseline, metrics, and forward projection for the
// requested horizon and growth factor.
func (s *DashboardService) Projection(ctx context.Context, now time.Time, months int, growth float64) (ProjectionReport, error) {
	invoices, expenses, err := s.load(ctx, now)
	if err != nil {
		return ProjectionReport{}, err
	}

	aggs := finance.MonthlyAggregates(invoices, expenses, s.fixed)
	baseline := finance.ComputeBaseline(aggs, cashBalance(invoices, expenses), s.window)
	income := finance.ProjectIncome(aggs, baseline.AvgIncome, months, growth, now)
	pl := finance.ProjectProfitAndLoss(income, baseline)

	return ProjectionReport{
		Baseline:    baseline,
		Metrics:     finance.ComputeMetrics(baseline),
		Income:      income,
		ProfitLoss:  pl,
		CashFlow:    finance.ProjectCashFlow(pl, baseline),
		Seasonality: finance.SeasonalityIndex(aggs),
		History:     aggs,
	}, nil
}

// TaxSummary reads the monthly IGV and retention view.
func (s *DashboardService) TaxSummary(ctx context.Context) ([]storage.TaxSummary, error) {
	return s.storage.ReadTaxSummary(ctx)
}

func (s *DashboardService) load(ctx context.Context, now time.Time) ([]core.Invoice, []core.Expense, error) {
	invoices, err := s.storage.ListInvoices(ctx, now)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := s.storage.ListExpenses(ctx, now)
	if err != nil {
		return nil, nil, err
	}
	return invoices, expenses, nil
}

// cashBalance is collected income minus paid-out expenses. The business has
// no bank feed, so cash on hand is reconstructed from payment records.
func cashBalance(invoices []core.Invoice, expenses []core.Expense) float64 {
	var cash float64
	for _, inv := range invoices {
		cash += inv.Paid
	}
	for _, exp := range expenses {
		cash -= exp.Paid
	}
	return core.Round2(cash)
}
