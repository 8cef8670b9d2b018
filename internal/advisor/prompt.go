package advisor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/musso17/facturascr/internal/services"
	"github.com/musso17/facturascr/internal/storage"
)

// BuildPrompt renders the financial position into a Spanish-language prompt
// for the analysis model. Pure string building so it can be tested without
// the API.
func BuildPrompt(report services.ProjectionReport, taxes []storage.TaxSummary, question string) string {
	var b strings.Builder

	b.WriteString("Eres un asesor financiero para una pequeña empresa peruana. ")
	b.WriteString("Analiza la siguiente situación y responde en español, de forma concreta y accionable.\n\n")

	b.WriteString("## Situación actual\n")
	fmt.Fprintf(&b, "- Ingreso promedio mensual: S/ %.2f\n", report.Baseline.AvgIncome)
	fmt.Fprintf(&b, "- Costos fijos promedio: S/ %.2f\n", report.Baseline.AvgFixedCosts)
	fmt.Fprintf(&b, "- Tasa de costos variables: %.1f%%\n", report.Baseline.VariableRate*100)
	fmt.Fprintf(&b, "- Caja actual: S/ %.2f\n", report.Baseline.CashBalance)
	fmt.Fprintf(&b, "- Punto de equilibrio: %s\n", formatMoney(report.Metrics.BreakEvenRevenue))
	fmt.Fprintf(&b, "- Meses de caja (runway): %s\n", formatMonths(report.Metrics.RunwayMonths))

	if len(report.History) > 0 {
		b.WriteString("\n## Historial mensual\n")
		for _, agg := range report.History {
			fmt.Fprintf(&b, "- %s: ingresos S/ %.2f, gastos S/ %.2f\n",
				agg.Month, agg.Income, agg.TotalExpenses)
		}
	}

	if len(report.Income) > 0 {
		b.WriteString("\n## Proyección de ingresos\n")
		for _, m := range report.Income {
			fmt.Fprintf(&b, "- %s: S/ %.2f\n", m.Month, m.Income)
		}
	}

	if len(taxes) > 0 {
		b.WriteString("\n## Impuestos (IGV y retenciones por mes)\n")
		sorted := make([]storage.TaxSummary, len(taxes))
		copy(sorted, taxes)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Mes < sorted[j].Mes })
		for _, t := range sorted {
			fmt.Fprintf(&b, "- %s: IGV ventas S/ %.2f, IGV compras S/ %.2f, neto S/ %.2f, retenciones S/ %.2f\n",
				t.Mes, t.IGVVentas, t.IGVCompras, t.IGVNeto, t.Retenciones)
		}
	}

	b.WriteString("\n## Pregunta\n")
	if strings.TrimSpace(question) == "" {
		b.WriteString("Da un diagnóstico general de la salud financiera del negocio y tres recomendaciones priorizadas.\n")
	} else {
		b.WriteString(question)
		b.WriteString("\n")
	}

	return b.String()
}

func formatMoney(v float64) string {
	if math.IsInf(v, 1) {
		return "inalcanzable con el margen actual"
	}
	return fmt.Sprintf("S/ %.2f", v)
}

func formatMonths(v float64) string {
	if math.IsInf(v, 1) {
		return "sin límite (el negocio no quema caja)"
	}
	return fmt.Sprintf("%.1f meses", v)
}
