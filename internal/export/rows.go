package export

import "github.com/musso17/facturascr/internal/core"

const dateLayout = "2006-01-02"

// FacturaRow builds the spreadsheet row for an invoice. Column order matches
// the accountant's workbook: client, issue date, due date, net amount, tax
// rate, total, paid, balance, status.
func FacturaRow(inv core.Invoice) []any {
	return []any{
		inv.ID,
		inv.ClientID,
		inv.IssueDate.Time.Format(dateLayout),
		inv.DueDate.Time.Format(dateLayout),
		inv.Amount,
		inv.TaxRate,
		inv.Total,
		inv.Paid,
		inv.Balance,
		string(inv.Status),
	}
}

// GastoRow builds the spreadsheet row for an expense: document, supplier,
// dates, amounts, category, status.
func GastoRow(exp core.Expense) []any {
	return []any{
		exp.ID,
		exp.DocType,
		exp.DocNumber,
		exp.SupplierID,
		exp.IssueDate.Time.Format(dateLayout),
		exp.DueDate.Time.Format(dateLayout),
		exp.Base,
		exp.Tax,
		exp.Retention,
		exp.OtherTaxes,
		exp.Total,
		exp.Paid,
		string(exp.Category),
		string(exp.Status),
	}
}
