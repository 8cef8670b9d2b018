package core

import "time"

type (
	// InvoiceRow is a raw persisted invoice as the storage layer hands it
	// over: every field nullable, amounts possibly absent, dates as strings.
	InvoiceRow struct {
		ID        string
		ClientID  string
		IssueDate *string
		DueDate   *string
		Amount    *float64
		TaxRate   *float64
		Total     *float64
		Paid      *float64
		Status    *string
	}

	// ExpenseRow is a raw persisted expense row.
	ExpenseRow struct {
		ID         string
		DocType    *string
		DocNumber  *string
		SupplierID *string
		IssueDate  *string
		DueDate    *string
		Base       *float64
		Tax        *float64
		Retention  *float64
		OtherTaxes *float64
		Total      *float64
		Paid       *float64
		Category   *string
		Status     *string
	}
)

// NormalizeInvoice converts a raw row into a canonical Invoice. Absent
// numerics default to 0, Total is computed when not persisted, Balance is
// never negative, and Status is re-derived: a settled balance always wins
// over whatever status was stored.
func NormalizeInvoice(row InvoiceRow, now time.Time) Invoice {
	inv := Invoice{
		ID:        row.ID,
		ClientID:  row.ClientID,
		IssueDate: ParseDate(strOrEmpty(row.IssueDate), now),
		DueDate:   ParseDate(strOrEmpty(row.DueDate), now),
		Amount:    numOrZero(row.Amount),
		TaxRate:   numOrZero(row.TaxRate),
		Paid:      numOrZero(row.Paid),
	}

	if row.Total != nil {
		inv.Total = Round2(*row.Total)
	} else {
		inv.Total = InvoiceTotal(inv.Amount, inv.TaxRate)
	}

	inv.Balance = Round2(inv.Total - inv.Paid)
	if inv.Balance < 0 {
		inv.Balance = 0
	}
	inv.Status = resolveInvoiceStatus(inv.Balance, row.Status, inv.DueDate, now)
	return inv
}

// resolveInvoiceStatus applies the status rules: zero balance is always paid,
// a persisted pending/overdue status is honored while the balance stays
// positive, otherwise the due date decides.
func resolveInvoiceStatus(balance float64, persisted *string, due ParsedDate, now time.Time) InvoiceStatus {
	if balance <= 0 {
		return InvoicePaid
	}
	if persisted != nil {
		switch InvoiceStatus(*persisted) {
		case InvoicePending, InvoiceOverdue:
			return InvoiceStatus(*persisted)
		}
	}
	if due.Before(now) {
		return InvoiceOverdue
	}
	return InvoicePending
}

// NormalizeExpense converts a raw row into a canonical Expense. A `pagado`
// status forces Paid to equal Total regardless of any stored partial amount.
func NormalizeExpense(row ExpenseRow, now time.Time) Expense {
	exp := Expense{
		ID:         row.ID,
		DocType:    strOrEmpty(row.DocType),
		DocNumber:  strOrEmpty(row.DocNumber),
		SupplierID: strOrEmpty(row.SupplierID),
		IssueDate:  ParseDate(strOrEmpty(row.IssueDate), now),
		DueDate:    ParseDate(strOrEmpty(row.DueDate), now),
		Base:       numOrZero(row.Base),
		Tax:        numOrZero(row.Tax),
		Retention:  numOrZero(row.Retention),
		OtherTaxes: numOrZero(row.OtherTaxes),
		Paid:       numOrZero(row.Paid),
		Category:   CategoryOtros,
		Status:     ExpensePending,
	}

	if row.Total != nil {
		exp.Total = Round2(*row.Total)
	} else {
		exp.Total = ExpenseTotal(exp.Base, exp.Tax, exp.Retention, exp.OtherTaxes)
	}

	if row.Category != nil && ValidCategory(Category(*row.Category)) {
		exp.Category = Category(*row.Category)
	}

	if row.Status != nil {
		switch ExpenseStatus(*row.Status) {
		case ExpensePending, ExpensePaid, ExpenseOverdue:
			exp.Status = ExpenseStatus(*row.Status)
		}
	}
	if exp.Status == ExpensePaid {
		exp.Paid = exp.Total
	}
	return exp
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func numOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
