package core

const (
	// Invoice lifecycle statuses. Persisted values are Spanish because the
	// SUNAT-facing UI and the stored rows use them verbatim.
	InvoicePending InvoiceStatus = "Pendiente"
	InvoicePaid    InvoiceStatus = "Pagado"
	InvoiceOverdue InvoiceStatus = "Vencido"

	ExpensePending ExpenseStatus = "pendiente"
	ExpensePaid    ExpenseStatus = "pagado"
	ExpenseOverdue ExpenseStatus = "vencido"
)

const (
	CategoryServicios       Category = "servicios"
	CategoryMateriales      Category = "materiales"
	CategoryPersonal        Category = "personal"
	CategoryMarketing       Category = "marketing"
	CategoryAdministrativos Category = "administrativos"
	CategoryEquipos         Category = "equipos"
	CategoryOtros           Category = "otros"
)

type (
	InvoiceStatus string
	ExpenseStatus string
	Category      string

	// Invoice is an accrued sale with derived payment state. Total, Balance
	// and Status are always the computed values, never raw persisted ones.
	Invoice struct {
		ID        string
		ClientID  string
		IssueDate ParsedDate
		DueDate   ParsedDate
		Amount    float64
		TaxRate   float64 // percentage, e.g. 18 for IGV
		Total     float64
		Paid      float64
		Balance   float64
		Status    InvoiceStatus
	}

	// Expense is an accrued cost. Total is Base + Tax + OtherTaxes − Retention.
	Expense struct {
		ID         string
		DocType    string
		DocNumber  string
		SupplierID string
		IssueDate  ParsedDate
		DueDate    ParsedDate
		Base       float64
		Tax        float64 // IGV on the purchase
		Retention  float64 // IR retention withheld from the supplier
		OtherTaxes float64
		Total      float64
		Paid       float64
		Category   Category
		Status     ExpenseStatus
	}
)

// CategorySet is a membership set over expense categories. The fixed/variable
// split is business policy, so it travels as data instead of being hardcoded
// in the aggregation code.
type CategorySet map[Category]struct{}

// NewCategorySet builds a set from the given categories.
func NewCategorySet(cats ...Category) CategorySet {
	s := make(CategorySet, len(cats))
	for _, c := range cats {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether c is in the set.
func (s CategorySet) Has(c Category) bool {
	_, ok := s[c]
	return ok
}

// DefaultFixedCategories returns the categories treated as fixed costs:
// payroll, administrative overhead and equipment. Everything else is
// variable.
func DefaultFixedCategories() CategorySet {
	return NewCategorySet(CategoryPersonal, CategoryAdministrativos, CategoryEquipos)
}

// ValidCategory reports whether c is one of the known expense categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryServicios, CategoryMateriales, CategoryPersonal,
		CategoryMarketing, CategoryAdministrativos, CategoryEquipos, CategoryOtros:
		return true
	}
	return false
}
