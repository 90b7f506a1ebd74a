package workbook

import (
	"fmt"
	"path/filepath"
	"time"

	"tracker/internal/core"
)

// Kind distinguishes income sections from expense sections.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Section is a fixed rectangular region of a monthly sheet that holds
// transactions of one category. The first column holds the date, the
// second the description and the last the amount.
type Section struct {
	Name     string
	Category core.Category
	Kind     Kind
	MinRow   int
	MaxRow   int
	MinCol   int
	MaxCol   int

	// CatchAll sections also receive uncategorized transactions of
	// their kind.
	CatchAll bool
}

// Capacity is the number of transaction rows the section can hold.
func (s Section) Capacity() int {
	return s.MaxRow - s.MinRow + 1
}

// Layout describes the monthly sheet template.
type Layout struct {
	Sections []Section
	AsOfCell string
}

// DefaultLayout matches the Income&Expenses workbook template: income
// sections in columns B to H, expense sections in columns J to P.
func DefaultLayout() Layout {
	return Layout{
		AsOfCell: "T1",
		Sections: []Section{
			{Name: "Primary Income", Category: core.CategoryPrimaryIncome, Kind: KindIncome, MinRow: 7, MaxRow: 8, MinCol: 2, MaxCol: 8},
			{Name: "Other Income", Category: core.CategoryUncategorized, Kind: KindIncome, MinRow: 12, MaxRow: 166, MinCol: 2, MaxCol: 8, CatchAll: true},
			{Name: "Rent & Utilities", Category: core.CategoryRentUtilities, Kind: KindExpense, MinRow: 7, MaxRow: 14, MinCol: 10, MaxCol: 16},
			{Name: "Groceries", Category: core.CategoryGroceries, Kind: KindExpense, MinRow: 18, MaxRow: 37, MinCol: 10, MaxCol: 16},
			{Name: "Gas", Category: core.CategoryGas, Kind: KindExpense, MinRow: 41, MaxRow: 50, MinCol: 10, MaxCol: 16},
			{Name: "Fixed Expenses", Category: core.CategoryFixedExpenses, Kind: KindExpense, MinRow: 54, MaxRow: 63, MinCol: 10, MaxCol: 16},
			{Name: "Other Expenses", Category: core.CategoryUncategorized, Kind: KindExpense, MinRow: 67, MaxRow: 166, MinCol: 10, MaxCol: 16, CatchAll: true},
		},
	}
}

// SheetName returns the monthly sheet title, e.g. "March 2024".
func SheetName(p core.Period) string {
	return p.String()
}

// AsOfDate is what the sheet's as-of cell records: the posting date of
// the latest written transaction. A month with no transactions falls
// back to the period's effective end.
func AsOfDate(p core.Period, trxs []core.CategorizedTransaction) time.Time {
	if len(trxs) == 0 {
		return p.EffectiveEnd()
	}
	latest := trxs[0].Date
	for _, trx := range trxs[1:] {
		if trx.Date.After(latest) {
			latest = trx.Date
		}
	}
	return latest
}

// Path returns the workbook file location under the tracker root.
func Path(root string, year int) string {
	return filepath.Join(root, fmt.Sprintf("%d", year), fmt.Sprintf("Income&Expenses%d.xlsx", year))
}

// Assign distributes transactions across the layout's sections. A
// transaction whose category has a dedicated section goes there;
// everything else falls into the catch-all section matching its sign.
// Overflowing a section's capacity is an error.
func (l Layout) Assign(trxs []core.CategorizedTransaction) (map[string][]core.CategorizedTransaction, error) {
	bySection := make(map[string][]core.CategorizedTransaction, len(l.Sections))

	direct := make(map[core.Category]*Section, len(l.Sections))
	var catchAll [2]*Section // indexed by kind: 0 income, 1 expense
	for i := range l.Sections {
		s := &l.Sections[i]
		if s.CatchAll {
			if s.Kind == KindIncome {
				catchAll[0] = s
			} else {
				catchAll[1] = s
			}
			continue
		}
		direct[s.Category] = s
	}

	for _, trx := range trxs {
		section := direct[trx.Category]
		if section == nil {
			if trx.IsIncome() {
				section = catchAll[0]
			} else {
				section = catchAll[1]
			}
		}
		if section == nil {
			return nil, fmt.Errorf("%w: no section for category %s", core.ErrWriteFailed, trx.Category)
		}
		bySection[section.Name] = append(bySection[section.Name], trx)
	}

	for _, s := range l.Sections {
		if n := len(bySection[s.Name]); n > s.Capacity() {
			return nil, fmt.Errorf("%w: section %s holds %d rows, got %d transactions",
				core.ErrSectionOverflow, s.Name, s.Capacity(), n)
		}
	}

	return bySection, nil
}
