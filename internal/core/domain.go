package core

import (
	"errors"
	"strings"
	"time"
)

// Categories are tied one-to-one to sections of the tracker workbook.
// The set is closed: anything no rule matches falls into Uncategorized.
const (
	CategoryPrimaryIncome Category = "Primary Income"
	CategoryRentUtilities Category = "Rent & Utilities"
	CategoryGroceries     Category = "Groceries"
	CategoryGas           Category = "Gas"
	CategoryFixedExpenses Category = "Fixed Expenses"
	CategoryUncategorized Category = "Uncategorized"
)

type (
	Category string

	Money struct {
		Cents int64
	}

	// Transaction is a single bank transaction. Immutable once fetched.
	Transaction struct {
		Date        time.Time
		Amount      Money
		Description string
		Merchant    string
	}

	// CategorizedTransaction is a Transaction with its resolved category.
	CategorizedTransaction struct {
		Transaction
		Category Category
	}
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDataUnavailable = errors.New("transaction data unavailable")
	ErrSheetNotFound   = errors.New("worksheet not found")
	ErrWriteFailed     = errors.New("workbook write failed")
	ErrSectionOverflow = errors.New("section row allowance exceeded")

	ErrEmptyDescription = errors.New("empty description")
	ErrZeroDate         = errors.New("date cannot be zero")
)

// Categories returns the closed category set in workbook order.
func Categories() []Category {
	return []Category{
		CategoryPrimaryIncome,
		CategoryRentUtilities,
		CategoryGroceries,
		CategoryGas,
		CategoryFixedExpenses,
		CategoryUncategorized,
	}
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// IsIncome reports whether the transaction is a deposit. Amounts are
// signed the way the bank exports them: income positive, expenses negative.
func (t Transaction) IsIncome() bool {
	return t.Amount.Cents > 0
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// SearchText is the upper-cased text the categorizer matches keywords
// against: description plus merchant, when present.
func (t Transaction) SearchText() string {
	if t.Merchant == "" {
		return strings.ToUpper(t.Description)
	}
	return strings.ToUpper(t.Description + " " + t.Merchant)
}
