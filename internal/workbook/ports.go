// Package workbook defines the monthly-sheet layout shared by all
// workbook backends and the writer port they implement.
package workbook

import (
	"context"

	"tracker/internal/core"
)

// Writer replaces the contents of a monthly sheet with the given
// transactions. Implementations must be idempotent: writing the same
// input twice leaves the sheet in the same state.
type Writer interface {
	WriteMonth(ctx context.Context, p core.Period, trxs []core.CategorizedTransaction) error
}
