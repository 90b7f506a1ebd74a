// Package source declares the port for fetching bank transactions,
// regardless of backing store.
package source

import (
	"context"

	"tracker/internal/core"
)

// Source yields the transactions of one account period. Implementations
// return only transactions dated within [period start, effective end] and
// wrap core.ErrDataUnavailable when the backing store cannot be reached
// or parsed.
type Source interface {
	Fetch(ctx context.Context, p core.Period) ([]core.Transaction, error)
}
