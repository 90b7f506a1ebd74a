// Package storage keeps an append-only sqlite ledger of imported
// transactions, usable as a transaction source once populated.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"tracker/internal/core"
)

const dateLayout = "2006-01-02"

// Ledger is a sqlite-backed transaction store.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path and runs
// pending migrations.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to ledger database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// InsertBatch stores transactions for an account, skipping rows already
// present. Identical rows within a batch are numbered so that two
// genuinely equal purchases both survive, while re-importing the same
// export stays a no-op. Returns the number of newly inserted rows.
func (l *Ledger) InsertBatch(ctx context.Context, account string, trxs []core.Transaction) (int, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (account, posted_on, amount_cents, description, merchant, ordinal)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	seen := make(map[string]int)
	for _, trx := range trxs {
		if err := trx.Validate(); err != nil {
			return inserted, fmt.Errorf("invalid transaction %q: %w", trx.Description, err)
		}
		postedOn := trx.Date.Format(dateLayout)
		key := fmt.Sprintf("%s\x00%d\x00%s", postedOn, trx.Amount.Cents, trx.Description)
		ordinal := seen[key]
		seen[key]++
		res, err := stmt.ExecContext(ctx,
			account,
			postedOn,
			trx.Amount.Cents,
			trx.Description,
			trx.Merchant,
			ordinal,
		)
		if err != nil {
			return inserted, fmt.Errorf("inserting transaction: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("reading rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("committing batch: %w", err)
	}
	return inserted, nil
}

// Fetch returns all stored transactions posted within the period,
// sorted by posting date.
func (l *Ledger) Fetch(ctx context.Context, p core.Period) ([]core.Transaction, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT posted_on, amount_cents, description, merchant
		FROM transactions
		WHERE posted_on BETWEEN ? AND ?
		ORDER BY posted_on, id`,
		p.Start().Format(dateLayout),
		p.EffectiveEnd().Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: querying ledger: %v", core.ErrDataUnavailable, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			postedOn string
			trx      core.Transaction
		)
		if err := rows.Scan(&postedOn, &trx.Amount.Cents, &trx.Description, &trx.Merchant); err != nil {
			return nil, fmt.Errorf("%w: scanning ledger row: %v", core.ErrDataUnavailable, err)
		}
		date, err := time.Parse(dateLayout, postedOn)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing stored date %q: %v", core.ErrDataUnavailable, postedOn, err)
		}
		trx.Date = date
		out = append(out, trx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading ledger rows: %v", core.ErrDataUnavailable, err)
	}
	return out, nil
}
