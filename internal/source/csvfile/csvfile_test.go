package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tracker/internal/core"
)

const checkingCSV = `Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
CREDIT,03/01/2024,ACME CORP PAYROLL,2500.00,ACH_CREDIT,3200.55,
DEBIT,03/04/2024,CITY RENT LLC,-1200.00,ACH_DEBIT,2000.55,
DEBIT,03/06/2024,CHASE EPAY CARD PAYMENT,-431.20,ACH_DEBIT,1569.35,
DSLIP,03/07/2024,COUNTER DEPOSIT,50.00,MISC,1619.35,
DEBIT,03/28/2024,POWER & LIGHT CO,-88.10,ACH_DEBIT,1531.25,
`

const creditCardCSV = `Transaction Date,Post Date,Description,Category,Type,Amount,Memo
03/04/2024,03/05/2024,GROCERY MART #123,Groceries,Sale,-45.00,
03/09/2024,03/10/2024,SHELL 4411,Gas,Sale,-52.10,
03/11/2024,03/12/2024,Payment Thank You,,Payment,431.20,
03/30/2024,03/31/2024,COFFEE CORNER,Food,Sale,-6.25,
`

func writeExports(t *testing.T, checking, card string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "2024", "03_Transaction_Data")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if checking != "" {
		if err := os.WriteFile(filepath.Join(dir, "checking_03.csv"), []byte(checking), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if card != "" {
		if err := os.WriteFile(filepath.Join(dir, "credit_card_03.csv"), []byte(card), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func marchPeriod(t *testing.T) core.Period {
	t.Helper()
	p, err := core.NewPeriod(3, 2024)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFetch(t *testing.T) {
	root := writeExports(t, checkingCSV, creditCardCSV)
	src := New(root, []string{"EPAY"})

	got, err := src.Fetch(context.Background(), marchPeriod(t))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	// 3 checking rows survive (DSLIP and the EPAY card payment are
	// dropped) plus 3 card Sale rows.
	if len(got) != 6 {
		t.Fatalf("expected 6 transactions, got %d: %+v", len(got), got)
	}

	// Date-sorted merge.
	for i := 1; i < len(got); i++ {
		if got[i].Date.Before(got[i-1].Date) {
			t.Fatalf("transactions not sorted at %d: %v after %v", i, got[i].Date, got[i-1].Date)
		}
	}

	// Signed amounts preserved.
	if got[0].Description != "ACME CORP PAYROLL" || got[0].Amount.Cents != 250000 {
		t.Fatalf("unexpected first transaction %+v", got[0])
	}
	for _, trx := range got {
		if trx.Description == "GROCERY MART #123" {
			if trx.Amount.Cents != -4500 {
				t.Fatalf("grocery amount = %d", trx.Amount.Cents)
			}
			if trx.Date != time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC) {
				t.Fatalf("grocery posted on %v", trx.Date)
			}
		}
		if trx.Description == "CHASE EPAY CARD PAYMENT" {
			t.Fatalf("credit card payment should have been dropped")
		}
		if trx.Description == "Payment Thank You" {
			t.Fatalf("card payment row should have been dropped")
		}
	}
}

func TestFetchMissingExport(t *testing.T) {
	root := writeExports(t, checkingCSV, "") // no credit card file
	src := New(root, nil)

	_, err := src.Fetch(context.Background(), marchPeriod(t))
	if err == nil {
		t.Fatalf("expected error for missing export")
	}
	if !errors.Is(err, core.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestFetchMalformedExport(t *testing.T) {
	root := writeExports(t, "Details,Posting Date\nDEBIT", creditCardCSV)
	src := New(root, nil)

	_, err := src.Fetch(context.Background(), marchPeriod(t))
	if !errors.Is(err, core.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestFetchMissingColumn(t *testing.T) {
	broken := `Details,Posting Date,Amount
DEBIT,03/04/2024,-10.00
`
	root := writeExports(t, broken, creditCardCSV)
	src := New(root, nil)

	_, err := src.Fetch(context.Background(), marchPeriod(t))
	if !errors.Is(err, core.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestFetchAccountFiltersPeriod(t *testing.T) {
	outOfRange := `Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
DEBIT,02/29/2024,LAST MONTH,-10.00,ACH_DEBIT,100.00,
DEBIT,03/04/2024,IN RANGE,-10.00,ACH_DEBIT,90.00,
DEBIT,04/01/2024,NEXT MONTH,-10.00,ACH_DEBIT,80.00,
`
	root := writeExports(t, outOfRange, creditCardCSV)
	src := New(root, nil)

	got, err := src.FetchAccount(context.Background(), AccountChecking, marchPeriod(t))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0].Description != "IN RANGE" {
		t.Fatalf("expected only the in-range row, got %+v", got)
	}
}
