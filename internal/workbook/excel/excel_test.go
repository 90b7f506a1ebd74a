package excel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"tracker/internal/core"
	"tracker/internal/workbook"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTemplate creates a workbook on disk with the monthly sheet the
// writer expects to find.
func writeTemplate(t *testing.T, root string, year int, sheets ...string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for _, sheet := range sheets {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatal(err)
		}
	}
	path := workbook.Path(root, year)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func march(t *testing.T) core.Period {
	t.Helper()
	p, err := core.NewPeriod(3, 2024)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func sampleTransactions() []core.CategorizedTransaction {
	return []core.CategorizedTransaction{
		{
			Transaction: core.Transaction{
				Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				Amount:      core.Money{Cents: 250000},
				Description: "ACME CORP PAYROLL",
			},
			Category: core.CategoryPrimaryIncome,
		},
		{
			Transaction: core.Transaction{
				Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
				Amount:      core.Money{Cents: -4500},
				Description: "GROCERY MART #123",
			},
			Category: core.CategoryGroceries,
		},
		{
			Transaction: core.Transaction{
				Date:        time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
				Amount:      core.Money{Cents: -625},
				Description: "COFFEE CORNER",
			},
			Category: core.CategoryUncategorized,
		},
	}
}

func cellValue(t *testing.T, path, sheet, cell string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	v, err := f.GetCellValue(sheet, cell)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestWriteMonth(t *testing.T) {
	root := t.TempDir()
	path := writeTemplate(t, root, 2024, "March 2024")
	w := New(root, discardLogger())

	if err := w.WriteMonth(context.Background(), march(t), sampleTransactions()); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Primary Income starts at B7; amount lives in the last column H.
	if got := cellValue(t, path, "March 2024", "B7"); got != "03/01/2024" {
		t.Errorf("B7 = %q", got)
	}
	if got := cellValue(t, path, "March 2024", "C7"); got != "ACME CORP PAYROLL" {
		t.Errorf("C7 = %q", got)
	}
	if got := cellValue(t, path, "March 2024", "H7"); got != "2500" {
		t.Errorf("H7 = %q", got)
	}

	// Groceries section starts at J18.
	if got := cellValue(t, path, "March 2024", "K18"); got != "GROCERY MART #123" {
		t.Errorf("K18 = %q", got)
	}
	if got := cellValue(t, path, "March 2024", "P18"); got != "-45" {
		t.Errorf("P18 = %q", got)
	}

	// Uncategorized expense lands in Other Expenses at row 67.
	if got := cellValue(t, path, "March 2024", "K67"); got != "COFFEE CORNER" {
		t.Errorf("K67 = %q", got)
	}

	// As-of date is the latest written transaction's posting date.
	if got := cellValue(t, path, "March 2024", "T1"); got != "03/09/2024" {
		t.Errorf("T1 = %q, want latest transaction date 03/09/2024", got)
	}
}

func TestWriteMonthIdempotent(t *testing.T) {
	root := t.TempDir()
	path := writeTemplate(t, root, 2024, "March 2024")
	w := New(root, discardLogger())
	ctx := context.Background()

	trxs := sampleTransactions()
	if err := w.WriteMonth(ctx, march(t), trxs); err != nil {
		t.Fatalf("first write: %v", err)
	}

	// Second run with fewer transactions must clear the removed row.
	if err := w.WriteMonth(ctx, march(t), trxs[:1]); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if got := cellValue(t, path, "March 2024", "K18"); got != "" {
		t.Errorf("stale grocery row survived: K18 = %q", got)
	}
	if got := cellValue(t, path, "March 2024", "C7"); got != "ACME CORP PAYROLL" {
		t.Errorf("C7 = %q", got)
	}
}

func TestWriteMonthEmpty(t *testing.T) {
	root := t.TempDir()
	path := writeTemplate(t, root, 2024, "March 2024")
	w := New(root, discardLogger())
	ctx := context.Background()

	if err := w.WriteMonth(ctx, march(t), sampleTransactions()); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	if err := w.WriteMonth(ctx, march(t), nil); err != nil {
		t.Fatalf("empty write: %v", err)
	}
	if got := cellValue(t, path, "March 2024", "B7"); got != "" {
		t.Errorf("B7 should be cleared, got %q", got)
	}
	// With nothing written the as-of falls back to the effective end.
	want := march(t).EffectiveEnd().Format("01/02/2006")
	if got := cellValue(t, path, "March 2024", "T1"); got != want {
		t.Errorf("T1 = %q, want %q", got, want)
	}
}

func TestWriteMonthMissingWorkbook(t *testing.T) {
	w := New(t.TempDir(), discardLogger())
	err := w.WriteMonth(context.Background(), march(t), sampleTransactions())
	if !errors.Is(err, core.ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestWriteMonthMissingSheet(t *testing.T) {
	root := t.TempDir()
	path := writeTemplate(t, root, 2024, "February 2024")
	w := New(root, discardLogger())

	err := w.WriteMonth(context.Background(), march(t), sampleTransactions())
	if !errors.Is(err, core.ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}

	// Nothing was written to the workbook.
	if got := cellValue(t, path, "February 2024", "T1"); got != "" {
		t.Errorf("unexpected write to wrong sheet: T1 = %q", got)
	}
}

func TestWriteMonthOverflow(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, 2024, "March 2024")
	w := New(root, discardLogger())

	var trxs []core.CategorizedTransaction
	for i := 0; i < 3; i++ {
		trxs = append(trxs, core.CategorizedTransaction{
			Transaction: core.Transaction{
				Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				Amount:      core.Money{Cents: 100},
				Description: "PAY",
			},
			Category: core.CategoryPrimaryIncome,
		})
	}
	err := w.WriteMonth(context.Background(), march(t), trxs)
	if !errors.Is(err, core.ErrSectionOverflow) {
		t.Fatalf("expected ErrSectionOverflow, got %v", err)
	}
}
