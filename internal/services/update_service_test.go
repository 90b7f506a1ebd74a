package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"tracker/internal/core"
	"tracker/internal/rules"
	"tracker/internal/workbook"
	"tracker/internal/workbook/memory"
)

type stubSource struct {
	trxs []core.Transaction
	err  error
}

func (s stubSource) Fetch(_ context.Context, _ core.Period) ([]core.Transaction, error) {
	return s.trxs, s.err
}

type failingWriter struct{ err error }

func (w failingWriter) WriteMonth(_ context.Context, _ core.Period, _ []core.CategorizedTransaction) error {
	return w.err
}

var _ workbook.Writer = failingWriter{}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPeriod(t *testing.T) core.Period {
	t.Helper()
	p, err := core.NewPeriod(3, 2024)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRun(t *testing.T) {
	src := stubSource{trxs: []core.Transaction{
		{
			Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Amount:      core.Money{Cents: 250000},
			Description: "ACME CORP PAYROLL",
		},
		{
			Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Amount:      core.Money{Cents: -4500},
			Description: "GROCERY MART #123",
		},
		{
			Date:        time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
			Amount:      core.Money{Cents: -625},
			Description: "MYSTERY VENDOR",
		},
	}}
	writer := memory.New()
	svc := NewUpdateService(src, rules.Default(), writer, nil, testLogger())

	summary, err := svc.Run(context.Background(), testPeriod(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Fetched != 3 {
		t.Errorf("fetched = %d", summary.Fetched)
	}
	if summary.ByCategory[core.CategoryPrimaryIncome] != 1 {
		t.Errorf("by category = %+v", summary.ByCategory)
	}
	if summary.ByCategory[core.CategoryUncategorized] != 1 {
		t.Errorf("uncategorized count = %d", summary.ByCategory[core.CategoryUncategorized])
	}

	if got := writer.Section("March 2024", "Primary Income"); len(got) != 1 {
		t.Errorf("primary income rows = %d", len(got))
	}
	if got := writer.Section("March 2024", "Other Expenses"); len(got) != 1 || got[0].Description != "MYSTERY VENDOR" {
		t.Errorf("other expenses rows = %+v", got)
	}
	// As-of tracks the latest written transaction, not the month end.
	if !summary.AsOf.Equal(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("summary as-of = %v", summary.AsOf)
	}
	if got := writer.AsOf("March 2024"); got != "03/09/2024" {
		t.Errorf("sheet as-of = %q", got)
	}
}

func TestRunSourceError(t *testing.T) {
	src := stubSource{err: core.ErrDataUnavailable}
	svc := NewUpdateService(src, rules.Default(), memory.New(), nil, testLogger())

	_, err := svc.Run(context.Background(), testPeriod(t))
	if !errors.Is(err, core.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestRunWriterError(t *testing.T) {
	src := stubSource{trxs: []core.Transaction{{
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:      core.Money{Cents: -100},
		Description: "SOMETHING",
	}}}
	svc := NewUpdateService(src, rules.Default(), failingWriter{err: core.ErrSheetNotFound}, nil, testLogger())

	_, err := svc.Run(context.Background(), testPeriod(t))
	if !errors.Is(err, core.ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestRunEmptyMonth(t *testing.T) {
	writer := memory.New()
	svc := NewUpdateService(stubSource{}, rules.Default(), writer, nil, testLogger())

	summary, err := svc.Run(context.Background(), testPeriod(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Fetched != 0 {
		t.Errorf("fetched = %d", summary.Fetched)
	}
	p := testPeriod(t)
	if want := p.EffectiveEnd().Format("01/02/2006"); writer.AsOf("March 2024") != want {
		t.Errorf("empty month as-of = %q, want effective end %q", writer.AsOf("March 2024"), want)
	}
	if !summary.AsOf.Equal(p.EffectiveEnd()) {
		t.Errorf("empty month summary as-of = %v", summary.AsOf)
	}
}
