// Package memory holds written months in memory. It backs dry runs
// and tests of anything that needs a workbook writer.
package memory

import (
	"context"
	"sync"

	"tracker/internal/core"
	"tracker/internal/workbook"
)

// Writer stores the last written transactions per sheet.
type Writer struct {
	mu     sync.Mutex
	layout workbook.Layout
	months map[string]map[string][]core.CategorizedTransaction
	asOf   map[string]string
}

func New() *Writer {
	return &Writer{
		layout: workbook.DefaultLayout(),
		months: make(map[string]map[string][]core.CategorizedTransaction),
		asOf:   make(map[string]string),
	}
}

func (w *Writer) WriteMonth(_ context.Context, p core.Period, trxs []core.CategorizedTransaction) error {
	bySection, err := w.layout.Assign(trxs)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	sheet := workbook.SheetName(p)
	w.months[sheet] = bySection
	w.asOf[sheet] = workbook.AsOfDate(p, trxs).Format("01/02/2006")
	return nil
}

// Section returns the transactions last written to a section of a
// sheet, or nil if the sheet was never written.
func (w *Writer) Section(sheet, section string) []core.CategorizedTransaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.months[sheet][section]
}

// AsOf returns the as-of date last written to a sheet.
func (w *Writer) AsOf(sheet string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.asOf[sheet]
}

var _ workbook.Writer = (*Writer)(nil)
