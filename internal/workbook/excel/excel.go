// Package excel writes monthly sheets in a local xlsx workbook.
package excel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	"tracker/internal/core"
	"tracker/internal/workbook"
)

const dateLayout = "01/02/2006"

// Writer updates monthly sheets of the Income&Expenses workbook on
// disk. The workbook and the target sheet must already exist.
type Writer struct {
	root   string
	layout workbook.Layout
	logger *slog.Logger
}

func New(root string, logger *slog.Logger) *Writer {
	return &Writer{
		root:   root,
		layout: workbook.DefaultLayout(),
		logger: logger,
	}
}

// WriteMonth clears every section of the monthly sheet and rewrites it
// from the given transactions. The sheet ends up identical no matter
// how many times the same input is written.
func (w *Writer) WriteMonth(ctx context.Context, p core.Period, trxs []core.CategorizedTransaction) error {
	bySection, err := w.layout.Assign(trxs)
	if err != nil {
		return err
	}

	path := workbook.Path(w.root, p.Year)
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: workbook %s does not exist", core.ErrSheetNotFound, path)
		}
		return fmt.Errorf("%w: opening workbook %s: %v", core.ErrWriteFailed, path, err)
	}
	defer f.Close()

	sheet := workbook.SheetName(p)
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("%w: looking up sheet %s: %v", core.ErrWriteFailed, sheet, err)
	}
	if idx == -1 {
		return fmt.Errorf("%w: sheet %s not found in %s", core.ErrSheetNotFound, sheet, path)
	}

	for _, section := range w.layout.Sections {
		if err := w.writeSection(f, sheet, section, bySection[section.Name]); err != nil {
			return err
		}
	}

	if err := f.SetCellValue(sheet, w.layout.AsOfCell, workbook.AsOfDate(p, trxs).Format(dateLayout)); err != nil {
		return fmt.Errorf("%w: writing as-of date: %v", core.ErrWriteFailed, err)
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: saving workbook %s: %v", core.ErrWriteFailed, path, err)
	}

	w.logger.Info("workbook updated", "path", path, "sheet", sheet, "transactions", len(trxs))
	return nil
}

func (w *Writer) writeSection(f *excelize.File, sheet string, section workbook.Section, trxs []core.CategorizedTransaction) error {
	// Clear the whole section first so stale rows from a previous run
	// never survive.
	for row := section.MinRow; row <= section.MaxRow; row++ {
		for col := section.MinCol; col <= section.MaxCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return fmt.Errorf("%w: resolving cell: %v", core.ErrWriteFailed, err)
			}
			if err := f.SetCellValue(sheet, cell, nil); err != nil {
				return fmt.Errorf("%w: clearing %s!%s: %v", core.ErrWriteFailed, sheet, cell, err)
			}
		}
	}

	for i, trx := range trxs {
		row := section.MinRow + i
		if err := w.setCell(f, sheet, section.MinCol, row, trx.Date.Format(dateLayout)); err != nil {
			return err
		}
		if err := w.setCell(f, sheet, section.MinCol+1, row, trx.Description); err != nil {
			return err
		}
		if err := w.setCell(f, sheet, section.MaxCol, row, trx.Amount.Float()); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("%w: resolving cell: %v", core.ErrWriteFailed, err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("%w: writing %s!%s: %v", core.ErrWriteFailed, sheet, cell, err)
	}
	return nil
}

var _ workbook.Writer = (*Writer)(nil)
