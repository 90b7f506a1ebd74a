// Package google mirrors the monthly sheet into a Google Spreadsheet
// for remote access. The spreadsheet must follow the same template as
// the local workbook.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"tracker/internal/core"
	"tracker/internal/workbook"
)

const dateLayout = "01/02/2006"

type Writer struct {
	service       *sheets.Service
	spreadsheetID string
	layout        workbook.Layout
	logger        *slog.Logger
}

// New builds a writer authenticated with service account credentials
// taken from the environment: GOOGLE_SERVICE_ACCOUNT_JSON (inline),
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID string, logger *slog.Logger) (*Writer, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet id is required", core.ErrInvalidArgument)
	}

	opts, err := credentialOptions()
	if err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
		layout:        workbook.DefaultLayout(),
		logger:        logger,
	}, nil
}

func credentialOptions() ([]option.ClientOption, error) {
	if raw := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"); raw != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(raw))}, nil
	}
	if file := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"); file != "" {
		return []option.ClientOption{option.WithCredentialsFile(file)}, nil
	}
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		// The client library picks this up on its own.
		return nil, nil
	}
	return nil, fmt.Errorf("%w: no google credentials configured", core.ErrInvalidArgument)
}

func (w *Writer) WriteMonth(ctx context.Context, p core.Period, trxs []core.CategorizedTransaction) error {
	bySection, err := w.layout.Assign(trxs)
	if err != nil {
		return err
	}

	sheet := workbook.SheetName(p)
	if err := w.ensureSheet(ctx, sheet); err != nil {
		return err
	}

	for _, section := range w.layout.Sections {
		if err := w.writeSection(ctx, sheet, section, bySection[section.Name]); err != nil {
			return err
		}
	}

	asOf := [][]any{{workbook.AsOfDate(p, trxs).Format(dateLayout)}}
	_, err = w.service.Spreadsheets.Values.
		Update(w.spreadsheetID, fmt.Sprintf("%s!%s", sheet, w.layout.AsOfCell), &sheets.ValueRange{Values: asOf}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: writing as-of date: %v", core.ErrWriteFailed, err)
	}

	w.logger.Info("spreadsheet updated", "spreadsheet", w.spreadsheetID, "sheet", sheet, "transactions", len(trxs))
	return nil
}

func (w *Writer) ensureSheet(ctx context.Context, title string) error {
	doc, err := w.service.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: fetching spreadsheet: %v", core.ErrWriteFailed, err)
	}
	for _, s := range doc.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return nil
		}
	}
	return fmt.Errorf("%w: sheet %s not found in spreadsheet %s", core.ErrSheetNotFound, title, w.spreadsheetID)
}

func (w *Writer) writeSection(ctx context.Context, sheet string, section workbook.Section, trxs []core.CategorizedTransaction) error {
	sectionRange, err := rangeName(sheet, section)
	if err != nil {
		return err
	}

	_, err = w.service.Spreadsheets.Values.
		Clear(w.spreadsheetID, sectionRange, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: clearing %s: %v", core.ErrWriteFailed, sectionRange, err)
	}

	if len(trxs) == 0 {
		return nil
	}

	width := section.MaxCol - section.MinCol + 1
	values := make([][]any, 0, len(trxs))
	for _, trx := range trxs {
		row := make([]any, width)
		row[0] = trx.Date.Format(dateLayout)
		row[1] = trx.Description
		row[width-1] = trx.Amount.Float()
		values = append(values, row)
	}

	_, err = w.service.Spreadsheets.Values.
		Update(w.spreadsheetID, sectionRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: writing %s: %v", core.ErrWriteFailed, sectionRange, err)
	}
	return nil
}

func rangeName(sheet string, section workbook.Section) (string, error) {
	start, err := cellName(section.MinCol, section.MinRow)
	if err != nil {
		return "", err
	}
	end, err := cellName(section.MaxCol, section.MaxRow)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s!%s:%s", sheet, start, end), nil
}

func cellName(col, row int) (string, error) {
	if col < 1 || row < 1 {
		return "", fmt.Errorf("%w: invalid cell coordinates (%d,%d)", core.ErrWriteFailed, col, row)
	}
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return fmt.Sprintf("%s%d", name, row), nil
}

var _ workbook.Writer = (*Writer)(nil)
