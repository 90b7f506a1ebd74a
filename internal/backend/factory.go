// Package backend assembles the source, workbook and notifier
// adapters selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"tracker/internal/config"
	"tracker/internal/notify"
	"tracker/internal/rules"
	"tracker/internal/source"
	"tracker/internal/source/api"
	"tracker/internal/source/csvfile"
	"tracker/internal/storage"
	"tracker/internal/workbook"
	"tracker/internal/workbook/excel"
	"tracker/internal/workbook/google"
	"tracker/internal/workbook/memory"
)

// Result holds the wired adapters for one run. Close releases any
// connections they hold.
type Result struct {
	Source   source.Source
	Writer   workbook.Writer
	Notifier *notify.Client

	cleanups []func() error
}

func (r *Result) Close() {
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		r.cleanups[i]()
	}
}

// Build wires the adapters named by the configuration. The notifier is
// optional: a broker that cannot be reached downgrades to a warning.
func Build(ctx context.Context, cfg *config.Config, categorizer *rules.Categorizer, logger *slog.Logger) (*Result, error) {
	result := &Result{}

	switch cfg.SourceBackend {
	case config.SourceCSV:
		result.Source = csvfile.New(cfg.Root, categorizer.CreditCardKeywords())
	case config.SourceSqlite:
		ledger, err := storage.Open(cfg.SqliteDBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite ledger: %w", err)
		}
		result.cleanups = append(result.cleanups, ledger.Close)
		result.Source = ledger
	case config.SourceAPI:
		src, err := api.New(api.Config{
			BaseURL:    cfg.BankAPIBaseURL,
			Token:      cfg.BankAPIToken,
			AccountIDs: cfg.BankAPIAccountIDs,
			PageSize:   cfg.BankAPIPageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("building api source: %w", err)
		}
		result.Source = src
	default:
		return nil, fmt.Errorf("unknown source backend %q", cfg.SourceBackend)
	}

	switch cfg.WorkbookBackend {
	case config.WorkbookExcel:
		result.Writer = excel.New(cfg.Root, logger)
	case config.WorkbookGoogle:
		writer, err := google.New(ctx, cfg.GoogleSpreadsheetID, logger)
		if err != nil {
			result.Close()
			return nil, fmt.Errorf("building google workbook: %w", err)
		}
		result.Writer = writer
	case config.WorkbookMemory:
		result.Writer = memory.New()
	default:
		result.Close()
		return nil, fmt.Errorf("unknown workbook backend %q", cfg.WorkbookBackend)
	}

	if cfg.AMQPURL != "" {
		client, err := notify.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("update events disabled, broker unreachable", "error", err)
		} else {
			result.cleanups = append(result.cleanups, client.Close)
			result.Notifier = client
		}
	}

	return result, nil
}
