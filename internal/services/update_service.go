// Package services orchestrates the monthly update flow.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tracker/internal/core"
	"tracker/internal/notify"
	"tracker/internal/rules"
	"tracker/internal/source"
	"tracker/internal/workbook"
)

// UpdateService runs one monthly update: fetch, categorize, write.
type UpdateService struct {
	source      source.Source
	categorizer *rules.Categorizer
	writer      workbook.Writer
	notifier    *notify.Client
	logger      *slog.Logger
}

// Summary reports what a run did. AsOf is the posting date of the
// latest written transaction, matching the sheet's as-of cell.
type Summary struct {
	Period     core.Period
	Fetched    int
	ByCategory map[core.Category]int
	AsOf       time.Time
}

func NewUpdateService(
	src source.Source,
	categorizer *rules.Categorizer,
	writer workbook.Writer,
	notifier *notify.Client,
	logger *slog.Logger,
) *UpdateService {
	return &UpdateService{
		source:      src,
		categorizer: categorizer,
		writer:      writer,
		notifier:    notifier,
		logger:      logger,
	}
}

// Run updates the monthly sheet for the period. The notifier is best
// effort: a publish failure is logged but never fails the run.
func (s *UpdateService) Run(ctx context.Context, p core.Period) (*Summary, error) {
	s.logger.Info("fetching transactions", "period", p.String())
	trxs, err := s.source.Fetch(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("fetching transactions for %s: %w", p, err)
	}

	categorized := s.categorizer.Apply(trxs)

	byCategory := make(map[core.Category]int)
	for _, trx := range categorized {
		byCategory[trx.Category]++
	}
	s.logger.Info("categorized transactions", "total", len(categorized), "uncategorized", byCategory[core.CategoryUncategorized])

	if err := s.writer.WriteMonth(ctx, p, categorized); err != nil {
		return nil, fmt.Errorf("writing sheet for %s: %w", p, err)
	}

	summary := &Summary{
		Period:     p,
		Fetched:    len(trxs),
		ByCategory: byCategory,
		AsOf:       workbook.AsOfDate(p, categorized),
	}

	if s.notifier != nil {
		msg := notify.UpdateCompletedMessage{
			Month:        int(p.Month),
			Year:         p.Year,
			Transactions: len(categorized),
			AsOf:         summary.AsOf.Format("01/02/2006"),
			UpdatedAt:    time.Now(),
		}
		if err := s.notifier.PublishUpdateCompleted(ctx, msg); err != nil {
			s.logger.Warn("failed to publish update event", "error", err)
		}
	}

	s.logger.Info("sheet updated", "period", p.String(), "transactions", len(categorized))
	return summary, nil
}
