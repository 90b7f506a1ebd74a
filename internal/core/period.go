package core

import (
	"fmt"
	"strconv"
	"time"
)

// StartYear is the first year a tracker workbook exists for.
const StartYear = 2022

// Period identifies the target reporting window: one month of one year.
type Period struct {
	Month time.Month
	Year  int
}

// NewPeriod validates month and year ranges.
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d out of range 01-12", ErrInvalidArgument, month)
	}
	if year < StartYear {
		return Period{}, fmt.Errorf("%w: year %d precedes the first tracker year %d", ErrInvalidArgument, year, StartYear)
	}
	return Period{Month: time.Month(month), Year: year}, nil
}

// ParsePeriod parses the two positional CLI arguments: a 2-digit month
// code (01-12) and a 4-digit year.
func ParsePeriod(monthArg, yearArg string) (Period, error) {
	if len(monthArg) != 2 {
		return Period{}, fmt.Errorf("%w: month must be a 2-digit code (01-12), got %q", ErrInvalidArgument, monthArg)
	}
	if len(yearArg) != 4 {
		return Period{}, fmt.Errorf("%w: year must be a 4-digit code (YYYY), got %q", ErrInvalidArgument, yearArg)
	}
	month, err := strconv.Atoi(monthArg)
	if err != nil {
		return Period{}, fmt.Errorf("%w: month %q is not a number", ErrInvalidArgument, monthArg)
	}
	year, err := strconv.Atoi(yearArg)
	if err != nil {
		return Period{}, fmt.Errorf("%w: year %q is not a number", ErrInvalidArgument, yearArg)
	}
	return NewPeriod(month, year)
}

// Start returns the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// EffectiveEnd returns the last date to include: the end of the month,
// or today when the period is the current month.
func (p Period) EffectiveEnd() time.Time {
	return p.EffectiveEndAt(time.Now())
}

// EffectiveEndAt is EffectiveEnd relative to a reference time.
func (p Period) EffectiveEndAt(ref time.Time) time.Time {
	monthEnd := p.Start().AddDate(0, 1, -1)
	if p.IsCurrentAt(ref) {
		today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
		if today.Before(monthEnd) {
			return today
		}
	}
	return monthEnd
}

// IsCurrentAt reports whether the period is the month of ref.
func (p Period) IsCurrentAt(ref time.Time) bool {
	return p.Year == ref.Year() && p.Month == ref.Month()
}

// Contains reports whether t falls within [Start, EffectiveEnd],
// comparing at day granularity.
func (p Period) Contains(t time.Time) bool {
	return p.ContainsAt(t, time.Now())
}

// ContainsAt is Contains relative to a reference time.
func (p Period) ContainsAt(t, ref time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(p.Start()) && !day.After(p.EffectiveEndAt(ref))
}

// MonthName returns the spelled-out month, e.g. "March".
func (p Period) MonthName() string {
	return p.Month.String()
}

// String renders the period the way sheet names do, e.g. "March 2024".
func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.MonthName(), p.Year)
}
