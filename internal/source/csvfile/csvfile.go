// Package csvfile reads the bank's monthly CSV exports from the tracker
// data directory. This is the production transaction source: exports are
// downloaded manually from the bank and dropped under
// <root>/<year>/<MM>_Transaction_Data/.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tracker/internal/core"
	"tracker/internal/source"
)

// Account identifies one of the two export files of a month.
type Account string

const (
	AccountChecking   Account = "checking"
	AccountCreditCard Account = "credit_card"
)

// Accounts lists the export files making up one month.
func Accounts() []Account {
	return []Account{AccountChecking, AccountCreditCard}
}

type Source struct {
	root string
	// Withdrawals matching these keywords pay off the credit card; they
	// are dropped because the card export already carries the expenses.
	ccKeywords []string
}

var _ source.Source = (*Source)(nil)

func New(root string, creditCardKeywords []string) *Source {
	upper := make([]string, 0, len(creditCardKeywords))
	for _, kw := range creditCardKeywords {
		kw = strings.ToUpper(strings.TrimSpace(kw))
		if kw != "" {
			upper = append(upper, kw)
		}
	}
	return &Source{root: root, ccKeywords: upper}
}

// Fetch reads both account exports for the period and merges them into
// one date-sorted sequence.
func (s *Source) Fetch(ctx context.Context, p core.Period) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, account := range Accounts() {
		trx, err := s.FetchAccount(ctx, account, p)
		if err != nil {
			return nil, err
		}
		out = append(out, trx...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// FetchAccount reads a single account export for the period.
func (s *Source) FetchAccount(ctx context.Context, account Account, p core.Period) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.exportPath(account, p)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s export %s: %v", core.ErrDataUnavailable, account, path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s export %s: %v", core.ErrDataUnavailable, account, path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s export %s is empty", core.ErrDataUnavailable, account, path)
	}

	header := index(records[0])
	var parse func(map[string]int, []string) (core.Transaction, bool, error)
	switch account {
	case AccountChecking:
		parse = s.parseCheckingRow
	case AccountCreditCard:
		parse = s.parseCreditCardRow
	default:
		return nil, fmt.Errorf("%w: unknown account %q", core.ErrDataUnavailable, account)
	}

	var out []core.Transaction
	for i, record := range records[1:] {
		trx, keep, err := parse(header, record)
		if err != nil {
			return nil, fmt.Errorf("%w: %s export %s row %d: %v", core.ErrDataUnavailable, account, path, i+2, err)
		}
		if !keep || !p.Contains(trx.Date) {
			continue
		}
		out = append(out, trx)
	}
	return out, nil
}

func (s *Source) exportPath(account Account, p core.Period) string {
	return filepath.Join(s.root,
		fmt.Sprintf("%d", p.Year),
		fmt.Sprintf("%02d_Transaction_Data", int(p.Month)),
		fmt.Sprintf("%s_%02d.csv", account, int(p.Month)))
}

// parseCheckingRow keeps DEBIT and CREDIT rows. Withdrawals paying off
// the credit card are dropped.
func (s *Source) parseCheckingRow(header map[string]int, record []string) (core.Transaction, bool, error) {
	details, err := field(header, record, "Details")
	if err != nil {
		return core.Transaction{}, false, err
	}
	if details != "DEBIT" && details != "CREDIT" {
		return core.Transaction{}, false, nil
	}
	desc, err := field(header, record, "Description")
	if err != nil {
		return core.Transaction{}, false, err
	}
	if details == "DEBIT" && s.isCreditCardPayment(desc) {
		return core.Transaction{}, false, nil
	}
	date, err := parseDateField(header, record, "Posting Date")
	if err != nil {
		return core.Transaction{}, false, err
	}
	amount, err := parseAmountField(header, record, "Amount")
	if err != nil {
		return core.Transaction{}, false, err
	}
	return core.Transaction{Date: date, Amount: amount, Description: desc}, true, nil
}

// parseCreditCardRow keeps Sale rows only; card payments and returns are
// not part of the month's spending picture.
func (s *Source) parseCreditCardRow(header map[string]int, record []string) (core.Transaction, bool, error) {
	typ, err := field(header, record, "Type")
	if err != nil {
		return core.Transaction{}, false, err
	}
	if typ != "Sale" {
		return core.Transaction{}, false, nil
	}
	desc, err := field(header, record, "Description")
	if err != nil {
		return core.Transaction{}, false, err
	}
	// The card export names the counterparty directly.
	date, err := parseDateField(header, record, "Post Date")
	if err != nil {
		return core.Transaction{}, false, err
	}
	amount, err := parseAmountField(header, record, "Amount")
	if err != nil {
		return core.Transaction{}, false, err
	}
	return core.Transaction{Date: date, Amount: amount, Description: desc, Merchant: desc}, true, nil
}

func (s *Source) isCreditCardPayment(desc string) bool {
	text := strings.ToUpper(desc)
	for _, kw := range s.ccKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func index(header []string) map[string]int {
	out := make(map[string]int, len(header))
	for i, name := range header {
		out[strings.TrimSpace(name)] = i
	}
	return out
}

func field(header map[string]int, record []string, name string) (string, error) {
	idx, ok := header[name]
	if !ok {
		return "", fmt.Errorf("column %q not found", name)
	}
	if idx >= len(record) {
		return "", fmt.Errorf("column %q missing in row", name)
	}
	return strings.TrimSpace(record[idx]), nil
}

func parseDateField(header map[string]int, record []string, name string) (time.Time, error) {
	raw, err := field(header, record, name)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range []string{"01/02/2006", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unexpected value %q in %q field", raw, name)
}

func parseAmountField(header map[string]int, record []string, name string) (core.Money, error) {
	raw, err := field(header, record, name)
	if err != nil {
		return core.Money{}, err
	}
	cents, err := core.ParseAmountToCents(raw)
	if err != nil {
		return core.Money{}, fmt.Errorf("unexpected value %q in %q field", raw, name)
	}
	return core.Money{Cents: cents}, nil
}
