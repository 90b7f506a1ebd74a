// Package api fetches transactions from a bank aggregation REST API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"tracker/internal/core"
)

const defaultPageSize = 200

// Config holds connection settings for the bank API.
type Config struct {
	BaseURL    string
	Token      string
	AccountIDs []string
	PageSize   int

	// HTTPClient overrides the default retrying client, mainly for tests.
	HTTPClient *http.Client
}

// Source retrieves transactions for one or more accounts over HTTP.
type Source struct {
	baseURL    string
	token      string
	accountIDs []string
	pageSize   int
	client     *http.Client
}

func New(cfg Config) (*Source, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: bank api base url is required", core.ErrInvalidArgument)
	}
	if len(cfg.AccountIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one account id is required", core.ErrInvalidArgument)
	}

	client := cfg.HTTPClient
	if client == nil {
		rc := retryablehttp.NewClient()
		rc.RetryMax = 3
		rc.Logger = nil
		client = rc.StandardClient()
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Source{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		accountIDs: cfg.AccountIDs,
		pageSize:   pageSize,
		client:     client,
	}, nil
}

type transactionPage struct {
	Transactions []apiTransaction `json:"transactions"`
	NextCursor   string           `json:"next_cursor"`
}

type apiTransaction struct {
	PostedOn    string `json:"posted_on"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Merchant    string `json:"merchant"`
}

// Fetch retrieves all transactions posted within the period across the
// configured accounts, sorted by posting date.
func (s *Source) Fetch(ctx context.Context, p core.Period) ([]core.Transaction, error) {
	var all []core.Transaction
	for _, accountID := range s.accountIDs {
		trxs, err := s.fetchAccount(ctx, accountID, p)
		if err != nil {
			return nil, fmt.Errorf("%w: account %s: %v", core.ErrDataUnavailable, accountID, err)
		}
		all = append(all, trxs...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.Before(all[j].Date)
	})
	return all, nil
}

func (s *Source) fetchAccount(ctx context.Context, accountID string, p core.Period) ([]core.Transaction, error) {
	var (
		out    []core.Transaction
		cursor string
	)
	for {
		page, err := s.fetchPage(ctx, accountID, p, cursor)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Transactions {
			trx, err := raw.toTransaction()
			if err != nil {
				return nil, err
			}
			if p.Contains(trx.Date) {
				out = append(out, trx)
			}
		}
		if page.NextCursor == "" {
			return out, nil
		}
		cursor = page.NextCursor
	}
}

func (s *Source) fetchPage(ctx context.Context, accountID string, p core.Period, cursor string) (*transactionPage, error) {
	endpoint, err := url.Parse(fmt.Sprintf("%s/accounts/%s/transactions", s.baseURL, accountID))
	if err != nil {
		return nil, errors.Wrap(err, "building transactions url")
	}

	q := endpoint.Query()
	q.Set("start", p.Start().Format("2006-01-02"))
	q.Set("end", p.EffectiveEnd().Format("2006-01-02"))
	q.Set("limit", strconv.Itoa(s.pageSize))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting transactions")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint.Path)
	}

	var page transactionPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, errors.Wrap(err, "decoding transactions page")
	}
	return &page, nil
}

func (t apiTransaction) toTransaction() (core.Transaction, error) {
	date, err := time.Parse("2006-01-02", t.PostedOn)
	if err != nil {
		return core.Transaction{}, errors.Wrapf(err, "parsing posted_on %q", t.PostedOn)
	}
	cents, err := core.ParseAmountToCents(t.Amount)
	if err != nil {
		return core.Transaction{}, errors.Wrapf(err, "parsing amount %q", t.Amount)
	}
	return core.Transaction{
		Date:        date,
		Amount:      core.Money{Cents: cents},
		Description: t.Description,
		Merchant:    t.Merchant,
	}, nil
}
