// Package rules maps transactions to categories using an ordered list of
// keyword matching rules. The first matching rule wins; transactions no
// rule matches fall into the Uncategorized bucket.
package rules

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"tracker/internal/core"
)

// Rule qualifies a transaction for a category when any keyword appears in
// its search text and no exception keyword does. Matching is a
// case-insensitive substring test.
type Rule struct {
	Category   string   `mapstructure:"category"`
	Keywords   []string `mapstructure:"keywords"`
	Exceptions []string `mapstructure:"exceptions"`
}

type fileConfig struct {
	Rules []Rule `mapstructure:"rules"`
	// Withdrawals matching these keywords are credit card payments and are
	// dropped by the checking reader, since the card account already
	// carries the underlying expenses.
	CreditCardKeywords []string `mapstructure:"credit_card_keywords"`
}

type rule struct {
	category   core.Category
	keywords   []string
	exceptions []string
}

// Categorizer assigns exactly one category to every transaction.
// It is pure: the same transaction always yields the same category.
type Categorizer struct {
	rules      []rule
	ccKeywords []string
}

// Default returns the built-in rule set covering the workbook's
// category sections.
func Default() *Categorizer {
	c, err := build(fileConfig{
		Rules: []Rule{
			{Category: "Primary Income", Keywords: []string{"PAYROLL", "DIRECT DEP", "SALARY"}},
			{Category: "Rent & Utilities", Keywords: []string{"RENT", "ELECTRIC", "WATER", "INTERNET", "UTILITY"}},
			{Category: "Gas", Keywords: []string{"GAS", "FUEL", "SHELL", "EXXON"}},
			{Category: "Groceries", Keywords: []string{"GROCERY", "SUPERMARKET", "WHOLE FOODS", "TRADER JOE"}, Exceptions: []string{"GAS"}},
			{Category: "Fixed Expenses", Keywords: []string{"INSURANCE", "GYM", "PHONE", "SUBSCRIPTION"}},
		},
		CreditCardKeywords: []string{"EPAY", "CARD PAYMENT", "AUTOPAY"},
	})
	if err != nil {
		panic(err) // built-in rules reference only known categories
	}
	return c
}

// Load reads a rule file (TOML) and builds a categorizer from it.
func Load(path string) (*Categorizer, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var cfg fileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal rules file: %w", err)
	}
	return build(cfg)
}

// LoadOrDefault loads the rule file when a path is configured, falling
// back to the built-in rules otherwise. A broken file is an error, not a
// silent fallback.
func LoadOrDefault(path string, logger *slog.Logger) (*Categorizer, error) {
	if path == "" {
		logger.Info("No rules file configured, using built-in rules")
		return Default(), nil
	}
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded categorization rules", "path", path, "rules", len(c.rules))
	return c, nil
}

func build(cfg fileConfig) (*Categorizer, error) {
	if len(cfg.Rules) == 0 {
		return nil, fmt.Errorf("rules file defines no rules")
	}
	out := &Categorizer{ccKeywords: upperAll(cfg.CreditCardKeywords)}
	for i, r := range cfg.Rules {
		cat := core.Category(strings.TrimSpace(r.Category))
		if !cat.Valid() {
			return nil, fmt.Errorf("rule %d: unknown category %q", i, r.Category)
		}
		if cat == core.CategoryUncategorized {
			return nil, fmt.Errorf("rule %d: %q is the fallback bucket, not a rule target", i, r.Category)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no keywords", i, r.Category)
		}
		out.rules = append(out.rules, rule{
			category:   cat,
			keywords:   upperAll(r.Keywords),
			exceptions: upperAll(r.Exceptions),
		})
	}
	return out, nil
}

// Categorize returns the category of the first rule matching the
// transaction, or Uncategorized. Total over all transaction values.
func (c *Categorizer) Categorize(t core.Transaction) core.Category {
	text := t.SearchText()
	for _, r := range c.rules {
		if containsAny(text, r.keywords) && !containsAny(text, r.exceptions) {
			return r.category
		}
	}
	return core.CategoryUncategorized
}

// Apply categorizes every transaction, preserving order.
func (c *Categorizer) Apply(ts []core.Transaction) []core.CategorizedTransaction {
	out := make([]core.CategorizedTransaction, 0, len(ts))
	for _, t := range ts {
		out = append(out, core.CategorizedTransaction{Transaction: t, Category: c.Categorize(t)})
	}
	return out
}

// CreditCardKeywords returns the keywords identifying credit card payment
// withdrawals in the checking account export.
func (c *Categorizer) CreditCardKeywords() []string {
	return append([]string(nil), c.ccKeywords...)
}

func upperAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
