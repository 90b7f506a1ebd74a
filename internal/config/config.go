// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	SourceCSV    = "csv"
	SourceSqlite = "sqlite"
	SourceAPI    = "api"

	WorkbookExcel  = "excel"
	WorkbookGoogle = "google"
	WorkbookMemory = "memory"
)

type Config struct {
	Root            string
	WorkbookBackend string
	SourceBackend   string
	RulesFile       string

	SqliteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	GoogleSpreadsheetID string

	BankAPIBaseURL    string
	BankAPIToken      string
	BankAPIAccountIDs []string
	BankAPIPageSize   int
}

func Load() *Config {
	return &Config{
		Root:            getEnv("TRACKER_ROOT", "./Tracker"),
		WorkbookBackend: getEnv("WORKBOOK_BACKEND", WorkbookExcel),
		SourceBackend:   getEnv("SOURCE_BACKEND", SourceCSV),
		RulesFile:       getEnv("RULES_FILE", ""),

		SqliteDBPath: getEnv("SQLITE_DB_PATH", "tracker.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tracker"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sheet-updates"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),

		BankAPIBaseURL:    getEnv("BANK_API_BASE_URL", ""),
		BankAPIToken:      getEnv("BANK_API_TOKEN", ""),
		BankAPIAccountIDs: splitEnv("BANK_API_ACCOUNT_IDS"),
		BankAPIPageSize:   getEnvInt("BANK_API_PAGE_SIZE", 200),
	}
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() []error {
	var errs []error

	switch c.SourceBackend {
	case SourceCSV:
		if c.Root == "" {
			errs = append(errs, fmt.Errorf("TRACKER_ROOT is required for the csv source"))
		}
	case SourceSqlite:
		if c.SqliteDBPath == "" {
			errs = append(errs, fmt.Errorf("SQLITE_DB_PATH is required for the sqlite source"))
		}
	case SourceAPI:
		if c.BankAPIBaseURL == "" {
			errs = append(errs, fmt.Errorf("BANK_API_BASE_URL is required for the api source"))
		}
		if len(c.BankAPIAccountIDs) == 0 {
			errs = append(errs, fmt.Errorf("BANK_API_ACCOUNT_IDS is required for the api source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SOURCE_BACKEND %q (must be csv, sqlite or api)", c.SourceBackend))
	}

	switch c.WorkbookBackend {
	case WorkbookExcel:
		if c.Root == "" {
			errs = append(errs, fmt.Errorf("TRACKER_ROOT is required for the excel workbook"))
		}
	case WorkbookGoogle:
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, fmt.Errorf("GOOGLE_SPREADSHEET_ID is required for the google workbook"))
		}
	case WorkbookMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown WORKBOOK_BACKEND %q (must be excel, google or memory)", c.WorkbookBackend))
	}

	if c.AMQPURL != "" {
		if c.AMQPExchange == "" {
			errs = append(errs, fmt.Errorf("AMQP_EXCHANGE is required when AMQP_URL is set"))
		}
		if c.AMQPQueue == "" {
			errs = append(errs, fmt.Errorf("AMQP_QUEUE is required when AMQP_URL is set"))
		}
	}

	if c.BankAPIPageSize <= 0 {
		errs = append(errs, fmt.Errorf("BANK_API_PAGE_SIZE must be positive"))
	}

	return errs
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func splitEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
