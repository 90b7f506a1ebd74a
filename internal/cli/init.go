// Package cli holds bootstrap helpers shared by the commands.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"tracker/internal/config"
	"tracker/internal/core"
)

// SetupLogger configures and installs the default text logger.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads a .env file if present. A missing file is fine.
func LoadEnvFile(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}
}

// LoadAndValidateConfig reads the environment and reports every
// configuration problem at once.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return cfg, nil
}

// Confirm asks before touching a monthly sheet. It keeps prompting
// until the answer starts with y or n and treats EOF as a no.
func Confirm(in io.Reader, out io.Writer, p core.Period) bool {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprintf(out, "Are you sure you want to update %s Income & Expenses? (y/n): ", p)
		line, err := reader.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(answer, "y"):
			return true
		case strings.HasPrefix(answer, "n"):
			return false
		}
		if err != nil {
			return false
		}
	}
}
