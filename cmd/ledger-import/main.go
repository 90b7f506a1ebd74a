// Command ledger-import loads monthly bank CSV exports into the
// sqlite ledger, so later runs can source transactions from it.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tracker/internal/cli"
	"tracker/internal/core"
	"tracker/internal/rules"
	"tracker/internal/source/csvfile"
	"tracker/internal/storage"
)

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "ledger-import <mm> <yyyy>",
		Short:         "Import monthly bank CSV exports into the sqlite ledger",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := core.ParsePeriod(args[0], args[1])
			if err != nil {
				return err
			}

			logger := cli.SetupLogger()
			cli.LoadEnvFile(logger)

			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}

			categorizer, err := rules.LoadOrDefault(cfg.RulesFile, logger)
			if err != nil {
				return err
			}

			ledger, err := storage.Open(cfg.SqliteDBPath)
			if err != nil {
				return err
			}
			defer ledger.Close()

			src := csvfile.New(cfg.Root, categorizer.CreditCardKeywords())

			var (
				mu    sync.Mutex
				total int
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			for _, account := range csvfile.Accounts() {
				g.Go(func() error {
					trxs, err := src.FetchAccount(ctx, account, p)
					if err != nil {
						return err
					}
					n, err := ledger.InsertBatch(ctx, string(account), trxs)
					if err != nil {
						return err
					}
					logger.Info("imported account", "account", account, "rows", len(trxs), "new", n)
					mu.Lock()
					total += n
					mu.Unlock()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new transactions for %s into %s\n", total, p, cfg.SqliteDBPath)
			return nil
		},
	}
}

func main() {
	ctx := context.Background()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
