package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tracker/internal/backend"
	"tracker/internal/cli"
	"tracker/internal/core"
	"tracker/internal/rules"
	"tracker/internal/services"
)

// errCancelled is returned when the user declines the confirmation
// prompt. Nothing was mutated, but the run still exits non-zero.
var errCancelled = errors.New("update cancelled")

func newRootCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:           "tracker <mm> <yyyy>",
		Short:         "Update a monthly Income & Expenses sheet from bank exports",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := core.ParsePeriod(args[0], args[1])
			if err != nil {
				return err
			}

			if !assumeYes && !cli.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), p) {
				return errCancelled
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

			adapters, err := backend.Build(cmd.Context(), cfg, categorizer, logger)
			if err != nil {
				return err
			}
			defer adapters.Close()

			svc := services.NewUpdateService(adapters.Source, categorizer, adapters.Writer, adapters.Notifier, logger)
			summary, err := svc.Run(cmd.Context(), p)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %d transactions, as of %s\n",
				summary.Period, summary.Fetched, summary.AsOf.Format("01/02/2006"))
			for category, count := range summary.ByCategory {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %d\n", category, count)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
