package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/logging"
)

func newCheckCommand() *cobra.Command {
	var configPath string
	var accountsPath string
	var journalPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run CSV files through the registry engine and report per-row results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logging.Init(cfg.Log.Level, cfg.Log.Format)
			return runCheck(cmd, cfg, accountsPath, journalPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "tally.yaml", "path to tally.yaml")
	cmd.Flags().StringVar(&accountsPath, "accounts", "", "chart of accounts CSV (required)")
	cmd.Flags().StringVar(&journalPath, "journal", "", "journal CSV")
	_ = cmd.MarkFlagRequired("accounts")

	return cmd
}

func runCheck(cmd *cobra.Command, cfg *config.Config, accountsPath, journalPath string) error {
	l := ledger.Open(cfg)
	defer l.Close()

	out := cmd.OutOrStdout()
	failed := 0

	acctRows, err := readAccountRows(accountsPath)
	if err != nil {
		return err
	}
	acctRes := importer.ImportAccounts(l.CreateAccount, acctRows)
	fmt.Fprintf(out, "accounts: %d created, %d failed\n", len(acctRes.Created), len(acctRes.Errors))
	for _, re := range acctRes.Errors {
		fmt.Fprintf(out, "  %v\n", re)
	}
	failed += len(acctRes.Errors)

	if journalPath != "" {
		entryRows, err := readEntryRows(journalPath)
		if err != nil {
			return err
		}
		entryRes := importer.ImportEntries(l.CreateEntry, entryRows)
		fmt.Fprintf(out, "journal: %d created, %d failed\n", len(entryRes.Created), len(entryRes.Errors))
		for _, re := range entryRes.Errors {
			fmt.Fprintf(out, "  %v\n", re)
		}
		failed += len(entryRes.Errors)
	}

	if failed > 0 {
		return fmt.Errorf("%d row(s) failed", failed)
	}
	return nil
}

func readAccountRows(path string) ([]importer.AccountRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return importer.ReadAccountRows(f)
}

func readEntryRows(path string) ([]importer.EntryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return importer.ReadEntryRows(f)
}
