package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/importer"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInit_WritesConfigAndChart(t *testing.T) {
	dir := t.TempDir()

	out, err := runCommand(t, "init", dir, "--name", "Acme Books")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme Books")

	cfg, err := config.Load(filepath.Join(dir, "tally.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Acme Books", cfg.Ledger.Name)

	f, err := os.Open(filepath.Join(dir, "chart-of-accounts.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := importer.ReadAccountRows(f)
	require.NoError(t, err)
	assert.Len(t, rows, 14)
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runCommand(t, "init", t.TempDir())
	require.Error(t, err)
}

func TestCheck_RunsChartThroughEngine(t *testing.T) {
	dir := t.TempDir()
	_, err := runCommand(t, "init", dir, "--name", "Acme Books")
	require.NoError(t, err)

	out, err := runCommand(t, "check",
		"--config", filepath.Join(dir, "tally.yaml"),
		"--accounts", filepath.Join(dir, "chart-of-accounts.csv"),
	)
	require.NoError(t, err)
	assert.Contains(t, out, "accounts: 14 created, 0 failed")
}

func TestCheck_ReportsBadRows(t *testing.T) {
	dir := t.TempDir()
	_, err := runCommand(t, "init", dir, "--name", "Acme Books")
	require.NoError(t, err)

	chart := "Account Code,Account Name,Account Type,Account Description,Audit Details\n" +
		"1000,Cash,asset,,\n" +
		"1000,Cash Again,asset,collides,\n"
	chartPath := filepath.Join(dir, "bad-chart.csv")
	require.NoError(t, os.WriteFile(chartPath, []byte(chart), 0o644))

	out, err := runCommand(t, "check",
		"--config", filepath.Join(dir, "tally.yaml"),
		"--accounts", chartPath,
	)
	require.Error(t, err)
	assert.Contains(t, out, "accounts: 1 created, 1 failed")
	assert.Contains(t, out, "row 3")
}

func TestCheck_ImportsJournalToo(t *testing.T) {
	dir := t.TempDir()
	_, err := runCommand(t, "init", dir, "--name", "Acme Books")
	require.NoError(t, err)

	journal := "Transaction Date,Reference Number,Description,Debit Account,Debit Amount,Credit Account,Credit Amount,Audit Details\n" +
		"2021-10-10,INV-001,Cash sale,1000,150.00,4000,150.00,\n"
	journalPath := filepath.Join(dir, "journal.csv")
	require.NoError(t, os.WriteFile(journalPath, []byte(journal), 0o644))

	out, err := runCommand(t, "check",
		"--config", filepath.Join(dir, "tally.yaml"),
		"--accounts", filepath.Join(dir, "chart-of-accounts.csv"),
		"--journal", journalPath,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "journal: 1 created, 0 failed")
}
