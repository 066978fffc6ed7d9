package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/directory"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/register"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l := Open(config.Default("test"))
	t.Cleanup(l.Close)
	return l
}

func TestOpen_WiresBothRegistries(t *testing.T) {
	l := openTestLedger(t)

	acct, err := l.CreateAccount(directory.Params{
		Code: "1000", Name: "Cash", Classification: "asset", Active: true,
	})
	require.NoError(t, err)
	_, err = l.CreateAccount(directory.Params{
		Code: "4000", Name: "Sales Revenue", Classification: "revenue", Active: true,
	})
	require.NoError(t, err)

	amount := decimal.RequireFromString("120.00")
	entry, err := l.CreateEntry(register.Params{
		TransactionDate: time.Date(2021, 10, 10, 0, 0, 0, 0, time.UTC),
		ReferenceNumber: "INV-001",
		Description:     "Cash sale",
		TAccounts: register.TAccounts{
			Left:  []register.AccountAmount{{AccountCode: acct.Code, Amount: amount}},
			Right: []register.AccountAmount{{AccountCode: "4000", Amount: amount}},
		},
	})
	require.NoError(t, err)
	assert.True(t, entry.Balanced())

	found, err := l.Journal.FindByReferenceNumber("INV-001")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, found.ID)
}

func TestCreate_DomainErrorsPassThroughWithoutRetryDelay(t *testing.T) {
	l := openTestLedger(t)

	_, err := l.CreateAccount(directory.Params{
		Code: "1000", Name: "Cash", Classification: "asset", Active: true,
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = l.CreateAccount(directory.Params{
		Code: "1000", Name: "Cash", Classification: "asset", Active: true,
	})
	assert.ErrorIs(t, err, model.ErrAccountAlreadyExists)
	assert.Less(t, time.Since(start), time.Second, "domain conflicts are not retried")
}

func TestClose_ThenCallsAreUnavailable(t *testing.T) {
	cfg := config.Default("test")
	cfg.Retry.MaxElapsedTime = "50ms"
	cfg.Retry.InitialInterval = "5ms"
	l := Open(cfg)
	l.Close()

	_, err := l.CreateAccount(directory.Params{
		Code: "1000", Name: "Cash", Classification: "asset", Active: true,
	})
	assert.ErrorIs(t, err, model.ErrUnavailable)
}

func TestJournalSnapshotPolicy_Disabled(t *testing.T) {
	cfg := config.Default("test")
	cfg.Registry.JournalSnapshots = false
	l := Open(cfg)
	defer l.Close()

	// Still fully operational, just unbacked.
	_, err := l.Journal.FindAll()
	assert.NoError(t, err)
}
