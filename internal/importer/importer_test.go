package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/backup"
	"github.com/tally-dev/tally/internal/directory"
	"github.com/tally-dev/tally/internal/register"
	"github.com/tally-dev/tally/internal/supervise"
)

const accountsCSV = `Account Code,Account Name,Account Type,Account Description,Audit Details
1000,Cash,asset,Cash on hand,"{""imported_by"":""csv""}"
4000,Sales Revenue,revenue,,
1000,Duplicate Cash,asset,collides on code,
9000,Mystery,goodwill,unknown classification,
`

const journalCSV = `Transaction Date,Reference Number,Description,Debit Account,Debit Amount,Credit Account,Credit Amount,Audit Details
2021-10-10,INV-001,Cash sale,1000,150.00,4000,150.00,"{""imported_by"":""csv""}"
2021-10-12,INV-002,Another sale,1000,80.00,4000,80.00,
2021-10-12,INV-001,Duplicate ref,1000,10.00,4000,10.00,
2021-10-13,INV-003,Unbalanced,1000,10.00,4000,20.00,
`

func newDirectory(t *testing.T) *directory.Service {
	t.Helper()
	svc := directory.New(backup.NewStore[directory.Snapshot](), supervise.Options{Name: "import-dir-test"})
	svc.Start()
	t.Cleanup(svc.Stop)
	return svc
}

func newRegister(t *testing.T) *register.Service {
	t.Helper()
	svc := register.New(backup.NewStore[register.Snapshot](), supervise.Options{Name: "import-reg-test"})
	svc.Start()
	t.Cleanup(svc.Stop)
	return svc
}

func TestReadAccountRows(t *testing.T) {
	rows, err := ReadAccountRows(strings.NewReader(accountsCSV))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "1000", rows[0].Params.Code)
	assert.Equal(t, "asset", rows[0].Params.Classification)
	assert.Equal(t, "csv", rows[0].Params.AuditDetails["imported_by"])
	assert.True(t, rows[0].Params.Active, "imported accounts start active")

	assert.Empty(t, rows[1].Params.AuditDetails, "empty audit cell becomes empty map")
}

func TestReadAccountRows_BadJSON(t *testing.T) {
	bad := "Account Code,Account Name,Account Type,Account Description,Audit Details\n1000,Cash,asset,,not-json\n"
	_, err := ReadAccountRows(strings.NewReader(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestImportAccounts_AggregatesPerRow(t *testing.T) {
	dir := newDirectory(t)

	rows, err := ReadAccountRows(strings.NewReader(accountsCSV))
	require.NoError(t, err)

	res := ImportAccounts(dir.Create, rows)
	require.Len(t, res.Created, 2)
	require.Len(t, res.Errors, 2)

	assert.Equal(t, 4, res.Errors[0].Line, "duplicate code row")
	assert.Equal(t, 5, res.Errors[1].Line, "bad classification row")

	// Good rows landed despite the bad ones.
	_, err = dir.FindByCode("4000")
	assert.NoError(t, err)
}

func TestReadEntryRows(t *testing.T) {
	rows, err := ReadEntryRows(strings.NewReader(journalCSV))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	p := rows[0].Params
	assert.Equal(t, "INV-001", p.ReferenceNumber)
	assert.Equal(t, 2021, p.TransactionDate.Year())
	require.Len(t, p.TAccounts.Left, 1)
	assert.Equal(t, "1000", p.TAccounts.Left[0].AccountCode)
	assert.True(t, p.TAccounts.Left[0].Amount.Equal(p.TAccounts.Right[0].Amount))
	assert.Equal(t, "csv", p.AuditDetails["imported_by"])
}

func TestImportEntries_AggregatesPerRow(t *testing.T) {
	reg := newRegister(t)

	rows, err := ReadEntryRows(strings.NewReader(journalCSV))
	require.NoError(t, err)

	res := ImportEntries(reg.Create, rows)
	require.Len(t, res.Created, 2)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 4, res.Errors[0].Line, "duplicate reference row")
	assert.Equal(t, 5, res.Errors[1].Line, "unbalanced row")

	all, err := reg.FindAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestWriteAccountRows_RoundTrip(t *testing.T) {
	var sb strings.Builder
	params := directory.DefaultChart()
	require.NoError(t, WriteAccountRows(&sb, params))

	rows, err := ReadAccountRows(strings.NewReader(sb.String()))
	require.NoError(t, err)
	require.Len(t, rows, len(params))
	assert.Equal(t, params[0].Code, rows[0].Params.Code)
	assert.Equal(t, params[0].Classification, rows[0].Params.Classification)
}

func TestRowError_Unwraps(t *testing.T) {
	re := RowError{Line: 3, Err: assert.AnError}
	assert.ErrorIs(t, re, assert.AnError)
	assert.Contains(t, re.Error(), "row 3")
}
