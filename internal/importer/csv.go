package importer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/directory"
	"github.com/tally-dev/tally/internal/register"
)

// Chart-of-accounts columns.
const (
	acctNumFields = 5
	acctColCode   = 0
	acctColName   = 1
	acctColType   = 2
	acctColDesc   = 3
	acctColAudit  = 4
)

// AccountHeader is the expected chart CSV header.
var AccountHeader = []string{"Account Code", "Account Name", "Account Type", "Account Description", "Audit Details"}

// Journal columns. One row is one balanced double entry.
const (
	entryNumFields     = 8
	entryColDate       = 0
	entryColReference  = 1
	entryColDesc       = 2
	entryColDebitAcct  = 3
	entryColDebitAmt   = 4
	entryColCreditAcct = 5
	entryColCreditAmt  = 6
	entryColAudit      = 7
)

// EntryHeader is the expected journal CSV header.
var EntryHeader = []string{"Transaction Date", "Reference Number", "Description", "Debit Account", "Debit Amount", "Credit Account", "Credit Amount", "Audit Details"}

// ReadAccountRows parses a chart-of-accounts CSV. The first record is
// the header. Row numbers are 1-based file lines.
func ReadAccountRows(r io.Reader) ([]AccountRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = acctNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var rows []AccountRow
	for i, rec := range records[1:] {
		line := i + 2
		details, err := parseAuditDetails(rec[acctColAudit])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		rows = append(rows, AccountRow{
			Line: line,
			Params: directory.Params{
				Code:           rec[acctColCode],
				Name:           rec[acctColName],
				Classification: rec[acctColType],
				Description:    rec[acctColDesc],
				Active:         true,
				AuditDetails:   details,
			},
		})
	}
	return rows, nil
}

// ReadEntryRows parses a journal CSV.
func ReadEntryRows(r io.Reader) ([]EntryRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = entryNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var rows []EntryRow
	for i, rec := range records[1:] {
		line := i + 2
		row, err := unmarshalEntryRow(line, rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func unmarshalEntryRow(line int, rec []string) (EntryRow, error) {
	date, err := parseDate(rec[entryColDate])
	if err != nil {
		return EntryRow{}, err
	}
	debit, err := decimal.NewFromString(rec[entryColDebitAmt])
	if err != nil {
		return EntryRow{}, fmt.Errorf("parsing debit amount %q: %w", rec[entryColDebitAmt], err)
	}
	credit, err := decimal.NewFromString(rec[entryColCreditAmt])
	if err != nil {
		return EntryRow{}, fmt.Errorf("parsing credit amount %q: %w", rec[entryColCreditAmt], err)
	}
	details, err := parseAuditDetails(rec[entryColAudit])
	if err != nil {
		return EntryRow{}, err
	}

	return EntryRow{
		Line: line,
		Params: register.Params{
			TransactionDate: date,
			ReferenceNumber: rec[entryColReference],
			Description:     rec[entryColDesc],
			TAccounts: register.TAccounts{
				Left:  []register.AccountAmount{{AccountCode: rec[entryColDebitAcct], Amount: debit}},
				Right: []register.AccountAmount{{AccountCode: rec[entryColCreditAcct], Amount: credit}},
			},
			AuditDetails: details,
		},
	}, nil
}

// WriteAccountRows writes a chart-of-accounts CSV, header included.
func WriteAccountRows(w io.Writer, params []directory.Params) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(AccountHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, p := range params {
		row := make([]string, acctNumFields)
		row[acctColCode] = p.Code
		row[acctColName] = p.Name
		row[acctColType] = p.Classification
		row[acctColDesc] = p.Description
		if len(p.AuditDetails) > 0 {
			details, err := json.Marshal(p.AuditDetails)
			if err != nil {
				return fmt.Errorf("row %d: marshaling audit details: %w", i+2, err)
			}
			row[acctColAudit] = string(details)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// parseAuditDetails decodes the free-form JSON column. An empty cell is
// an empty map.
func parseAuditDetails(cell string) (map[string]any, error) {
	if cell == "" {
		return map[string]any{}, nil
	}
	var details map[string]any
	if err := json.Unmarshal([]byte(cell), &details); err != nil {
		return nil, fmt.Errorf("parsing audit details %q: %w", cell, err)
	}
	return details, nil
}

func parseDate(cell string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q", cell)
}
