// Package importer feeds CSV rows into the registries, one create per
// row, and aggregates per-row outcomes. The registries never see a file:
// they receive normalized params and answer created-or-error.
package importer

import (
	"fmt"

	"github.com/tally-dev/tally/internal/directory"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/register"
)

// AccountCreator is the directory-side half of the import contract,
// typically Service.Create or a retry-wrapped equivalent.
type AccountCreator func(p directory.Params) (model.Account, error)

// EntryCreator is the register-side half of the import contract.
type EntryCreator func(p register.Params) (model.JournalEntry, error)

// RowError ties a failed row to its line number in the source file.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// AccountRow is one parsed chart-of-accounts row.
type AccountRow struct {
	Line   int
	Params directory.Params
}

// EntryRow is one parsed journal row.
type EntryRow struct {
	Line   int
	Params register.Params
}

// AccountResult aggregates an account import.
type AccountResult struct {
	Created []model.Account
	Errors  []RowError
}

// EntryResult aggregates a journal import.
type EntryResult struct {
	Created []model.JournalEntry
	Errors  []RowError
}

// ImportAccounts creates one account per row, collecting failures
// instead of stopping. Later rows still run after a failure.
func ImportAccounts(create AccountCreator, rows []AccountRow) AccountResult {
	var res AccountResult
	for _, row := range rows {
		acct, err := create(row.Params)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: row.Line, Err: err})
			continue
		}
		res.Created = append(res.Created, acct)
	}
	return res
}

// ImportEntries creates one journal entry per row.
func ImportEntries(create EntryCreator, rows []EntryRow) EntryResult {
	var res EntryResult
	for _, row := range rows {
		entry, err := create(row.Params)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: row.Line, Err: err})
			continue
		}
		res.Created = append(res.Created, entry)
	}
	return res
}
