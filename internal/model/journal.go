package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side marks which column of the T-account a line item falls on.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// LineItem is one leg of a journal entry. AccountCode is a non-owning
// lookup key into the account directory.
type LineItem struct {
	AccountCode string
	Amount      decimal.Decimal
	Side        Side
}

// JournalEntry is a dated, balanced record of a business transaction.
// Once Posted flips to true, line items and amounts are frozen.
type JournalEntry struct {
	ID              string
	ReferenceNumber string
	TransactionDate time.Time
	Description     string
	LineItems       []LineItem
	AuditLogs       []AuditLog
	Posted          bool
}

// DateKey returns the bucket key for the entry's transaction date.
func (e JournalEntry) DateKey() DateKey {
	return DateKeyOf(e.TransactionDate)
}

// Balanced reports whether debits equal credits, compared exactly.
func (e JournalEntry) Balanced() bool {
	debits, credits := e.Totals()
	return debits.Equal(credits)
}

// Totals sums the debit and credit line items.
func (e JournalEntry) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, li := range e.LineItems {
		switch li.Side {
		case SideDebit:
			debits = debits.Add(li.Amount)
		case SideCredit:
			credits = credits.Add(li.Amount)
		}
	}
	return debits, credits
}

// Clone returns a deep copy of the entry.
func (e JournalEntry) Clone() JournalEntry {
	c := e
	c.LineItems = append([]LineItem(nil), e.LineItems...)
	c.AuditLogs = append([]AuditLog(nil), e.AuditLogs...)
	return c
}
