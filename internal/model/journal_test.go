package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestJournalEntry_Balanced(t *testing.T) {
	entry := JournalEntry{
		LineItems: []LineItem{
			{AccountCode: "5000", Amount: dec("70.10"), Side: SideDebit},
			{AccountCode: "5100", Amount: dec("29.90"), Side: SideDebit},
			{AccountCode: "1000", Amount: dec("100.00"), Side: SideCredit},
		},
	}
	assert.True(t, entry.Balanced())

	debits, credits := entry.Totals()
	assert.True(t, debits.Equal(dec("100.00")))
	assert.True(t, credits.Equal(dec("100.00")))
}

func TestJournalEntry_Unbalanced(t *testing.T) {
	entry := JournalEntry{
		LineItems: []LineItem{
			{AccountCode: "5000", Amount: dec("100.00"), Side: SideDebit},
			{AccountCode: "1000", Amount: dec("99.99"), Side: SideCredit},
		},
	}
	assert.False(t, entry.Balanced())
}

func TestJournalEntry_CloneIsDeep(t *testing.T) {
	entry := JournalEntry{
		ID:        "e1",
		LineItems: []LineItem{{AccountCode: "1000", Amount: dec("5"), Side: SideDebit}},
		AuditLogs: []AuditLog{NewAuditLog(RecordJournalEntry, ActionCreate, nil)},
	}

	clone := entry.Clone()
	clone.LineItems[0].AccountCode = "9999"
	clone.AuditLogs[0].ActionType = ActionUpdate

	assert.Equal(t, "1000", entry.LineItems[0].AccountCode)
	assert.Equal(t, ActionCreate, entry.AuditLogs[0].ActionType)
}
