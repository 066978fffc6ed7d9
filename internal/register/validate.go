package register

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// AccountAmount is one {account, amount} pair from a T-account column.
type AccountAmount struct {
	AccountCode string
	Amount      decimal.Decimal
}

// TAccounts groups the line items supplied at create time: left is the
// debit column, right the credit column.
type TAccounts struct {
	Left  []AccountAmount
	Right []AccountAmount
}

// Params carries the fields accepted by Create.
type Params struct {
	TransactionDate time.Time
	ReferenceNumber string
	Description     string
	TAccounts       TAccounts
	AuditDetails    map[string]any
}

// UpdateAttrs is the whitelist of fields Update may change. TAccounts
// and TransactionDate are structural: a posted entry rejects them.
type UpdateAttrs struct {
	TransactionDate *time.Time
	Description     *string
	Posted          *bool
	TAccounts       *TAccounts
	AuditDetails    map[string]any
}

// ValidateParams checks all create-time fields, failing on the first bad
// one, and returns the normalized params.
func ValidateParams(p Params) (Params, error) {
	if p.TransactionDate.IsZero() {
		return Params{}, fmt.Errorf("%w: transaction date must be set", model.ErrInvalidTransactionDate)
	}
	if strings.TrimSpace(p.ReferenceNumber) == "" {
		return Params{}, fmt.Errorf("%w: reference number must be non-empty", model.ErrInvalidReferenceNumber)
	}
	if err := validateTAccounts(p.TAccounts); err != nil {
		return Params{}, err
	}
	if p.AuditDetails == nil {
		p.AuditDetails = map[string]any{}
	}
	return p, nil
}

// validateTAccounts checks both columns are present, every amount is
// positive, and the columns balance exactly.
func validateTAccounts(ta TAccounts) error {
	if len(ta.Left) == 0 || len(ta.Right) == 0 {
		return fmt.Errorf("%w: t_accounts need at least one debit and one credit", model.ErrInvalidParams)
	}

	left, right := decimal.Zero, decimal.Zero
	for _, aa := range ta.Left {
		if strings.TrimSpace(aa.AccountCode) == "" {
			return fmt.Errorf("%w: debit line missing account", model.ErrInvalidParams)
		}
		if !aa.Amount.IsPositive() {
			return fmt.Errorf("%w: debit amount %s must be positive", model.ErrInvalidParams, aa.Amount)
		}
		left = left.Add(aa.Amount)
	}
	for _, aa := range ta.Right {
		if strings.TrimSpace(aa.AccountCode) == "" {
			return fmt.Errorf("%w: credit line missing account", model.ErrInvalidParams)
		}
		if !aa.Amount.IsPositive() {
			return fmt.Errorf("%w: credit amount %s must be positive", model.ErrInvalidParams, aa.Amount)
		}
		right = right.Add(aa.Amount)
	}

	if !left.Equal(right) {
		return fmt.Errorf("%w: debits %s != credits %s", model.ErrUnbalancedEntry, left, right)
	}
	return nil
}

// lineItems builds the entry's line items: left column as debits, right
// column as credits, in the order supplied.
func (ta TAccounts) lineItems() []model.LineItem {
	items := make([]model.LineItem, 0, len(ta.Left)+len(ta.Right))
	for _, aa := range ta.Left {
		items = append(items, model.LineItem{AccountCode: aa.AccountCode, Amount: aa.Amount, Side: model.SideDebit})
	}
	for _, aa := range ta.Right {
		items = append(items, model.LineItem{AccountCode: aa.AccountCode, Amount: aa.Amount, Side: model.SideCredit})
	}
	return items
}
