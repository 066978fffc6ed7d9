package model

import "errors"

// Registry operations return these sentinels, optionally wrapped with
// context. Callers match with errors.Is.
var (
	// Input shape errors.
	ErrInvalidParams       = errors.New("invalid params")
	ErrInvalidAccount      = errors.New("invalid account")
	ErrInvalidJournalEntry = errors.New("invalid journal entry")

	// Field errors.
	ErrInvalidCode            = errors.New("invalid code")
	ErrInvalidName            = errors.New("invalid name")
	ErrInvalidClassification  = errors.New("invalid classification")
	ErrInvalidDescription     = errors.New("invalid description")
	ErrInvalidActiveState     = errors.New("invalid active state")
	ErrInvalidAuditDetails    = errors.New("invalid audit details")
	ErrInvalidTransactionDate = errors.New("invalid transaction date")
	ErrInvalidReferenceNumber = errors.New("invalid reference number")
	ErrInvalidID              = errors.New("invalid id")
	ErrInvalidQuery           = errors.New("invalid query")
	ErrInvalidField           = errors.New("invalid field")

	// Domain conflicts.
	ErrAccountAlreadyExists      = errors.New("account already exists")
	ErrDuplicateReferenceNumber  = errors.New("duplicate reference number")
	ErrUnbalancedEntry           = errors.New("unbalanced entry")
	ErrAlreadyPostedJournalEntry = errors.New("journal entry already posted")

	// Lookup failures.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is the transient infrastructure condition: the owner
	// is stopped or restarting. Callers retry with bounded backoff; every
	// other error is final.
	ErrUnavailable = errors.New("registry unavailable")
)
