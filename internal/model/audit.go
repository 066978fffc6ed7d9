package model

import (
	"time"

	"github.com/google/uuid"
)

// RecordType names the kind of entity an audit log belongs to.
type RecordType string

const (
	RecordAccount      RecordType = "account"
	RecordJournalEntry RecordType = "journal_entry"
)

// ActionType names what was done to the record.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
)

// AuditLog records one change to an entity. Logs are append-only: an
// update appends a new entry rather than editing a prior one.
type AuditLog struct {
	ID         string
	RecordType RecordType
	ActionType ActionType
	Details    map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// NewAuditLog builds an audit log entry stamped with the current time.
func NewAuditLog(record RecordType, action ActionType, details map[string]any) AuditLog {
	now := time.Now().UTC()
	if details == nil {
		details = map[string]any{}
	}
	return AuditLog{
		ID:         uuid.NewString(),
		RecordType: record,
		ActionType: action,
		Details:    details,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
