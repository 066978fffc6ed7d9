package directory

import (
	"fmt"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// Params carries the fields accepted by Create. AuditDetails is an
// opaque payload stored on the seeded audit log.
type Params struct {
	Code           string
	Name           string
	Classification string
	Description    string
	Active         bool
	AuditDetails   map[string]any
}

// UpdateAttrs is the whitelist of fields Update may change. Nil pointers
// leave the field alone. Code is deliberately absent: the primary key is
// not editable.
type UpdateAttrs struct {
	Name         *string
	Description  *string
	Active       *bool
	AuditDetails map[string]any
}

// ValidateParams checks all create-time fields, failing on the first bad
// one, and returns the normalized params.
func ValidateParams(p Params) (Params, error) {
	if strings.TrimSpace(p.Code) == "" {
		return Params{}, fmt.Errorf("%w: code must be non-empty", model.ErrInvalidCode)
	}
	if strings.TrimSpace(p.Name) == "" {
		return Params{}, fmt.Errorf("%w: name must be non-empty", model.ErrInvalidName)
	}
	if _, err := model.Classify(p.Classification); err != nil {
		return Params{}, fmt.Errorf("%w: %q", model.ErrInvalidClassification, p.Classification)
	}
	if p.AuditDetails == nil {
		p.AuditDetails = map[string]any{}
	}
	return p, nil
}

// validateUpdateAttrs checks the fields an update wants to touch.
func validateUpdateAttrs(attrs UpdateAttrs) error {
	if attrs.Name != nil && strings.TrimSpace(*attrs.Name) == "" {
		return fmt.Errorf("%w: name must be non-empty", model.ErrInvalidName)
	}
	return nil
}
