// Package forms holds the per-step form values and their local validation.
// Each form knows three things: how to populate itself from the server
// record, whether its values pass local validation, and the sparse patch it
// contributes to a save. A patch carries exactly one section sub-object.
package forms

import (
	"regexp"
	"strings"

	"github.com/clearpathlending/intake/internal/backend"
)

// Validation error keys are field names; messages are user-facing.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 8

func validEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// requireText adds a required-field error when the value is blank.
func requireText(errs map[string]string, field, value, message string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = message
	}
}

// borrowerOf picks the borrower or co-borrower side of the server record.
func borrowerOf(app *backend.Application, co bool) *backend.BorrowerPayload {
	if app == nil {
		return nil
	}
	if co {
		return app.CoBorrower
	}
	return app.Borrower
}
