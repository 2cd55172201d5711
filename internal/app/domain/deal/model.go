// Package deal defines the application (deal) vocabulary. A deal is the
// single mortgage-application record built across the intake flow; it is
// owned by the server of record and the client treats its copy as possibly
// stale.
package deal

// LoanPurpose distinguishes the two intake branches.
type LoanPurpose string

const (
	PurposePurchase  LoanPurpose = "Purchase"
	PurposeRefinance LoanPurpose = "Refinance"
)

// Valid reports whether the purpose is one of the known values.
func (p LoanPurpose) Valid() bool {
	return p == PurposePurchase || p == PurposeRefinance
}

// Status values assigned by the server.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusWithdrawn Status = "WITHDRAWN"
)
