// Package flow models the intake step graph as an explicit finite set of
// named nodes with transitions gated by the loan purpose and co-borrower
// presence. Transitions are pure functions; the only mutable piece of flow
// state is the current-step pointer held by the state store.
package flow

import "github.com/clearpathlending/intake/internal/app/domain/deal"

// Step names a node in the intake graph. The string values are shared with
// the server's currentFormStep field and must stay stable.
type Step string

const (
	BorrowerInfo1      Step = "borrower-info-1"
	BorrowerInfo2      Step = "borrower-info-2"
	CoBorrowerQuestion Step = "co-borrower-question"
	CoBorrowerInfo1    Step = "co-borrower-info-1"
	CoBorrowerInfo2    Step = "co-borrower-info-2"
	Review             Step = "review"
	Intro              Step = "getting-to-know-you-intro"
	Loan               Step = "loan"
	LoanCompleted      Step = "loan-completed"
)

// Context carries the branch inputs for transitions.
type Context struct {
	LoanPurpose   deal.LoanPurpose
	HasCoBorrower bool
}

// First is the canonical entry point of the intake flow. Unknown or missing
// steps always resolve here rather than failing.
func First() Step { return BorrowerInfo1 }

// Known reports whether the step is a node of the graph.
func Known(s Step) bool {
	switch s {
	case BorrowerInfo1, BorrowerInfo2, CoBorrowerQuestion,
		CoBorrowerInfo1, CoBorrowerInfo2, Review, Intro, Loan, LoanCompleted:
		return true
	}
	return false
}

// Next returns the step that follows s. Review ends the getting-started
// phase and feeds the loan-and-property section; LoanCompleted is terminal.
func Next(s Step, ctx Context) Step {
	switch s {
	case BorrowerInfo1:
		return BorrowerInfo2
	case BorrowerInfo2:
		return CoBorrowerQuestion
	case CoBorrowerQuestion:
		if ctx.HasCoBorrower {
			return CoBorrowerInfo1
		}
		return Review
	case CoBorrowerInfo1:
		return CoBorrowerInfo2
	case CoBorrowerInfo2:
		return Review
	case Review:
		return Intro
	case Intro:
		return Loan
	case Loan, LoanCompleted:
		return LoanCompleted
	}
	return First()
}

// Previous returns the step shown when the user navigates back. It is not
// the inverse of Next at branch entries: the co-borrower sub-flow always
// returns to the question node regardless of how it was entered, and Review
// backs into the sub-flow only when a co-borrower exists.
func Previous(s Step, ctx Context) Step {
	switch s {
	case BorrowerInfo1:
		return BorrowerInfo1
	case BorrowerInfo2:
		return BorrowerInfo1
	case CoBorrowerQuestion:
		return BorrowerInfo2
	case CoBorrowerInfo1:
		return CoBorrowerQuestion
	case CoBorrowerInfo2:
		return CoBorrowerInfo1
	case Review:
		if ctx.HasCoBorrower {
			return CoBorrowerInfo2
		}
		return BorrowerInfo2
	case Intro:
		return Review
	case Loan, LoanCompleted:
		return Intro
	}
	return First()
}

// Resolve normalizes a possibly-unknown step (for example a stale server
// value or a deep link) onto the graph.
func Resolve(s Step) Step {
	if Known(s) {
		return s
	}
	return First()
}
