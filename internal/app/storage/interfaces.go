// Package storage defines the client-side persistence boundary: one durable
// store (survives restarts, resumes sessions) and one session-scoped store
// (tab lifetime). The key names inside the persisted records are part of the
// resume contract and must stay stable across reimplementations.
package storage

import "context"

// FlowState is the durable record of the intake position. Field names match
// the historical client storage keys so resumed sessions keep working.
type FlowState struct {
	DealID           string          `json:"applicationId"`
	BorrowerID       string          `json:"borrowerId,omitempty"`
	CoBorrowerID     string          `json:"coBorrowerId,omitempty"`
	HasCoBorrower    *bool           `json:"hasCoBorrower,omitempty"`
	LoanPurpose      string          `json:"loanPurpose,omitempty"`
	CurrentFormStep  string          `json:"currentFormStep,omitempty"`
	DealProgress     map[string]bool `json:"dealProgress,omitempty"`
	BorrowerProgress map[string]bool `json:"borrowerProgress,omitempty"`
}

// Tokens is the persisted bearer/refresh token pair.
type Tokens struct {
	Access  string `json:"token"`
	Refresh string `json:"refreshToken"`
}

// StateStore persists the flow position.
type StateStore interface {
	LoadFlowState(ctx context.Context) (FlowState, bool, error)
	SaveFlowState(ctx context.Context, st FlowState) error
	ClearFlowState(ctx context.Context) error
}

// TokenStore persists authentication tokens.
type TokenStore interface {
	LoadTokens(ctx context.Context) (Tokens, bool, error)
	SaveTokens(ctx context.Context, t Tokens) error
	ClearTokens(ctx context.Context) error
}

// DraftStore holds short-lived per-step form blobs (for example loan figures
// collected before an application exists). Drafts are folded into the create
// call and then discarded.
type DraftStore interface {
	LoadDraft(ctx context.Context, step string) ([]byte, bool, error)
	SaveDraft(ctx context.Context, step string, blob []byte) error
	ClearDraft(ctx context.Context, step string) error
}
