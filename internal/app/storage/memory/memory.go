// Package memory implements the storage interfaces in process memory. It
// backs the session-scoped key space (tab lifetime) and is the default for
// tests and local development. Safe for concurrent use.
package memory

import (
	"context"
	"sync"

	"github.com/clearpathlending/intake/internal/app/storage"
)

// Store is an in-memory implementation of every storage interface.
type Store struct {
	mu     sync.RWMutex
	state  *storage.FlowState
	tokens *storage.Tokens
	drafts map[string][]byte
}

var _ storage.StateStore = (*Store)(nil)
var _ storage.TokenStore = (*Store)(nil)
var _ storage.DraftStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{drafts: make(map[string][]byte)}
}

func (s *Store) LoadFlowState(_ context.Context) (storage.FlowState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return storage.FlowState{}, false, nil
	}
	return cloneState(*s.state), true, nil
}

func (s *Store) SaveFlowState(_ context.Context, st storage.FlowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cloned := cloneState(st)
	s.state = &cloned
	return nil
}

func (s *Store) ClearFlowState(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	return nil
}

func (s *Store) LoadTokens(_ context.Context) (storage.Tokens, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return storage.Tokens{}, false, nil
	}
	return *s.tokens, true, nil
}

func (s *Store) SaveTokens(_ context.Context, t storage.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = &t
	return nil
}

func (s *Store) ClearTokens(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = nil
	return nil
}

func (s *Store) LoadDraft(_ context.Context, step string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.drafts[step]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true, nil
}

func (s *Store) SaveDraft(_ context.Context, step string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(blob))
	copy(stored, blob)
	s.drafts[step] = stored
	return nil
}

func (s *Store) ClearDraft(_ context.Context, step string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, step)
	return nil
}

func cloneState(st storage.FlowState) storage.FlowState {
	out := st
	out.DealProgress = cloneFlags(st.DealProgress)
	out.BorrowerProgress = cloneFlags(st.BorrowerProgress)
	if st.HasCoBorrower != nil {
		v := *st.HasCoBorrower
		out.HasCoBorrower = &v
	}
	return out
}

func cloneFlags(in map[string]bool) map[string]bool {
	if in == nil {
		return nil
	}
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
