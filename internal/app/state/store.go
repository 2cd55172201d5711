// Package state holds the client's authoritative view of "where am I in the
// intake": deal and borrower identifiers, the current form step, and the
// advisory progress maps. Every mutation is written back to durable storage
// immediately so a restart resumes exactly where the user left off.
package state

import (
	"context"
	"sync"

	"github.com/clearpathlending/intake/internal/app/domain/deal"
	"github.com/clearpathlending/intake/internal/app/domain/flow"
	"github.com/clearpathlending/intake/internal/app/storage"
	"github.com/clearpathlending/intake/internal/backend"
	"github.com/clearpathlending/intake/pkg/logger"
)

// Store is the in-memory flow state with write-through persistence.
type Store struct {
	mu      sync.RWMutex
	st      storage.FlowState
	durable storage.StateStore
	log     *logger.Logger
}

// Hydrate loads the persisted flow state and overlays the URL's application
// id when one is supplied. The URL wins: a link into a specific application
// beats whatever an earlier session left behind, but only the id field is
// replaced so the rest of the resumed state survives.
func Hydrate(ctx context.Context, durable storage.StateStore, urlApplicationID string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewDefault("state")
	}
	s := &Store{durable: durable, log: log}

	st, ok, err := durable.LoadFlowState(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		s.st = st
	}

	if urlApplicationID != "" && urlApplicationID != s.st.DealID {
		if s.st.DealID != "" {
			log.WithField("stored", s.st.DealID).
				WithField("url", urlApplicationID).
				Info("url application id overrides stored id")
		}
		s.st.DealID = urlApplicationID
		if err := s.persist(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// persist writes the current state through to durable storage. Callers hold
// s.mu or are single-threaded constructors.
func (s *Store) persist(ctx context.Context) error {
	if s.durable == nil {
		return nil
	}
	return s.durable.SaveFlowState(ctx, s.st)
}

// DealID returns the application identifier, empty before creation.
func (s *Store) DealID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.DealID
}

// SetDealID records the application id. The id is set at most once for the
// life of the state; a conflicting second set is logged and ignored because
// it means two create paths raced and the first one won.
func (s *Store) SetDealID(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.DealID != "" {
		if s.st.DealID != id {
			s.log.WithField("existing", s.st.DealID).
				WithField("ignored", id).
				Warn("application id already set, ignoring conflicting value")
		}
		return nil
	}
	s.st.DealID = id
	return s.persist(ctx)
}

func (s *Store) BorrowerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.BorrowerID
}

func (s *Store) SetBorrowerID(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.BorrowerID == id {
		return nil
	}
	s.st.BorrowerID = id
	return s.persist(ctx)
}

func (s *Store) CoBorrowerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.CoBorrowerID
}

func (s *Store) SetCoBorrowerID(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.CoBorrowerID == id {
		return nil
	}
	s.st.CoBorrowerID = id
	return s.persist(ctx)
}

// HasCoBorrower reports the answer to the co-borrower question. The second
// return is false while the question is unanswered.
func (s *Store) HasCoBorrower() (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.st.HasCoBorrower == nil {
		return false, false
	}
	return *s.st.HasCoBorrower, true
}

func (s *Store) SetHasCoBorrower(ctx context.Context, has bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := has
	s.st.HasCoBorrower = &v
	return s.persist(ctx)
}

func (s *Store) LoanPurpose() deal.LoanPurpose {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deal.LoanPurpose(s.st.LoanPurpose)
}

func (s *Store) SetLoanPurpose(ctx context.Context, p deal.LoanPurpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.LoanPurpose == string(p) {
		return nil
	}
	s.st.LoanPurpose = string(p)
	return s.persist(ctx)
}

// CurrentStep returns the persisted position, normalized onto the graph.
func (s *Store) CurrentStep() flow.Step {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return flow.Resolve(flow.Step(s.st.CurrentFormStep))
}

func (s *Store) SetCurrentStep(ctx context.Context, step flow.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.CurrentFormStep == string(step) {
		return nil
	}
	s.st.CurrentFormStep = string(step)
	return s.persist(ctx)
}

// FlowContext packages the branch inputs for flow transitions.
func (s *Store) FlowContext() flow.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	has := s.st.HasCoBorrower != nil && *s.st.HasCoBorrower
	return flow.Context{
		LoanPurpose:   deal.LoanPurpose(s.st.LoanPurpose),
		HasCoBorrower: has,
	}
}

// UpdateDealProgress merges one deal-level section flag into the cached map.
func (s *Store) UpdateDealProgress(ctx context.Context, section string, complete bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.DealProgress == nil {
		s.st.DealProgress = make(map[string]bool)
	}
	s.st.DealProgress[section] = complete
	return s.persist(ctx)
}

// UpdateBorrowerProgress merges one borrower-level section flag.
func (s *Store) UpdateBorrowerProgress(ctx context.Context, section string, complete bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.BorrowerProgress == nil {
		s.st.BorrowerProgress = make(map[string]bool)
	}
	s.st.BorrowerProgress[section] = complete
	return s.persist(ctx)
}

// SyncFromAPI merges the server record into the local state. The merge is
// one-way and additive: fields the server sent win, fields it omitted keep
// their local values. The deal id still goes through the at-most-once rule.
func (s *Store) SyncFromAPI(ctx context.Context, app backend.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	if app.ID != "" {
		if s.st.DealID == "" {
			s.st.DealID = app.ID
			changed = true
		} else if s.st.DealID != app.ID {
			s.log.WithField("existing", s.st.DealID).
				WithField("server", app.ID).
				Warn("server returned a different application id, keeping local")
		}
	}
	if app.BorrowerID != "" && s.st.BorrowerID != app.BorrowerID {
		s.st.BorrowerID = app.BorrowerID
		changed = true
	}
	if app.BorrowerID == "" && app.Borrower != nil && app.Borrower.ID != "" && s.st.BorrowerID != app.Borrower.ID {
		s.st.BorrowerID = app.Borrower.ID
		changed = true
	}
	if app.CoBorrowerID != "" && s.st.CoBorrowerID != app.CoBorrowerID {
		s.st.CoBorrowerID = app.CoBorrowerID
		changed = true
	}
	if app.CoBorrowerID == "" && app.CoBorrower != nil && app.CoBorrower.ID != "" && s.st.CoBorrowerID != app.CoBorrower.ID {
		s.st.CoBorrowerID = app.CoBorrower.ID
		changed = true
	}
	if app.CoBorrower != nil && s.st.HasCoBorrower == nil {
		yes := true
		s.st.HasCoBorrower = &yes
		changed = true
	}
	if app.LoanPurpose != "" && s.st.LoanPurpose != app.LoanPurpose {
		s.st.LoanPurpose = app.LoanPurpose
		changed = true
	}
	if app.CurrentFormStep != "" && s.st.CurrentFormStep != app.CurrentFormStep {
		s.st.CurrentFormStep = app.CurrentFormStep
		changed = true
	}
	if !changed {
		return nil
	}
	return s.persist(ctx)
}

// Snapshot returns a copy of the persisted record for inspection.
func (s *Store) Snapshot() storage.FlowState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.st
	if s.st.HasCoBorrower != nil {
		v := *s.st.HasCoBorrower
		st.HasCoBorrower = &v
	}
	if s.st.DealProgress != nil {
		st.DealProgress = make(map[string]bool, len(s.st.DealProgress))
		for k, v := range s.st.DealProgress {
			st.DealProgress[k] = v
		}
	}
	if s.st.BorrowerProgress != nil {
		st.BorrowerProgress = make(map[string]bool, len(s.st.BorrowerProgress))
		for k, v := range s.st.BorrowerProgress {
			st.BorrowerProgress[k] = v
		}
	}
	return st
}

// Clear wipes both the cached and the persisted state, used when the user
// abandons the application or signs out.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = storage.FlowState{}
	if s.durable == nil {
		return nil
	}
	return s.durable.ClearFlowState(ctx)
}
