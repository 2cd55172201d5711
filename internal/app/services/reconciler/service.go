// Package reconciler is the save pipeline for the intake flow. Each step
// screen runs the same sequence on submit: validate locally, create the
// account-and-application on the very first save, otherwise patch the server
// only when the form actually changed, mark progress best-effort, then
// advance the flow. A failed data save keeps the user on the step with one
// message and their edits intact.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clearpathlending/intake/internal/app/domain/flow"
	"github.com/clearpathlending/intake/internal/app/formtrack"
	"github.com/clearpathlending/intake/internal/app/forms"
	"github.com/clearpathlending/intake/internal/app/metrics"
	"github.com/clearpathlending/intake/internal/app/services/progress"
	"github.com/clearpathlending/intake/internal/app/state"
	"github.com/clearpathlending/intake/internal/app/storage"
	"github.com/clearpathlending/intake/internal/auth"
	"github.com/clearpathlending/intake/internal/backend"
	"github.com/clearpathlending/intake/pkg/logger"
)

// Phase is where a step session stands in its lifecycle.
type Phase string

const (
	// Loading: hydrating from the server, inputs not yet trustworthy.
	Loading Phase = "loading"
	// Ready: populated (or defaulted) and accepting edits.
	Ready Phase = "ready"
	// Submitting: a submit is in flight.
	Submitting Phase = "submitting"
	// Advanced: the submit succeeded and the flow moved on.
	Advanced Phase = "advanced"
	// ErrorShown: the submit failed; edits are intact and one message is
	// showing. The session never falls back to Loading from here.
	ErrorShown Phase = "error"
)

// ErrValidation marks a submit stopped by local validation; the field
// messages are on the session.
var ErrValidation = errors.New("validation failed")

// ErrNoApplication marks a save attempted on a step that cannot create an
// application when none exists yet.
var ErrNoApplication = errors.New("no application to save against")

// Form is one step screen's contract with the pipeline.
type Form interface {
	Step() flow.Step
	Section() string
	Populate(app *backend.Application)
	Validate() map[string]string
	Patch() backend.SavePatch
}

// Creator is implemented by the form whose first submit creates the borrower
// account and the application in one call.
type Creator interface {
	CreateRequest() backend.CreateRequest
}

// API is the slice of the backend client the pipeline uses.
type API interface {
	CreateBorrowerAndApplication(ctx context.Context, req backend.CreateRequest) (backend.CreateResponse, error)
	GetApplication(ctx context.Context, id string) (backend.Application, error)
	SaveApplication(ctx context.Context, id string, patch backend.SavePatch) (backend.Application, error)
}

// ProgressQueue decouples the pipeline from progress delivery.
type ProgressQueue interface {
	Enqueue(m progress.Mark)
}

// Session is one step screen's state: the form being edited, the phase, any
// validation or submit errors, and the change-tracking baseline.
type Session struct {
	Form        Form
	Phase       Phase
	FieldErrors map[string]string
	// Message is the single user-facing string shown after a failed submit.
	Message string

	tracker formtrack.Tracker
}

// Service runs the save pipeline. One instance serves the whole flow.
type Service struct {
	api      API
	state    *state.Store
	session  *auth.Session
	drafts   storage.DraftStore
	progress ProgressQueue
	log      *logger.Logger
}

// New wires the pipeline. progress may be nil when marks are unwanted
// (tests); drafts may be nil when the loan step is not in play.
func New(api API, st *state.Store, session *auth.Session, drafts storage.DraftStore, queue ProgressQueue, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reconciler")
	}
	return &Service{
		api:      api,
		state:    st,
		session:  session,
		drafts:   drafts,
		progress: queue,
		log:      log,
	}
}

// Load opens a step session. The application id is resolved URL parameter
// first, then whatever the state store carries. A missing id or token means
// there is nothing to fetch: the session is Ready with the form's defaults.
// Fetch failures never block the screen; a 401 is expected for fresh
// sessions and is swallowed, anything else is logged and the form stays on
// defaults.
func (s *Service) Load(ctx context.Context, form Form, urlApplicationID string) (*Session, error) {
	sess := &Session{Form: form, Phase: Loading}

	if urlApplicationID != "" {
		if err := s.state.SetDealID(ctx, urlApplicationID); err != nil {
			return nil, err
		}
	}
	// SetDealID is at most once: a link carrying a different id loses to the
	// stored one. Re-read so the fetch targets the same application every
	// subsequent save goes to.
	id := s.state.DealID()

	if id == "" || !s.session.IsAuthenticated(ctx) {
		sess.Phase = Ready
		return sess, nil
	}

	start := time.Now()
	app, err := s.api.GetApplication(ctx, id)
	metrics.RecordBackendCall("get_application", time.Since(start))
	if err != nil {
		if !backend.IsUnauthorized(err) {
			s.log.WithError(err).
				WithField("application_id", id).
				Warn("hydrate from server failed, continuing with defaults")
		}
		sess.Phase = Ready
		return sess, nil
	}

	if err := s.state.SyncFromAPI(ctx, app); err != nil {
		return nil, err
	}
	form.Populate(&app)
	if err := sess.tracker.Reset(form); err != nil {
		return nil, err
	}
	sess.Phase = Ready
	return sess, nil
}

// Submit runs the step's save-and-advance. It returns the step the flow
// moved to; on failure the session phase and message say what went wrong and
// the returned step is the current one.
func (s *Service) Submit(ctx context.Context, sess *Session) (flow.Step, error) {
	form := sess.Form
	current := form.Step()
	sess.Phase = Submitting
	sess.Message = ""
	sess.FieldErrors = nil

	if errs := form.Validate(); errs != nil {
		sess.Phase = Ready
		sess.FieldErrors = errs
		return current, ErrValidation
	}

	if s.state.DealID() == "" {
		if err := s.create(ctx, sess); err != nil {
			return current, err
		}
	} else if err := s.saveIfChanged(ctx, sess); err != nil {
		return current, err
	}

	if section := form.Section(); section != "" && s.progress != nil {
		s.progress.Enqueue(progress.Mark{Section: section, Complete: true})
	}

	next := flow.Next(current, s.state.FlowContext())
	if err := s.state.SetCurrentStep(ctx, next); err != nil {
		return current, err
	}
	sess.Phase = Advanced
	return next, nil
}

// create is the first-save path: one combined call builds the borrower
// account and the application, folding in any drafted loan figures.
func (s *Service) create(ctx context.Context, sess *Session) error {
	creator, ok := sess.Form.(Creator)
	if !ok {
		sess.Phase = ErrorShown
		sess.Message = backend.UserMessage(ErrNoApplication)
		return ErrNoApplication
	}

	req := creator.CreateRequest()
	req.LoanPurpose = string(s.state.LoanPurpose())
	s.foldLoanDraft(ctx, &req)

	start := time.Now()
	resp, err := s.api.CreateBorrowerAndApplication(ctx, req)
	metrics.RecordBackendCall("create", time.Since(start))
	if err != nil {
		metrics.RecordCreate(false)
		sess.Phase = ErrorShown
		sess.Message = backend.UserMessage(err)
		return err
	}
	metrics.RecordCreate(true)

	if err := s.persistCreate(ctx, sess, resp); err != nil {
		sess.Phase = ErrorShown
		sess.Message = backend.UserMessage(err)
		return err
	}

	// The personal-info section exists from this moment, incomplete until
	// the profile step is saved.
	if s.progress != nil {
		s.progress.Enqueue(progress.Mark{Section: progress.SectionPersonalInfo, Complete: false})
	}
	return nil
}

// persistCreate lands the create response locally. Any failure here leaves
// the session in ErrorShown: the server-side create succeeded but the client
// cannot continue without the tokens and ids.
func (s *Service) persistCreate(ctx context.Context, sess *Session, resp backend.CreateResponse) error {
	if err := s.session.StoreTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	if err := s.state.SetDealID(ctx, resp.Application.ID); err != nil {
		return err
	}
	if err := s.state.SyncFromAPI(ctx, resp.Application); err != nil {
		return err
	}
	if s.drafts != nil {
		if err := s.drafts.ClearDraft(ctx, forms.DraftKey); err != nil {
			s.log.WithError(err).Warn("clear loan draft failed")
		}
	}
	return sess.tracker.Reset(sess.Form)
}

// saveIfChanged patches the server only when the form differs from the
// baseline taken at load or last save. The patch always carries the
// nextFormStep hint so a resumed session lands on the right screen.
func (s *Service) saveIfChanged(ctx context.Context, sess *Session) error {
	changed, err := sess.tracker.HasChanged(sess.Form)
	if err != nil {
		return err
	}
	if !changed {
		metrics.RecordSave("suppressed")
		s.log.WithField("step", string(sess.Form.Step())).
			Debug("form unchanged, save suppressed")
		return nil
	}

	patch := sess.Form.Patch()
	patch.NextFormStep = string(flow.Next(sess.Form.Step(), s.state.FlowContext()))

	start := time.Now()
	app, err := s.api.SaveApplication(ctx, s.state.DealID(), patch)
	metrics.RecordBackendCall("save", time.Since(start))
	if err != nil {
		metrics.RecordSave("failed")
		sess.Phase = ErrorShown
		sess.Message = backend.UserMessage(err)
		return err
	}
	metrics.RecordSave("sent")

	if err := s.state.SyncFromAPI(ctx, app); err != nil {
		return err
	}
	return sess.tracker.Reset(sess.Form)
}

// AnswerCoBorrowerQuestion records the branch decision and advances. "No"
// pushes the position hint to the server without data so a resume skips the
// sub-flow; that push is tolerated failing since the answer is already
// persisted locally.
func (s *Service) AnswerCoBorrowerQuestion(ctx context.Context, yes bool) (flow.Step, error) {
	if err := s.state.SetHasCoBorrower(ctx, yes); err != nil {
		return flow.CoBorrowerQuestion, err
	}

	next := flow.Next(flow.CoBorrowerQuestion, s.state.FlowContext())

	if !yes && s.state.DealID() != "" {
		patch := backend.SavePatch{NextFormStep: string(next)}
		if _, err := s.api.SaveApplication(ctx, s.state.DealID(), patch); err != nil {
			s.log.WithError(err).Warn("push co-borrower answer failed")
		}
	}

	if err := s.state.SetCurrentStep(ctx, next); err != nil {
		return flow.CoBorrowerQuestion, err
	}
	return next, nil
}

// Back moves to the previous step without touching the server. Edits on the
// current screen are abandoned by design: backward navigation never saves.
func (s *Service) Back(ctx context.Context, current flow.Step) (flow.Step, error) {
	prev := flow.Previous(current, s.state.FlowContext())
	if err := s.state.SetCurrentStep(ctx, prev); err != nil {
		return current, err
	}
	return prev, nil
}

// SaveLoanDraft validates and parks the loan figures in session-scoped
// storage until the create call folds them in.
func (s *Service) SaveLoanDraft(ctx context.Context, form *forms.LoanDetails) error {
	if errs := form.Validate(); errs != nil {
		return ErrValidation
	}
	if err := s.state.SetLoanPurpose(ctx, form.Purpose); err != nil {
		return err
	}
	if s.drafts == nil {
		return nil
	}
	blob, err := form.EncodeDraft()
	if err != nil {
		return err
	}
	return s.drafts.SaveDraft(ctx, forms.DraftKey, blob)
}

// foldLoanDraft merges a parked loan draft into the create request.
func (s *Service) foldLoanDraft(ctx context.Context, req *backend.CreateRequest) {
	if s.drafts == nil {
		return
	}
	blob, ok, err := s.drafts.LoadDraft(ctx, forms.DraftKey)
	if err != nil || !ok {
		if err != nil {
			s.log.WithError(err).Warn("load loan draft failed")
		}
		return
	}
	draft, err := forms.DecodeDraft(blob)
	if err != nil {
		s.log.WithError(err).Warn("decode loan draft failed")
		return
	}
	draft.FoldIntoCreate(req)
}
