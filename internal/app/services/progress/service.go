// Package progress keeps the server's advisory completion summary roughly in
// step with the flow. Progress is display-only: a failed update never blocks
// navigation or a save, it is logged and dropped.
package progress

import (
	"context"

	"github.com/clearpathlending/intake/internal/app/metrics"
	"github.com/clearpathlending/intake/internal/app/state"
	"github.com/clearpathlending/intake/internal/backend"
	"github.com/clearpathlending/intake/pkg/logger"
)

// SectionPersonalInfo is the first sidebar section, marked incomplete when
// the application is created and complete once the profile step is saved.
const SectionPersonalInfo = "Section1a_PersonalInfo"

// API is the slice of the backend client this service uses.
type API interface {
	GetProgress(ctx context.Context, id string) (backend.Progress, error)
	UpdateProgressSection(ctx context.Context, id, section string, complete bool) error
}

// Service marks sections and pulls summaries.
type Service struct {
	api   API
	state *state.Store
	log   *logger.Logger
}

// NewService wires the progress service.
func NewService(api API, st *state.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("progress")
	}
	return &Service{api: api, state: st, log: log}
}

// MarkSection pushes one section flag to the server and mirrors it into the
// local state. Failures are logged and swallowed: progress is advisory.
func (s *Service) MarkSection(ctx context.Context, section string, complete bool) {
	id := s.state.DealID()
	if id == "" {
		s.log.WithField("section", section).Debug("no application yet, skipping progress mark")
		return
	}

	if err := s.api.UpdateProgressSection(ctx, id, section, complete); err != nil {
		metrics.RecordProgressMark(false)
		s.log.WithError(err).
			WithField("section", section).
			Warn("progress section update failed")
		return
	}
	metrics.RecordProgressMark(true)

	if err := s.state.UpdateBorrowerProgress(ctx, section, complete); err != nil {
		s.log.WithError(err).
			WithField("section", section).
			Warn("persist progress flag failed")
	}
}

// Pull fetches the server summary and mirrors its sections into local state,
// so a later offline resume still shows the last known completion. Unlike
// MarkSection the fetch error is returned: callers showing the sidebar decide
// whether a stale summary is acceptable.
func (s *Service) Pull(ctx context.Context) (backend.Progress, error) {
	id := s.state.DealID()
	if id == "" {
		return backend.Progress{}, nil
	}
	summary, err := s.api.GetProgress(ctx, id)
	if err != nil {
		return backend.Progress{}, err
	}
	for section, complete := range summary.Sections {
		if err := s.state.UpdateDealProgress(ctx, section, complete); err != nil {
			s.log.WithError(err).Warn("persist pulled progress failed")
			break
		}
	}
	return summary, nil
}
