package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/clearpathlending/intake/internal/app/services/progress"
	"github.com/clearpathlending/intake/internal/app/services/reconciler"
	"github.com/clearpathlending/intake/internal/app/state"
	"github.com/clearpathlending/intake/internal/app/storage"
	"github.com/clearpathlending/intake/internal/app/storage/memory"
	"github.com/clearpathlending/intake/internal/app/system"
	"github.com/clearpathlending/intake/internal/auth"
	"github.com/clearpathlending/intake/internal/backend"
	"github.com/clearpathlending/intake/internal/config"
	"github.com/clearpathlending/intake/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to a
// shared in-memory implementation, which gives tests and the demo a working
// setup with no filesystem.
type Stores struct {
	State  storage.StateStore
	Tokens storage.TokenStore
	Drafts storage.DraftStore
}

// Options are the knobs New accepts beyond configuration.
type Options struct {
	// URLApplicationID is the application id from the inbound link, if any.
	// It wins over whatever the durable state carries.
	URLApplicationID string

	// HTTPClient overrides the default client, used by tests to point at an
	// httptest server.
	HTTPClient *http.Client
}

// Application ties the intake services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	State      *state.Store
	Auth       *auth.Session
	Backend    *backend.Client
	Progress   *progress.Service
	Dispatcher *progress.Dispatcher
	Reconciler *reconciler.Service
}

// New builds a fully initialised application.
func New(ctx context.Context, cfg *config.Config, stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.NewDefault("app")
	}
	log.SetLevel(cfg.Log.Level)

	mem := memory.New()
	if stores.State == nil {
		stores.State = mem
	}
	if stores.Tokens == nil {
		stores.Tokens = mem
	}
	if stores.Drafts == nil {
		stores.Drafts = mem
	}

	manager := system.NewManager()

	session := auth.NewSession(stores.Tokens, log)

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second}
	}
	client, err := backend.NewClient(httpClient, cfg.API.BaseURL, session, log)
	if err != nil {
		return nil, fmt.Errorf("configure backend client: %w", err)
	}

	st, err := state.Hydrate(ctx, stores.State, opts.URLApplicationID, log)
	if err != nil {
		return nil, fmt.Errorf("hydrate flow state: %w", err)
	}

	progressService := progress.NewService(client, st, log)
	dispatcher := progress.NewDispatcher(progressService, log)
	if err := manager.Register(dispatcher); err != nil {
		return nil, fmt.Errorf("register %s: %w", dispatcher.Name(), err)
	}

	rec := reconciler.New(client, st, session, stores.Drafts, dispatcher, log)

	return &Application{
		manager:    manager,
		log:        log,
		State:      st,
		Auth:       session,
		Backend:    client,
		Progress:   progressService,
		Dispatcher: dispatcher,
		Reconciler: rec,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
