// intakectl drives the 1003 intake flow end to end from the terminal. It is
// the demo harness for the client core: with --mock it spins up the
// in-process loan-origination stand-in and walks a scripted application
// through every step; against a real API it reports where a resumed session
// stands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http/httptest"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/clearpathlending/intake/internal/app"
	"github.com/clearpathlending/intake/internal/app/domain/borrower"
	"github.com/clearpathlending/intake/internal/app/domain/deal"
	"github.com/clearpathlending/intake/internal/app/domain/flow"
	"github.com/clearpathlending/intake/internal/app/forms"
	"github.com/clearpathlending/intake/internal/app/services/reconciler"
	"github.com/clearpathlending/intake/internal/app/storage/file"
	"github.com/clearpathlending/intake/internal/config"
	"github.com/clearpathlending/intake/internal/mockapi"
	"github.com/clearpathlending/intake/pkg/logger"
)

func main() {
	mock := flag.Bool("mock", false, "run against an in-process mock API")
	appID := flag.String("application", "", "application id from an invite link")
	stateDir := flag.String("state-dir", "", "override the durable state directory")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	log := logger.NewDefault("intakectl")
	cfg := config.LoadOrDefault()
	if *stateDir != "" {
		cfg.Storage.Dir = *stateDir
	}

	if err := run(cfg, log, *mock, *appID); err != nil {
		log.WithError(err).Error("intakectl failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger, mock bool, urlAppID string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores := app.Stores{}
	if mock {
		server := httptest.NewServer(mockapi.NewServer(log))
		defer server.Close()
		cfg.API.BaseURL = server.URL + "/api/v1"
		log.WithField("url", cfg.API.BaseURL).Info("mock API started")
	} else {
		durable, err := file.New(cfg.Storage.Dir)
		if err != nil {
			return fmt.Errorf("open state directory: %w", err)
		}
		stores.State = durable
		stores.Tokens = durable
	}

	application, err := app.New(ctx, cfg, stores, app.Options{URLApplicationID: urlAppID}, log)
	if err != nil {
		return err
	}
	if err := application.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := application.Stop(stopCtx); err != nil {
			log.WithError(err).Warn("shutdown incomplete")
		}
	}()

	if mock {
		return walkFlow(ctx, application, log)
	}

	return report(ctx, application, log)
}

// report prints where a resumed session stands without changing anything.
func report(ctx context.Context, a *app.Application, log *logger.Logger) error {
	snap := a.State.Snapshot()
	if snap.DealID == "" {
		log.Info("no application in progress")
		return nil
	}
	log.WithField("application_id", snap.DealID).
		WithField("step", string(a.State.CurrentStep())).
		Info("resumed session")

	if !a.Auth.IsAuthenticated(ctx) {
		log.Warn("stored token expired; progress unavailable until next sign-in")
		return nil
	}
	summary, err := a.Progress.Pull(ctx)
	if err != nil {
		return fmt.Errorf("pull progress: %w", err)
	}
	log.WithField("percent", summary.ProgressPercentage).
		WithField("next_section", summary.NextIncompleteSection).
		Info("server progress")
	return nil
}

// walkFlow scripts a complete purchase application against the mock.
func walkFlow(ctx context.Context, a *app.Application, log *logger.Logger) error {
	rec := a.Reconciler

	if err := rec.SaveLoanDraft(ctx, &forms.LoanDetails{
		Purpose:       deal.PurposePurchase,
		PurchasePrice: 400000,
		DownPayment:   80000,
		LoanAmount:    320000,
	}); err != nil {
		return fmt.Errorf("draft loan figures: %w", err)
	}

	contact := &forms.BorrowerContact{
		FirstName:          "Jane",
		LastName:           "Doe",
		Email:              "jane@example.com",
		Phone:              "(555) 123-4567",
		PhoneType:          borrower.PhoneMobile,
		RequireCredentials: true,
		Password:           "correct-horse-battery",
		ConfirmPassword:    "correct-horse-battery",
	}
	if err := submitStep(ctx, a, contact, log); err != nil {
		return err
	}

	profile := &forms.BorrowerProfile{
		MaritalStatus:    borrower.Married,
		AddressText:      "123 Main St, Springfield, IL 62704",
		AcceptTerms:      true,
		ConsentToContact: true,
	}
	if err := submitStep(ctx, a, profile, log); err != nil {
		return err
	}

	next, err := rec.AnswerCoBorrowerQuestion(ctx, true)
	if err != nil {
		return fmt.Errorf("answer co-borrower question: %w", err)
	}
	log.WithField("step", string(next)).Info("co-borrower: yes")

	coContact := &forms.CoBorrowerContact{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Phone:     "(555) 987-6543",
	}
	if err := submitStep(ctx, a, coContact, log); err != nil {
		return err
	}

	coProfile := &forms.CoBorrowerProfile{
		MaritalStatus: borrower.Married,
		LiveTogether:  true,
	}
	if err := submitStep(ctx, a, coProfile, log); err != nil {
		return err
	}

	summary, err := a.Progress.Pull(ctx)
	if err != nil {
		return fmt.Errorf("pull progress: %w", err)
	}
	log.WithField("application_id", a.State.DealID()).
		WithField("step", string(a.State.CurrentStep())).
		WithField("percent", summary.ProgressPercentage).
		Info("flow complete through the co-borrower sub-flow")

	for _, section := range flow.Sections(a.State.CurrentStep()) {
		log.WithField("section", section.ID).
			WithField("state", section.State.String()).
			Info("sidebar")
	}
	return nil
}

func submitStep(ctx context.Context, a *app.Application, form reconciler.Form, log *logger.Logger) error {
	sess, err := a.Reconciler.Load(ctx, form, "")
	if err != nil {
		return fmt.Errorf("load %s: %w", form.Step(), err)
	}
	next, err := a.Reconciler.Submit(ctx, sess)
	if err != nil {
		if errors.Is(err, reconciler.ErrValidation) {
			for field, msg := range sess.FieldErrors {
				log.WithField("field", field).Warn(msg)
			}
		}
		return fmt.Errorf("submit %s: %w", form.Step(), err)
	}
	log.WithField("from", string(form.Step())).
		WithField("to", string(next)).
		Info("step saved")
	return nil
}
