package state

import (
	"context"
	"strings"
	"testing"

	"github.com/clearpathlending/intake/internal/app/domain/flow"
	"github.com/clearpathlending/intake/internal/app/storage"
	"github.com/clearpathlending/intake/internal/app/storage/memory"
	"github.com/clearpathlending/intake/internal/backend"
	"github.com/clearpathlending/intake/pkg/logger"
	"github.com/clearpathlending/intake/pkg/testutil"
)

func quietLogger() *logger.Logger {
	return testutil.QuietLogger("state-test")
}

func TestHydrate_URLParameterOverridesStoredID(t *testing.T) {
	ctx := context.Background()
	durable := memory.New()
	if err := durable.SaveFlowState(ctx, storage.FlowState{
		DealID:          "old-100",
		CurrentFormStep: "review",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s, err := Hydrate(ctx, durable, "new-200", quietLogger())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if s.DealID() != "new-200" {
		t.Fatalf("url id did not win: %q", s.DealID())
	}
	// Only the id is replaced; the resumed position survives.
	if s.CurrentStep() != flow.Review {
		t.Fatalf("step lost during override: %q", s.CurrentStep())
	}

	// The override must be persisted.
	st, ok, err := durable.LoadFlowState(ctx)
	if err != nil || !ok || st.DealID != "new-200" {
		t.Fatalf("override not persisted: ok=%v err=%v state=%#v", ok, err, st)
	}
}

func TestSetDealID_AtMostOnce(t *testing.T) {
	ctx := context.Background()
	durable := memory.New()
	s, err := Hydrate(ctx, durable, "", quietLogger())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if err := s.SetDealID(ctx, "first"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetDealID(ctx, "second"); err != nil {
		t.Fatalf("conflicting set returned error: %v", err)
	}
	if s.DealID() != "first" {
		t.Fatalf("conflicting set was applied: %q", s.DealID())
	}
}

func TestSetDealID_ConflictIsLogged(t *testing.T) {
	ctx := context.Background()
	log, buf := testutil.CaptureLogger("state-test")
	s, err := Hydrate(ctx, memory.New(), "first", log)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if err := s.SetDealID(ctx, "second"); err != nil {
		t.Fatalf("conflicting set returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "ignoring conflicting value") {
		t.Fatalf("conflict not logged: %q", buf.String())
	}
}

func TestMutationsPersistImmediately(t *testing.T) {
	ctx := context.Background()
	durable := memory.New()
	s, err := Hydrate(ctx, durable, "", quietLogger())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if err := s.SetCurrentStep(ctx, flow.BorrowerInfo2); err != nil {
		t.Fatalf("set step: %v", err)
	}
	if err := s.UpdateBorrowerProgress(ctx, "Section1a_PersonalInfo", true); err != nil {
		t.Fatalf("progress: %v", err)
	}

	st, ok, err := durable.LoadFlowState(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if st.CurrentFormStep != "borrower-info-2" {
		t.Fatalf("step not persisted: %#v", st)
	}
	if !st.BorrowerProgress["Section1a_PersonalInfo"] {
		t.Fatalf("progress not persisted: %#v", st.BorrowerProgress)
	}
}

func TestSyncFromAPI_AbsentFieldsUntouched(t *testing.T) {
	ctx := context.Background()
	durable := memory.New()
	s, err := Hydrate(ctx, durable, "", quietLogger())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if err := s.SetDealID(ctx, "deal-1"); err != nil {
		t.Fatalf("set deal: %v", err)
	}
	if err := s.SetBorrowerID(ctx, "bor-1"); err != nil {
		t.Fatalf("set borrower: %v", err)
	}
	if err := s.SetLoanPurpose(ctx, "Purchase"); err != nil {
		t.Fatalf("set purpose: %v", err)
	}

	// Server response carries a new step and a co-borrower, nothing else.
	err = s.SyncFromAPI(ctx, backend.Application{
		ID:              "deal-1",
		CurrentFormStep: "co-borrower-info-1",
		CoBorrowerID:    "cob-9",
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	if s.CurrentStep() != flow.CoBorrowerInfo1 {
		t.Fatalf("step not merged: %q", s.CurrentStep())
	}
	if s.CoBorrowerID() != "cob-9" {
		t.Fatalf("co-borrower id not merged: %q", s.CoBorrowerID())
	}
	if s.BorrowerID() != "bor-1" {
		t.Fatalf("absent field was clobbered: %q", s.BorrowerID())
	}
	if s.LoanPurpose() != "Purchase" {
		t.Fatalf("absent field was clobbered: %q", s.LoanPurpose())
	}
}

func TestSyncFromAPI_KeepsLocalIDOnConflict(t *testing.T) {
	ctx := context.Background()
	s, err := Hydrate(ctx, memory.New(), "local-1", quietLogger())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if err := s.SyncFromAPI(ctx, backend.Application{ID: "server-2"}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if s.DealID() != "local-1" {
		t.Fatalf("conflicting server id was applied: %q", s.DealID())
	}
}

func TestCurrentStep_UnknownValueResolvesToEntry(t *testing.T) {
	ctx := context.Background()
	durable := memory.New()
	if err := durable.SaveFlowState(ctx, storage.FlowState{
		DealID:          "1",
		CurrentFormStep: "retired-step-name",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := Hydrate(ctx, durable, "", quietLogger())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if s.CurrentStep() != flow.BorrowerInfo1 {
		t.Fatalf("unknown step did not resolve to entry: %q", s.CurrentStep())
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	durable := memory.New()
	s, err := Hydrate(ctx, durable, "deal-1", quietLogger())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s.DealID() != "" {
		t.Fatalf("state survived clear: %q", s.DealID())
	}
	if _, ok, _ := durable.LoadFlowState(ctx); ok {
		t.Fatal("durable record survived clear")
	}
}
