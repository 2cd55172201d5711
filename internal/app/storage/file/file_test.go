package file

import (
	"context"
	"testing"

	"github.com/clearpathlending/intake/internal/app/storage"
)

func TestStore_FlowStateRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, ok, err := store.LoadFlowState(context.Background()); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	yes := true
	in := storage.FlowState{
		DealID:          "1042",
		BorrowerID:      "77",
		CurrentFormStep: "borrower-info-2",
		HasCoBorrower:   &yes,
		BorrowerProgress: map[string]bool{
			"Section1a_PersonalInfo": true,
		},
	}
	if err := store.SaveFlowState(context.Background(), in); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.LoadFlowState(context.Background())
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.DealID != "1042" || got.CurrentFormStep != "borrower-info-2" {
		t.Fatalf("unexpected state: %#v", got)
	}
	if got.HasCoBorrower == nil || !*got.HasCoBorrower {
		t.Fatalf("co-borrower flag lost: %#v", got.HasCoBorrower)
	}
	if !got.BorrowerProgress["Section1a_PersonalInfo"] {
		t.Fatalf("progress flag lost: %#v", got.BorrowerProgress)
	}
}

func TestStore_ReadAfterWriteVisibility(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	// The original client needed an artificial delay between writing and
	// reading its durable storage; the file store must not.
	for i := 0; i < 20; i++ {
		st := storage.FlowState{DealID: "1", CurrentFormStep: "borrower-info-1"}
		if err := store.SaveFlowState(context.Background(), st); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		got, ok, err := store.LoadFlowState(context.Background())
		if err != nil || !ok || got.DealID != "1" {
			t.Fatalf("iteration %d: ok=%v err=%v state=%#v", i, ok, err, got)
		}
	}
}

func TestStore_TokensClear(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.SaveTokens(context.Background(), storage.Tokens{Access: "a", Refresh: "r"}); err != nil {
		t.Fatalf("save tokens: %v", err)
	}
	got, ok, err := store.LoadTokens(context.Background())
	if err != nil || !ok || got.Access != "a" {
		t.Fatalf("load tokens: ok=%v err=%v tokens=%#v", ok, err, got)
	}
	if err := store.ClearTokens(context.Background()); err != nil {
		t.Fatalf("clear tokens: %v", err)
	}
	if _, ok, _ := store.LoadTokens(context.Background()); ok {
		t.Fatal("tokens survived clear")
	}
	// Clearing twice must not fail.
	if err := store.ClearTokens(context.Background()); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
