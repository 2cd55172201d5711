package formtrack

import "testing"

type fixture struct {
	FirstName string            `json:"firstName"`
	Phone     string            `json:"phone"`
	Consents  map[string]bool   `json:"consents"`
	Previous  []string          `json:"previous"`
}

func sample() fixture {
	return fixture{
		FirstName: "Jane",
		Phone:     "5551234567",
		Consents:  map[string]bool{"terms": true},
		Previous:  []string{"12 Old Rd"},
	}
}

func TestTracker_UnchangedAfterReset(t *testing.T) {
	v := sample()
	var tr Tracker
	if err := tr.Reset(v); err != nil {
		t.Fatalf("reset: %v", err)
	}
	changed, err := tr.HasChanged(v)
	if err != nil {
		t.Fatalf("has changed: %v", err)
	}
	if changed {
		t.Fatal("freshly reset tracker reported a change")
	}
}

func TestTracker_DetectsSingleFieldMutation(t *testing.T) {
	v := sample()
	var tr Tracker
	if err := tr.Reset(v); err != nil {
		t.Fatalf("reset: %v", err)
	}

	mutations := []func(*fixture){
		func(f *fixture) { f.FirstName = "Janet" },
		func(f *fixture) { f.Phone = "5550000000" },
		func(f *fixture) { f.Consents["terms"] = false },
		func(f *fixture) { f.Previous = append(f.Previous, "9 New St") },
	}
	for i, mutate := range mutations {
		current := sample()
		current.Consents = map[string]bool{"terms": true}
		current.Previous = []string{"12 Old Rd"}
		mutate(&current)

		changed, err := tr.HasChanged(current)
		if err != nil {
			t.Fatalf("mutation %d: %v", i, err)
		}
		if !changed {
			t.Fatalf("mutation %d went undetected", i)
		}
	}
}

func TestTracker_StructuralNotReferenceEquality(t *testing.T) {
	var tr Tracker
	if err := tr.Reset(sample()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	// A distinct but structurally identical value must compare equal.
	changed, err := tr.HasChanged(sample())
	if err != nil {
		t.Fatalf("has changed: %v", err)
	}
	if changed {
		t.Fatal("structurally equal value reported as changed")
	}
}

func TestTracker_ZeroValueReportsChanged(t *testing.T) {
	var tr Tracker
	changed, err := tr.HasChanged(sample())
	if err != nil {
		t.Fatalf("has changed: %v", err)
	}
	if !changed {
		t.Fatal("tracker with no baseline must report changed")
	}
}
