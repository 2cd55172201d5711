// Package formtrack decides whether a step's form values differ from the
// last-persisted snapshot. It is the mechanism that suppresses redundant
// saves when a user navigates forward without editing.
package formtrack

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snapshot is an opaque immutable copy of form values taken at load time.
// Comparison is structural: two values are equal when their canonical JSON
// encodings match, which makes the snapshot independent of pointer identity.
type Snapshot []byte

// Take captures the current values.
func Take(v any) (Snapshot, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("snapshot form values: %w", err)
	}
	return Snapshot(data), nil
}

// Changed reports whether current differs structurally from the snapshot.
func Changed(current any, s Snapshot) (bool, error) {
	data, err := json.Marshal(current)
	if err != nil {
		return false, fmt.Errorf("encode form values: %w", err)
	}
	return !bytes.Equal(data, []byte(s)), nil
}

// Tracker holds the baseline for one step screen. The zero value has no
// baseline and reports every value as changed, which matches the
// "save unconditionally when nothing was ever loaded" behavior.
type Tracker struct {
	baseline Snapshot
}

// Reset replaces the baseline so the very next comparison reports unchanged.
// Called after a successful load or save.
func (t *Tracker) Reset(v any) error {
	snap, err := Take(v)
	if err != nil {
		return err
	}
	t.baseline = snap
	return nil
}

// HasChanged compares current values against the baseline.
func (t *Tracker) HasChanged(v any) (bool, error) {
	if t.baseline == nil {
		return true, nil
	}
	return Changed(v, t.baseline)
}
