// Package file implements the durable storage interfaces on top of JSON
// files in a directory. Writes go through a temp file and rename so a crash
// mid-write never leaves a torn record, and reads observe writes immediately.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/clearpathlending/intake/internal/app/storage"
)

const (
	stateFile  = "application-state.json"
	tokensFile = "tokens.json"
)

// Store persists records under a directory, one file per record.
type Store struct {
	mu  sync.Mutex
	dir string
}

var _ storage.StateStore = (*Store)(nil)
var _ storage.TokenStore = (*Store)(nil)

// New creates the directory when missing and returns the store.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) LoadFlowState(_ context.Context) (storage.FlowState, bool, error) {
	var st storage.FlowState
	ok, err := s.read(stateFile, &st)
	return st, ok, err
}

func (s *Store) SaveFlowState(_ context.Context, st storage.FlowState) error {
	return s.write(stateFile, st)
}

func (s *Store) ClearFlowState(_ context.Context) error {
	return s.remove(stateFile)
}

func (s *Store) LoadTokens(_ context.Context) (storage.Tokens, bool, error) {
	var t storage.Tokens
	ok, err := s.read(tokensFile, &t)
	return t, ok, err
}

func (s *Store) SaveTokens(_ context.Context, t storage.Tokens) error {
	return s.write(tokensFile, t)
}

func (s *Store) ClearTokens(_ context.Context) error {
	return s.remove(tokensFile)
}

func (s *Store) read(name string, target any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) write(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

func (s *Store) remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
