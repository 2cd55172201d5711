// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"bytes"
	"context"
	"sync"

	"github.com/clearpathlending/intake/pkg/logger"
)

// StaticTokenSource is a test implementation of backend.TokenSource that
// always returns the same token.
type StaticTokenSource string

// Token implements backend.TokenSource.
func (s StaticTokenSource) Token(context.Context) (string, bool) {
	return string(s), s != ""
}

// QuietLogger returns a logger whose output is discarded, for tests that
// exercise warn/error paths on purpose.
func QuietLogger(component string) *logger.Logger {
	log := logger.NewDefault(component)
	log.SetOutput(&bytes.Buffer{})
	return log
}

// CaptureLogger returns a logger writing into the returned buffer so tests
// can assert on emitted lines.
func CaptureLogger(component string) (*logger.Logger, *SafeBuffer) {
	buf := &SafeBuffer{}
	log := logger.NewDefault(component)
	log.SetOutput(buf)
	return log, buf
}

// SafeBuffer is a bytes.Buffer safe for concurrent writers, needed because
// the progress dispatcher logs from its own goroutine.
type SafeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
