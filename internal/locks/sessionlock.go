package locks

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// SessionLock serializes knowledge-store mutations for one session. It is
// backed by an exclusive file lock on the session directory, so it holds
// across independent worker processes sharing the same data volume, not just
// goroutines. Acquisition blocks until the holder releases; there is no
// timeout.
type SessionLock struct {
	fl *flock.Flock
}

// Acquire blocks until the session's lock is free and returns the held handle.
// Callers must Release on every exit path, typically via defer.
func Acquire(dataRoot string, sessionID uuid.UUID) (*SessionLock, error) {
	dir := SessionRoot(dataRoot, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	fl := flock.New(filepath.Join(dir, ".lock"))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	return &SessionLock{fl: fl}, nil
}

// Release unlocks and closes the lock file. Safe to call once per Acquire.
func (l *SessionLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

// SessionRoot is the per-session directory under the data root. The uploads
// dir, the knowledge store dir and the lock file all live beneath it.
func SessionRoot(dataRoot string, sessionID uuid.UUID) string {
	return filepath.Join(dataRoot, "sessions", sessionID.String())
}

func UploadsDir(dataRoot string, sessionID uuid.UUID) string {
	return filepath.Join(SessionRoot(dataRoot, sessionID), "uploads")
}

func StoreDir(dataRoot string, sessionID uuid.UUID) string {
	return filepath.Join(SessionRoot(dataRoot, sessionID), "graph")
}
