package locks

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestAcquireReleaseReacquire(t *testing.T) {
	dataRoot := t.TempDir()
	sessionID := uuid.New()

	lock, err := Acquire(dataRoot, sessionID)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	lock2, err := Acquire(dataRoot, sessionID)
	if err != nil {
		t.Fatalf("re-Acquire after release: %v", err)
	}
	if err := lock2.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestAcquireCreatesSessionDirAndLockFile(t *testing.T) {
	dataRoot := t.TempDir()
	sessionID := uuid.New()

	lock, err := Acquire(dataRoot, sessionID)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	lockPath := filepath.Join(SessionRoot(dataRoot, sessionID), ".lock")
	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("lock file not created: %v", err)
	}
}

func TestAcquireSerializesSameSession(t *testing.T) {
	dataRoot := t.TempDir()
	sessionID := uuid.New()

	lock, err := Acquire(dataRoot, sessionID)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	var mu sync.Mutex
	var order []string
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l, err := Acquire(dataRoot, sessionID)
		if err != nil {
			t.Errorf("second Acquire: %v", err)
			return
		}
		defer l.Release()
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
	}()

	// The goroutine cannot append until it holds the lock, which it cannot
	// get before this release.
	mu.Lock()
	order = append(order, "first")
	mu.Unlock()
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	wg.Wait()

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("order = %v, want [first second]", order)
	}
}

func TestAcquireIndependentSessionsDoNotBlock(t *testing.T) {
	dataRoot := t.TempDir()

	lockA, err := Acquire(dataRoot, uuid.New())
	if err != nil {
		t.Fatalf("Acquire A: %v", err)
	}
	defer lockA.Release()

	// A second session's lock must be grantable while A is held.
	lockB, err := Acquire(dataRoot, uuid.New())
	if err != nil {
		t.Fatalf("Acquire B: %v", err)
	}
	defer lockB.Release()
}

func TestReleaseNilIsSafe(t *testing.T) {
	var lock *SessionLock
	if err := lock.Release(); err != nil {
		t.Errorf("Release on nil lock: %v", err)
	}
}

func TestPathLayout(t *testing.T) {
	sessionID := uuid.MustParse("3d1d2c3e-0000-0000-0000-000000000001")
	root := SessionRoot("/data", sessionID)
	if root != filepath.Join("/data", "sessions", sessionID.String()) {
		t.Errorf("SessionRoot = %q", root)
	}
	if UploadsDir("/data", sessionID) != filepath.Join(root, "uploads") {
		t.Errorf("UploadsDir = %q", UploadsDir("/data", sessionID))
	}
	if StoreDir("/data", sessionID) != filepath.Join(root, "graph") {
		t.Errorf("StoreDir = %q", StoreDir("/data", sessionID))
	}
}
