package lock

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

const (
	testLockTimeout  = 200 * time.Millisecond
	veryShortTimeout = 20 * time.Millisecond
)

func TestAcquireInstanceLock_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.lock")

	l, err := AcquireInstanceLock(path, testLockTimeout)
	if err != nil {
		t.Fatalf("AcquireInstanceLock failed: %v", err)
	}
	if l.Path != path {
		t.Errorf("expected path %s, got %s", path, l.Path)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}

	// Reacquirable once released.
	again, err := AcquireInstanceLock(path, testLockTimeout)
	if err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
	_ = again.Release()
}

func TestAcquireInstanceLock_EmptyPath(t *testing.T) {
	_, err := AcquireInstanceLock("", testLockTimeout)
	if !errors.Is(err, ErrPathRequired) {
		t.Errorf("expected ErrPathRequired, got %v", err)
	}
}

func TestAcquireInstanceLock_Contention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.lock")

	first, err := AcquireInstanceLock(path, testLockTimeout)
	if err != nil {
		t.Fatalf("initial acquire failed: %v", err)
	}
	defer first.Release()

	start := time.Now()
	_, err = AcquireInstanceLock(path, veryShortTimeout)
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < veryShortTimeout {
		t.Errorf("returned after %v, before the %v timeout", elapsed, veryShortTimeout)
	}
}

func TestAcquireInstanceLock_WaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.lock")

	first, err := AcquireInstanceLock(path, testLockTimeout)
	if err != nil {
		t.Fatalf("initial acquire failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(30 * time.Millisecond)
		_ = first.Release()
	}()

	second, err := AcquireInstanceLock(path, time.Second)
	if err != nil {
		t.Fatalf("expected to acquire after release, got %v", err)
	}
	_ = second.Release()
	wg.Wait()
}

func TestInstanceLock_NilRelease(t *testing.T) {
	var l *InstanceLock
	if err := l.Release(); err != nil {
		t.Errorf("nil Release should be a no-op, got %v", err)
	}
}
