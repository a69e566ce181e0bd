// Package cache serialises work on shared filesystem paths.
// A path is locked by creating "<path>.lock" holding the owner's timestamp and PID.
package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const (
	retryInterval = 100 * time.Millisecond
	waitInterval  = 200 * time.Millisecond
)

// Lock attempts to lock the given path (file or folder) by creating a .lock file.
// If the lock exists and its owner PID is alive, Lock waits until it is released
// or ctx is done. A lock left behind by a dead process is removed and taken over.
// It returns a function that releases the lock.
func Lock(ctx context.Context, target string) (func() error, error) {
	lockFile := target + ".lock"

	if err := os.MkdirAll(filepath.Dir(lockFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent dir for lock: %w", err)
	}

	for {
		unlock, err := tryCreate(lockFile)
		if err == nil {
			return unlock, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}

		wait, err := inspect(lockFile)
		if err != nil {
			return nil, err
		}
		if wait == 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for lock on %s: %w", target, ctx.Err())
		case <-time.After(wait):
		}
	}
}

// tryCreate creates the lock file exclusively and records the owner.
func tryCreate(lockFile string) (func() error, error) {
	f, err := os.OpenFile(lockFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}

	content := fmt.Sprintf("%s %d", time.Now().Format(time.RFC3339), os.Getpid())
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(lockFile)
		return nil, fmt.Errorf("failed to write to lock file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(lockFile)
		return nil, fmt.Errorf("failed to write to lock file: %w", err)
	}

	return func() error {
		return os.Remove(lockFile)
	}, nil
}

// inspect looks at an existing lock file and decides how long to wait before
// retrying. A zero duration means the lock was stale or vanished and the
// caller should retry immediately.
func inspect(lockFile string) (time.Duration, error) {
	content, err := os.ReadFile(lockFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return retryInterval, nil
	}

	pid, ok := ownerPID(string(content))
	if !ok {
		// Corrupt or half-written lock. Treat as stale.
		os.Remove(lockFile)
		return 0, nil
	}

	if isPidAlive(pid) {
		return waitInterval, nil
	}

	// os.Remove may fail if another waiter got there first. That's fine.
	os.Remove(lockFile)
	return 0, nil
}

// ownerPID parses the PID from "<timestamp> <pid>".
func ownerPID(content string) (int, bool) {
	parts := strings.Fields(content)
	if len(parts) < 2 {
		return 0, false
	}
	pid, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, false
	}
	return pid, true
}

func isPidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 checks existence without delivering anything.
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}

	if errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone) {
		return false
	}

	// EPERM: the process exists but belongs to someone else.
	return true
}
