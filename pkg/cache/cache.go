package cache

import (
	"context"
	"os"
)

// Ensure makes sure target exists by running fn if it doesn't.
// The lock keeps concurrent callers, in this or other processes, from running
// fn for the same target twice.
func Ensure(ctx context.Context, target string, fn func() error) error {
	if exists(target) {
		return nil
	}

	unlock, err := Lock(ctx, target)
	if err != nil {
		return err
	}
	defer unlock()

	// It might have been created while we waited for the lock.
	if exists(target) {
		return nil
	}

	return fn()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
