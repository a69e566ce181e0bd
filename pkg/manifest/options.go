package manifest

import (
	"os"
	"time"
)

// Option is a functional option for configuring a Store.
type Option func(*options)

type options struct {
	fileMode os.FileMode
	now      func() time.Time
}

// WithFileMode sets the file permissions for the ledger. Default is 0644.
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) {
		o.fileMode = mode
	}
}

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
