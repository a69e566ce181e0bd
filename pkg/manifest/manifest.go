// Package manifest keeps a JSON ledger of files fetched into the data directory.
// The ledger is loaded lazily on first access and written atomically on Save.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry records one completed fetch.
type Entry struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Expected  int64     `json:"expected,omitempty"`
	Complete  bool      `json:"complete"`
	Extracted []string  `json:"extracted,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Ledger is the on-disk document.
type Ledger struct {
	Entries []Entry `json:"entries"`
}

// Store provides concurrent access to a Ledger file.
// Mutable
type Store struct {
	path   string
	data   *Ledger
	loaded bool
	dirty  bool
	mu     sync.RWMutex
	opts   *options
}

// Open returns a Store for the ledger at path. Nothing is read until first use.
func Open(path string, opts ...Option) *Store {
	s := &Store{
		path: path,
		opts: &options{
			fileMode: 0644,
			now:      time.Now,
		},
	}
	for _, opt := range opts {
		opt(s.opts)
	}
	return s
}

// Path returns the ledger file location.
func (s *Store) Path() string { return s.path }

// Record adds e to the ledger, replacing any earlier entry for the same path.
// A missing ID or timestamp is filled in. The ledger is marked dirty but not saved.
func (s *Store) Record(e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(); err != nil {
		return Entry{}, err
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.FetchedAt.IsZero() {
		e.FetchedAt = s.opts.now().UTC()
	}

	replaced := false
	for i := range s.data.Entries {
		if s.data.Entries[i].Path == e.Path {
			s.data.Entries[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		s.data.Entries = append(s.data.Entries, e)
	}
	s.dirty = true
	return e, nil
}

// Entries returns a copy of all ledger entries in recording order.
func (s *Store) Entries() ([]Entry, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.data.Entries...), nil
}

// Lookup returns the most recent entry fetched from url.
func (s *Store) Lookup(url string) (Entry, bool, error) {
	entries, err := s.Entries()
	if err != nil {
		return Entry{}, false, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].URL == url {
			return entries[i], true, nil
		}
	}
	return Entry{}, false, nil
}

// Save writes the ledger to disk if it has been modified.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty || !s.loaded {
		return nil
	}
	return s.saveLocked()
}

// Reload discards unsaved changes and reads the file again.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	s.dirty = false
	s.data = nil
	return s.loadLocked()
}

// IsDirty returns true if the ledger has unsaved changes.
func (s *Store) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *Store) load() error {
	s.mu.RLock()
	if s.loaded {
		s.mu.RUnlock()
		return nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLoadedLocked()
}

// Must be called with write lock held.
func (s *Store) ensureLoadedLocked() error {
	if s.loaded {
		return nil
	}
	return s.loadLocked()
}

// Must be called with write lock held.
func (s *Store) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = &Ledger{}
			s.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	var ledger Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return fmt.Errorf("failed to unmarshal manifest %s: %w", s.path, err)
	}

	s.data = &ledger
	s.loaded = true
	s.dirty = false
	return nil
}

// saveLocked writes to a temp file and renames it over the ledger.
// Must be called with write lock held.
func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, s.opts.fileMode); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempFile, s.path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.dirty = false
	return nil
}
