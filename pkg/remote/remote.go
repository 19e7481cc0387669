// Package remote models the remote object store a sync run writes to and
// reads the existing state under the configured root.
package remote

import (
	"context"
	"sort"
	"time"
)

// Entry is an existing object under the remote root.
type Entry struct {
	Path      string    `json:"path" yaml:"path"`
	Exists    bool      `json:"exists" yaml:"exists"`
	Signature string    `json:"signature,omitempty" yaml:"signature,omitempty"` // content hash when the store exposes one
	Size      int64     `json:"size,omitempty" yaml:"size,omitempty"`
	Modified  time.Time `json:"modified,omitempty" yaml:"modified,omitempty"`
}

// Store is the capability interface every remote backend implements.
//
// List returns all objects under root recursively and wraps
// errors.ErrNotFound when root does not exist. Put writes a whole object,
// creating parent directories as needed; with overwrite false an existing
// object is an error. Delete moves the object to the recycle bin when
// recycle is true and erases it permanently otherwise.
type Store interface {
	List(ctx context.Context, root string) ([]Entry, error)
	Put(ctx context.Context, path string, data []byte, overwrite bool) error
	Delete(ctx context.Context, path string, recycle bool) error
}

// State is a snapshot of the remote root keyed by logical path.
type State struct {
	Root    string
	entries map[string]Entry
}

// NewState builds a State from listed entries.
func NewState(root string, entries []Entry) *State {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		e.Exists = true
		m[e.Path] = e
	}
	return &State{Root: root, entries: m}
}

// Get returns the entry at path, if present.
func (s *State) Get(path string) (Entry, bool) {
	e, ok := s.entries[path]
	return e, ok
}

// Len returns the number of entries.
func (s *State) Len() int {
	return len(s.entries)
}

// Paths returns all entry paths in sorted order.
func (s *State) Paths() []string {
	paths := make([]string, 0, len(s.entries))
	for p := range s.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
