package dogsync

import (
	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/remote"
	"github.com/agentstation/dogsync/pkg/report"
)

// Option is a function that configures a Syncer
type Option func(*Syncer) error

// WithStore replaces the remote store selected by the configuration
func WithStore(store remote.Store) Option {
	return func(s *Syncer) error {
		if store == nil {
			return errors.NewValidationError("store", nil, "must not be nil")
		}
		s.store = store
		return nil
	}
}

// WithSource replaces the dog.ceo client
func WithSource(source Source) Option {
	return func(s *Syncer) error {
		if source == nil {
			return errors.NewValidationError("source", nil, "must not be nil")
		}
		s.source = source
		return nil
	}
}

// WithSink replaces the report file sink
func WithSink(sink report.Sink) Option {
	return func(s *Syncer) error {
		s.sink = sink
		return nil
	}
}

// WithDryRun plans and reports without executing any action
func WithDryRun(enabled bool) Option {
	return func(s *Syncer) error {
		s.dryRun = enabled
		return nil
	}
}

// WithRunID fixes the run identifier, mostly for tests
func WithRunID(id string) Option {
	return func(s *Syncer) error {
		s.newID = func() string { return id }
		return nil
	}
}

// WithHooks registers progress callbacks on the Syncer
func WithHooks(h Hooks) Option {
	return func(s *Syncer) error {
		s.hooks.register(h)
		return nil
	}
}
