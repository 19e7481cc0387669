package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agentstation/dogsync"
	"github.com/agentstation/dogsync/internal/config"
)

// Mock provides a mock implementation of Application for testing.
// If a function field is nil, the method returns a default value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    RunConfigFunc: func() (config.Config, error) {
//	        return cfg, nil
//	    },
//	}
//	cmd := breeds.NewCommand(mock)
type Mock struct {
	RunConfigFunc func() (config.Config, error)
	SyncerFunc    func(cfg config.Config, opts ...dogsync.Option) (*dogsync.Syncer, error)
	LoggerFunc    func() *zerolog.Logger
	Format        string
	QuietMode     bool
}

var _ Application = (*Mock)(nil)

// RunConfig implements Application.
func (m *Mock) RunConfig() (config.Config, error) {
	if m.RunConfigFunc != nil {
		return m.RunConfigFunc()
	}
	return config.Config{}, nil
}

// Syncer implements Application. Without SyncerFunc it calls dogsync.New.
func (m *Mock) Syncer(cfg config.Config, opts ...dogsync.Option) (*dogsync.Syncer, error) {
	if m.SyncerFunc != nil {
		return m.SyncerFunc(cfg, opts...)
	}
	return dogsync.New(cfg, opts...)
}

// Logger implements Application.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat implements Application.
func (m *Mock) OutputFormat() string {
	return m.Format
}

// Quiet implements Application.
func (m *Mock) Quiet() bool {
	return m.QuietMode
}

// NoColor implements Application. Mock output is never colored.
func (m *Mock) NoColor() bool {
	return true
}

// Version implements Application.
func (m *Mock) Version() string { return "test" }

// Commit implements Application.
func (m *Mock) Commit() string { return "none" }

// Date implements Application.
func (m *Mock) Date() string { return "unknown" }

// BuiltBy implements Application.
func (m *Mock) BuiltBy() string { return "test" }

// FakeSource is an offline image source for command tests. Every breed
// and sub-breed has PerKey images (default 2).
type FakeSource struct {
	Taxonomy map[string][]string
	PerKey   int
}

// Breeds implements dogsync.Source.
func (f *FakeSource) Breeds(context.Context) (map[string][]string, error) {
	return f.Taxonomy, nil
}

// Images implements dogsync.Source.
func (f *FakeSource) Images(_ context.Context, breed, subBreed string) ([]string, error) {
	key := breed
	if subBreed != "" {
		key += "-" + subBreed
	}
	n := f.PerKey
	if n == 0 {
		n = 2
	}
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://images.dog.ceo/breeds/%s/%d.jpg", key, i+1)
	}
	return urls, nil
}

// Fetch implements dogsync.Source.
func (f *FakeSource) Fetch(_ context.Context, url string) ([]byte, error) {
	return []byte(url), nil
}

var _ dogsync.Source = (*FakeSource)(nil)
