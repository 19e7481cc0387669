// Package dogsync synchronizes dog breed images from dog.ceo into a
// Yandex.Disk folder.
//
// A run plans the desired image set, reads the remote state, reconciles
// the two into create, overwrite, skip and delete actions, executes them on
// a bounded worker pool and persists a report of every attempted action.
package dogsync

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/agentstation/dogsync/internal/config"
	"github.com/agentstation/dogsync/internal/sources/dogceo"
	"github.com/agentstation/dogsync/internal/storage/dummy"
	"github.com/agentstation/dogsync/internal/storage/yandexdisk"
	"github.com/agentstation/dogsync/pkg/catalog"
	"github.com/agentstation/dogsync/pkg/executor"
	"github.com/agentstation/dogsync/pkg/remote"
	"github.com/agentstation/dogsync/pkg/report"
)

// Source enumerates breed images and downloads them.
type Source interface {
	catalog.ImageSource
	executor.Fetcher
}

// Syncer runs sync passes for one immutable configuration.
type Syncer struct {
	cfg     config.Config
	source  Source
	store   remote.Store
	sink    report.Sink
	dryRun  bool
	hooks   *hooks
	newID   func() string
	closers []io.Closer
}

// New creates a Syncer. The store, source and sink default to the ones
// cfg selects and can be replaced with options.
func New(cfg config.Config, opts ...Option) (*Syncer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Syncer{
		cfg:   cfg,
		hooks: newHooks(),
		newID: newRunID,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.source == nil {
		s.source = dogceo.NewClient(dogceo.WithAPIRoot(cfg.DogAPIRoot))
	}
	if s.store == nil {
		store, err := newStore(cfg)
		if err != nil {
			return nil, err
		}
		s.store = store
		if c, ok := store.(io.Closer); ok {
			s.closers = append(s.closers, c)
		}
	}
	if s.sink == nil {
		s.sink = report.NewFileSink(cfg.ReportPath)
	}
	return s, nil
}

// newStore picks the store backend. The dummy store is chosen here and
// nowhere else.
func newStore(cfg config.Config) (remote.Store, error) {
	if cfg.Dummy {
		return dummy.New(dummy.WithPath(cfg.DummyState))
	}
	return yandexdisk.New(
		yandexdisk.WithAPIRoot(cfg.DiskAPIRoot),
		yandexdisk.WithToken(cfg.OAuthKey),
		yandexdisk.WithRateLimit(cfg.RateLimit),
	), nil
}

// Config returns the run configuration.
func (s *Syncer) Config() config.Config {
	return s.cfg
}

// Store returns the remote store in use.
func (s *Syncer) Store() remote.Store {
	return s.store
}

// Breeds returns the (filtered) breed taxonomy.
func (s *Syncer) Breeds(ctx context.Context) (catalog.Taxonomy, error) {
	return s.planner().Taxonomy(ctx)
}

// Close releases resources held by the default store.
func (s *Syncer) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *Syncer) planner() *catalog.Planner {
	return catalog.NewPlanner(s.source,
		catalog.WithRoot(s.cfg.RootDir),
		catalog.WithCaps(s.cfg.MaxBreedImages, s.cfg.MaxSubBreedImages),
		catalog.WithBreeds(s.cfg.Breeds...),
	)
}

func newRunID() string {
	return uuid.NewString()
}
