// Package executor applies a reconciliation plan against a remote store.
package executor

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/dogsync/pkg/constants"
	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/logging"
	"github.com/agentstation/dogsync/pkg/reconcile"
	"github.com/agentstation/dogsync/pkg/remote"
)

// Fetcher downloads image bytes from a source URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Recorder receives the outcome of every dispatched action.
// *report.Builder implements it.
type Recorder interface {
	Record(a reconcile.Action, err error) error
}

// Hook function types for action events
type (
	// ActionStartHook is called when an action is dispatched
	ActionStartHook func(a reconcile.Action)

	// ActionDoneHook is called after an action has been recorded
	ActionDoneHook func(a reconcile.Action, err error)
)

// Options configures an Executor.
type Options struct {
	Concurrency   int
	ActionTimeout time.Duration
	OnActionStart ActionStartHook
	OnActionDone  ActionDoneHook
}

// Option is a function that configures executor Options.
type Option func(*Options)

// Defaults returns the default executor options.
func Defaults() *Options {
	return &Options{
		Concurrency:   constants.DefaultConcurrency,
		ActionTimeout: constants.ActionTimeout,
	}
}

// WithConcurrency sets the worker pool size.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

// WithActionTimeout bounds each individual store or fetch call.
func WithActionTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ActionTimeout = d
	}
}

// WithHooks registers progress callbacks. Either may be nil.
func WithHooks(start ActionStartHook, done ActionDoneHook) Option {
	return func(o *Options) {
		o.OnActionStart = start
		o.OnActionDone = done
	}
}

// Executor runs plan actions on a bounded worker pool.
type Executor struct {
	store   remote.Store
	fetcher Fetcher
	options *Options
}

// New creates an Executor.
func New(store remote.Store, fetcher Fetcher, opts ...Option) *Executor {
	options := Defaults()
	for _, opt := range opts {
		opt(options)
	}
	if options.Concurrency < 1 {
		options.Concurrency = 1
	}
	if options.ActionTimeout <= 0 {
		options.ActionTimeout = constants.ActionTimeout
	}
	return &Executor{store: store, fetcher: fetcher, options: options}
}

// Execute applies plan in two phases: every delete finishes before any
// write is dispatched. Per-action failures are recorded and never stop the
// run. When ctx is canceled no further actions are dispatched, in-flight
// actions finish, and the returned error wraps errors.ErrCanceled.
func (e *Executor) Execute(ctx context.Context, plan *reconcile.Plan, rec Recorder) error {
	if plan == nil {
		return nil
	}
	logger := logging.FromContext(ctx)

	// Step 1: Deletes
	if !e.phase(ctx, plan.Deletes, rec) {
		return e.aborted(ctx)
	}
	logger.Debug().Int("deletes", len(plan.Deletes)).Msg("Delete phase complete")

	// Step 2: Writes
	if !e.phase(ctx, plan.Writes, rec) {
		return e.aborted(ctx)
	}
	logger.Debug().Int("writes", len(plan.Writes)).Msg("Write phase complete")

	return nil
}

func (e *Executor) aborted(ctx context.Context) error {
	return errors.Join(errors.ErrCanceled, context.Cause(ctx))
}

// phase runs actions and reports whether every one of them was dispatched.
func (e *Executor) phase(ctx context.Context, actions []reconcile.Action, rec Recorder) bool {
	var (
		g       errgroup.Group
		dropped atomic.Bool
	)
	g.SetLimit(e.options.Concurrency)

	for _, a := range actions {
		if ctx.Err() != nil {
			dropped.Store(true)
			break
		}
		g.Go(func() error {
			// The pool slot may have freed up after cancellation.
			if ctx.Err() != nil {
				dropped.Store(true)
				return nil
			}
			e.run(ctx, a, rec)
			return nil
		})
	}
	_ = g.Wait()
	return !dropped.Load()
}

// run executes one action. Its calls are detached from ctx cancellation so
// an interrupted run never leaves a half-written object behind.
func (e *Executor) run(ctx context.Context, a reconcile.Action, rec Recorder) {
	if e.options.OnActionStart != nil {
		e.options.OnActionStart(a)
	}

	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.options.ActionTimeout)
	defer cancel()

	err := e.apply(actx, a)

	lctx := logging.WithPath(ctx, a.Path)
	if a.Candidate != nil {
		lctx = logging.WithBreed(lctx, a.Candidate.Breed)
	}
	logger := logging.FromContext(lctx).With().
		Str("action", a.Kind.String()).
		Logger()
	if err != nil {
		logger.Warn().Err(err).Str("kind", errors.Kind(err)).Msg("Action failed")
	} else {
		logger.Debug().Msg("Action succeeded")
	}

	if recErr := rec.Record(a, err); recErr != nil {
		logger.Error().Err(recErr).Msg("Failed to record action")
	}
	if e.options.OnActionDone != nil {
		e.options.OnActionDone(a, err)
	}
}

func (e *Executor) apply(ctx context.Context, a reconcile.Action) error {
	switch a.Kind {
	case reconcile.KindSkip:
		return nil

	case reconcile.KindDelete:
		if err := e.store.Delete(ctx, a.Path, a.Recycle); err != nil {
			return errors.NewRemoteWriteError("delete", a.Path, err)
		}
		return nil

	case reconcile.KindCreate, reconcile.KindOverwrite:
		url := a.SourceURL()
		data, err := e.fetcher.Fetch(ctx, url)
		if err != nil {
			return errors.NewSourceFetchError("fetch", url, err)
		}
		if err := e.store.Put(ctx, a.Path, data, a.Kind == reconcile.KindOverwrite); err != nil {
			return errors.NewRemoteWriteError("put", a.Path, err)
		}
		return nil

	default:
		return errors.NewValidationError("kind", a.Kind, "unknown action kind")
	}
}
