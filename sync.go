package dogsync

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/dogsync/pkg/catalog"
	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/executor"
	"github.com/agentstation/dogsync/pkg/logging"
	"github.com/agentstation/dogsync/pkg/reconcile"
	"github.com/agentstation/dogsync/pkg/remote"
	"github.com/agentstation/dogsync/pkg/report"
)

// Preview is everything a run decides before touching the store.
type Preview struct {
	Catalog *catalog.Plan
	State   *remote.State
	Plan    *reconcile.Plan
	Policy  reconcile.Policy
}

// Plan computes the actions a run would take without executing them.
func (s *Syncer) Plan(ctx context.Context) (*Preview, error) {
	// Step 1: Plan the catalog and read the remote state concurrently
	var (
		planned *catalog.Plan
		state   *remote.State
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		planned, err = s.planner().Plan(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		state, err = remote.ReadState(gctx, s.store, s.cfg.RootDir, s.cfg.Clean)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Step 2: Protect failed listings and, on a filtered run, every other
	// breed from cleaning
	policy := s.cfg.Policy()
	policy.Protected = planned.ProtectedPrefixes()
	policy.Scope = planned.Scope
	for _, f := range planned.Failures {
		logging.FromContext(ctx).Warn().
			Err(f.Err).
			Str("breed", f.Breed).
			Str("sub_breed", f.SubBreed).
			Msg("Image listing failed; prefix excluded from cleaning")
	}

	// Step 3: Reconcile
	plan := reconcile.Reconcile(planned.Candidates, state, policy)

	counts := plan.Counts()
	logging.FromContext(ctx).Info().
		Int("candidates", len(planned.Candidates)).
		Int("remote", state.Len()).
		Int("create", counts[reconcile.KindCreate]).
		Int("overwrite", counts[reconcile.KindOverwrite]).
		Int("skip", counts[reconcile.KindSkip]).
		Int("delete", counts[reconcile.KindDelete]).
		Msg("Plan ready")

	return &Preview{Catalog: planned, State: state, Plan: plan, Policy: policy}, nil
}

// Run performs a full sync pass and returns the persisted report.
//
// Fatal errors (invalid configuration, unavailable store or breed list)
// return a nil report. A canceled run still persists a report marked
// aborted and returns it together with an error wrapping
// errors.ErrCanceled. A report that cannot be persisted is returned
// together with an error wrapping errors.ErrReportPersistFailed.
func (s *Syncer) Run(ctx context.Context) (*report.Report, error) {
	// Step 0: Attach run-scoped logging
	runID := s.newID()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)
	logger.Info().
		Str("root", s.cfg.RootDir).
		Bool("clean", s.cfg.Clean).
		Bool("overwrite", s.cfg.Overwrite).
		Bool("recycle", s.cfg.UseRecycleBin).
		Bool("dummy", s.cfg.Dummy).
		Bool("dry_run", s.dryRun).
		Msg("Starting sync")

	// Step 1: Plan and reconcile
	preview, err := s.Plan(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Sync aborted before execution")
		return nil, err
	}

	// Step 2: Start the report with planning failures
	builder := report.NewBuilder(runID, s.cfg.RootDir, s.cfg.Policy(), s.dryRun)
	for _, f := range preview.Catalog.Failures {
		_ = builder.RecordFailure(report.ActionPlan, f.Prefix, f.Err)
	}
	s.hooks.planned(preview.Plan)

	// Step 3: Execute, or only record the plan on a dry run
	var execErr error
	if s.dryRun {
		for _, a := range preview.Plan.Actions() {
			_ = builder.RecordPlanned(a)
		}
	} else {
		ex := executor.New(s.store, s.source,
			executor.WithConcurrency(s.cfg.Concurrency),
			executor.WithHooks(s.hooks.actionStarted, s.hooks.actionDone),
		)
		execErr = ex.Execute(ctx, preview.Plan, builder)
	}
	aborted := errors.Is(execErr, errors.ErrCanceled)

	// Step 4: Finalize and persist, even when canceled
	r := builder.Finalize(aborted)
	if err := s.sink.Write(context.WithoutCancel(ctx), r); err != nil {
		logger.Error().Err(err).Msg("Failed to persist report")
		return r, errors.Join(err, execErr)
	}

	logger.Info().
		Int("total", r.Summary.Total).
		Int("succeeded", r.Summary.Succeeded).
		Int("failed", r.Summary.Failed).
		Int("created", r.Summary.Created).
		Int("overwritten", r.Summary.Overwritten).
		Int("skipped", r.Summary.Skipped).
		Int("deleted", r.Summary.Deleted).
		Bool("aborted", r.Aborted).
		Msg("Sync finished")

	return r, execErr
}
