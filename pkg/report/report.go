// Package report accumulates per-action outcomes of a sync run and
// persists the finished report document.
package report

import (
	"sync"
	"time"

	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/reconcile"
)

// Outcome is the result of an attempted action.
type Outcome string

// Outcomes.
const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomePlanned   Outcome = "planned" // dry runs only
)

// ActionPlan labels entries for image listings that failed during planning.
const ActionPlan = "plan"

// Entry is one attempted action.
type Entry struct {
	Action    string    `json:"action" yaml:"action"`
	Path      string    `json:"path" yaml:"path"`
	Outcome   Outcome   `json:"outcome" yaml:"outcome"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	ErrorKind string    `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	SourceURL string    `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	Recycle   bool      `json:"recycle,omitempty" yaml:"recycle,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Summary holds integer counts per action kind and per outcome. Kind
// counters count successful and planned actions; every failure lands in
// Failed.
type Summary struct {
	Total       int `json:"total" yaml:"total"`
	Succeeded   int `json:"succeeded" yaml:"succeeded"`
	Failed      int `json:"failed" yaml:"failed"`
	Created     int `json:"created" yaml:"created"`
	Overwritten int `json:"overwritten" yaml:"overwritten"`
	Skipped     int `json:"skipped" yaml:"skipped"`
	Deleted     int `json:"deleted" yaml:"deleted"`
}

// Report is a finished run report. It is never mutated after Finalize.
type Report struct {
	RunID      string           `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time        `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time        `json:"finished_at" yaml:"finished_at"`
	Root       string           `json:"root" yaml:"root"`
	DryRun     bool             `json:"dry_run" yaml:"dry_run"`
	Aborted    bool             `json:"aborted" yaml:"aborted"`
	Policy     reconcile.Policy `json:"policy" yaml:"policy"`
	Entries    []Entry          `json:"entries" yaml:"entries"`
	Summary    Summary          `json:"summary" yaml:"summary"`
}

// HasFailures reports whether any entry failed.
func (r *Report) HasFailures() bool {
	return r.Summary.Failed > 0
}

// Builder accumulates entries during a run. Append is safe for concurrent use.
type Builder struct {
	mu        sync.Mutex
	report    Report
	finalized bool
	now       func() time.Time
}

// NewBuilder starts a report for a run.
func NewBuilder(runID, root string, policy reconcile.Policy, dryRun bool) *Builder {
	b := &Builder{now: time.Now}
	b.report = Report{
		RunID:     runID,
		StartedAt: b.now().UTC(),
		Root:      root,
		DryRun:    dryRun,
		Policy:    policy,
		Entries:   []Entry{},
	}
	return b
}

// ErrFinalized is returned when appending to a finalized report.
var ErrFinalized = errors.New("report already finalized")

// Append records one attempted action. Entries keep append order.
func (b *Builder) Append(e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return ErrFinalized
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = b.now().UTC()
	}
	b.report.Entries = append(b.report.Entries, e)
	return nil
}

// Record appends the outcome of executing action a; err nil means success.
func (b *Builder) Record(a reconcile.Action, err error) error {
	e := Entry{
		Action:    a.Kind.String(),
		Path:      a.Path,
		Outcome:   OutcomeSucceeded,
		Reason:    a.Reason,
		SourceURL: a.SourceURL(),
		Recycle:   a.Recycle,
	}
	if err != nil {
		e.Outcome = OutcomeFailed
		e.ErrorKind = errors.Kind(err)
		e.Error = err.Error()
	}
	return b.Append(e)
}

// RecordPlanned appends a not-executed action of a dry run.
func (b *Builder) RecordPlanned(a reconcile.Action) error {
	return b.Append(Entry{
		Action:    a.Kind.String(),
		Path:      a.Path,
		Outcome:   OutcomePlanned,
		Reason:    a.Reason,
		SourceURL: a.SourceURL(),
		Recycle:   a.Recycle,
	})
}

// RecordFailure appends a failed non-action step, such as an image listing.
func (b *Builder) RecordFailure(action, path string, err error) error {
	return b.Append(Entry{
		Action:    action,
		Path:      path,
		Outcome:   OutcomeFailed,
		ErrorKind: errors.Kind(err),
		Error:     err.Error(),
	})
}

// Len returns the number of entries appended so far.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.report.Entries)
}

// Finalize freezes the report, computes the summary and returns a copy.
// Calling Finalize again returns the same frozen content.
func (b *Builder) Finalize(aborted bool) *Report {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.finalized {
		b.finalized = true
		b.report.Aborted = aborted
		b.report.FinishedAt = b.now().UTC()
		b.report.Summary = summarize(b.report.Entries)
	}
	r := b.report
	r.Entries = make([]Entry, len(b.report.Entries))
	copy(r.Entries, b.report.Entries)
	return &r
}

func summarize(entries []Entry) Summary {
	var s Summary
	for _, e := range entries {
		s.Total++
		switch e.Outcome {
		case OutcomeFailed:
			s.Failed++
			continue
		case OutcomeSucceeded:
			s.Succeeded++
		}
		switch reconcile.Kind(e.Action) {
		case reconcile.KindCreate:
			s.Created++
		case reconcile.KindOverwrite:
			s.Overwritten++
		case reconcile.KindSkip:
			s.Skipped++
		case reconcile.KindDelete:
			s.Deleted++
		}
	}
	return s
}
