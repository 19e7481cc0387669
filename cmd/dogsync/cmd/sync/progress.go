package sync

import (
	"io"
	gosync "sync"

	"github.com/pterm/pterm"

	"github.com/agentstation/dogsync"
	"github.com/agentstation/dogsync/pkg/reconcile"
)

// progress renders a progress bar for the executed actions.
type progress struct {
	w   io.Writer
	mu  gosync.Mutex
	bar *pterm.ProgressbarPrinter
}

func newProgress(w io.Writer) *progress {
	return &progress{w: w}
}

// Hooks returns the run hooks that drive the bar.
func (p *progress) Hooks() dogsync.Hooks {
	return dogsync.Hooks{
		OnPlanned:    p.start,
		OnActionDone: p.done,
	}
}

func (p *progress) start(plan *reconcile.Plan) {
	if plan.Len() == 0 {
		return
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(plan.Len()).
		WithTitle("Syncing").
		WithWriter(p.w).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		return
	}
	p.mu.Lock()
	p.bar = bar
	p.mu.Unlock()
}

func (p *progress) done(reconcile.Action, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Increment()
	}
}

// Stop clears the bar.
func (p *progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_, _ = p.bar.Stop()
		p.bar = nil
	}
}
