package dogsync

import (
	"sync"

	"github.com/agentstation/dogsync/pkg/reconcile"
)

// Hook function types for run events
type (
	// PlannedHook is called once the plan is known, before execution
	PlannedHook func(plan *reconcile.Plan)

	// ActionStartedHook is called when an action is dispatched
	ActionStartedHook func(a reconcile.Action)

	// ActionDoneHook is called when an action has finished
	ActionDoneHook func(a reconcile.Action, err error)
)

// Hooks groups optional callbacks. Nil fields are ignored.
type Hooks struct {
	OnPlanned       PlannedHook
	OnActionStarted ActionStartedHook
	OnActionDone    ActionDoneHook
}

// hooks manages event callbacks for a run
type hooks struct {
	mu              sync.RWMutex
	onPlanned       []PlannedHook
	onActionStarted []ActionStartedHook
	onActionDone    []ActionDoneHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) register(in Hooks) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if in.OnPlanned != nil {
		h.onPlanned = append(h.onPlanned, in.OnPlanned)
	}
	if in.OnActionStarted != nil {
		h.onActionStarted = append(h.onActionStarted, in.OnActionStarted)
	}
	if in.OnActionDone != nil {
		h.onActionDone = append(h.onActionDone, in.OnActionDone)
	}
}

func (h *hooks) planned(plan *reconcile.Plan) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onPlanned {
		fn(plan)
	}
}

func (h *hooks) actionStarted(a reconcile.Action) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onActionStarted {
		fn(a)
	}
}

func (h *hooks) actionDone(a reconcile.Action, err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onActionDone {
		fn(a, err)
	}
}
