// Package reconcile diffs the desired candidate set against the observed
// remote state and produces an explicit two-phase plan of actions.
package reconcile

import (
	"github.com/agentstation/dogsync/pkg/catalog"
	"github.com/agentstation/dogsync/pkg/remote"
)

// Kind is the type of an action.
type Kind string

// Action kinds.
const (
	KindCreate    Kind = "create"
	KindOverwrite Kind = "overwrite"
	KindSkip      Kind = "skip"
	KindDelete    Kind = "delete"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// ReasonAlreadyExists is the skip reason for candidates present remotely
// when overwriting is disabled.
const ReasonAlreadyExists = "already exists"

// Action is a single planned operation on one logical path.
//
// Create and Overwrite carry a Candidate; Overwrite also carries the
// Existing entry it replaces. Skip carries a Candidate and, when the path
// exists remotely, the Existing entry. Delete carries only Existing.
type Action struct {
	Kind      Kind               `json:"kind" yaml:"kind"`
	Path      string             `json:"path" yaml:"path"`
	Candidate *catalog.Candidate `json:"candidate,omitempty" yaml:"candidate,omitempty"`
	Existing  *remote.Entry      `json:"existing,omitempty" yaml:"existing,omitempty"`
	Reason    string             `json:"reason,omitempty" yaml:"reason,omitempty"`
	Recycle   bool               `json:"recycle,omitempty" yaml:"recycle,omitempty"`
}

// SourceURL returns the candidate's source URL, if any.
func (a Action) SourceURL() string {
	if a.Candidate == nil {
		return ""
	}
	return a.Candidate.SourceURL
}

// Create returns a create action for c.
func Create(c catalog.Candidate) Action {
	return Action{Kind: KindCreate, Path: c.Path, Candidate: &c}
}

// Overwrite returns an overwrite action replacing existing with c.
func Overwrite(c catalog.Candidate, existing remote.Entry) Action {
	return Action{Kind: KindOverwrite, Path: c.Path, Candidate: &c, Existing: &existing}
}

// Skip returns a skip action for c with the given reason.
func Skip(c catalog.Candidate, existing *remote.Entry, reason string) Action {
	return Action{Kind: KindSkip, Path: c.Path, Candidate: &c, Existing: existing, Reason: reason}
}

// Delete returns a delete action for existing.
func Delete(existing remote.Entry, recycle bool) Action {
	return Action{Kind: KindDelete, Path: existing.Path, Existing: &existing, Recycle: recycle}
}
