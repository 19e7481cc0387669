package reconcile

import (
	"sort"
	"strings"

	"github.com/agentstation/dogsync/pkg/catalog"
	"github.com/agentstation/dogsync/pkg/remote"
)

// Policy holds the per-run reconciliation flags.
type Policy struct {
	Clean     bool `json:"clean" yaml:"clean"`
	Overwrite bool `json:"overwrite" yaml:"overwrite"`
	Recycle   bool `json:"use_recycle_bin" yaml:"use_recycle_bin"`

	// Protected prefixes are never cleaned, e.g. breeds whose image listing failed.
	Protected []string `json:"-" yaml:"-"`

	// Scope, when set, confines cleaning to paths under these prefixes.
	Scope []string `json:"-" yaml:"-"`
}

// Plan is the two-phase output of reconciliation. Every delete must be
// finished before any write starts, so a write never races a stale entry.
type Plan struct {
	Deletes []Action `json:"deletes" yaml:"deletes"`
	Writes  []Action `json:"writes" yaml:"writes"`
}

// Actions returns deletes followed by writes.
func (p *Plan) Actions() []Action {
	all := make([]Action, 0, len(p.Deletes)+len(p.Writes))
	all = append(all, p.Deletes...)
	return append(all, p.Writes...)
}

// Len returns the number of actions in the plan.
func (p *Plan) Len() int {
	return len(p.Deletes) + len(p.Writes)
}

// Counts returns the number of actions per kind.
func (p *Plan) Counts() map[Kind]int {
	counts := map[Kind]int{}
	for _, a := range p.Actions() {
		counts[a.Kind]++
	}
	return counts
}

// Reconcile diffs candidates against state under policy. It is a pure
// function: identical inputs always produce an identical plan. Deletes are
// ordered by path, writes follow candidate order. Duplicate candidate paths
// keep their first occurrence.
func Reconcile(candidates []catalog.Candidate, state *remote.State, policy Policy) *Plan {
	if state == nil {
		state = remote.NewState("", nil)
	}

	plan := &Plan{}
	wanted := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		if wanted[c.Path] {
			continue
		}
		wanted[c.Path] = true

		existing, ok := state.Get(c.Path)
		switch {
		case !ok:
			plan.Writes = append(plan.Writes, Create(c))
		case policy.Overwrite:
			plan.Writes = append(plan.Writes, Overwrite(c, existing))
		default:
			plan.Writes = append(plan.Writes, Skip(c, &existing, ReasonAlreadyExists))
		}
	}

	if policy.Clean {
		for _, p := range state.Paths() {
			if wanted[p] || under(p, policy.Protected) {
				continue
			}
			if len(policy.Scope) > 0 && !under(p, policy.Scope) {
				continue
			}
			existing, _ := state.Get(p)
			plan.Deletes = append(plan.Deletes, Delete(existing, policy.Recycle))
		}
		sort.SliceStable(plan.Deletes, func(i, j int) bool {
			return plan.Deletes[i].Path < plan.Deletes[j].Path
		})
	}

	return plan
}

// under reports whether p lies under any of the prefixes.
func under(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if p == prefix || strings.HasPrefix(p, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}
