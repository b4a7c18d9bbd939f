// Package planvalidate checks a plan document for structural integrity
// against a manifest, and diffs two plan revisions into a human-reviewable
// change list.
package planvalidate

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"varp/internal/manifest"
	"varp/internal/plan"
	"varp/internal/varperr"
)

// Result is the outcome of validating a plan. Errors are structural
// defects the plan must not carry (see varperr.PlanError); Warnings are
// advisory findings that don't block use of the plan. ReportID identifies
// this call for log correlation only; it carries no semantic weight and
// must never be compared by callers.
type Result struct {
	ReportID string
	Valid    bool
	Errors   []error
	Warnings []string
}

// Validate checks plan against m: every task ID is unique; every touches
// reference resolves against m (by name or tag); every task's declared
// writes are, as a warning only, reachable from at least one of its
// declared reads through the manifest's dependency graph (a write to a
// component the task never read its way to is usually a sign the touches
// set is incomplete, not a hard error); every contract condition ID is
// unique within its section and carries a non-empty verify command; and
// every mutex name is non-empty.
func Validate(p plan.Plan, m *manifest.Manifest) Result {
	var errs []error
	var warnings []string

	seenTaskIDs := make(map[string]bool)
	depEdges := buildDepEdges(m)

	for _, t := range p.Tasks {
		if seenTaskIDs[t.ID] {
			errs = append(errs, varperr.NewDuplicateTaskIDError(t.ID))
			continue
		}
		seenTaskIDs[t.ID] = true

		allRefs := append(append([]string{}, t.Touches.Reads...), t.Touches.Writes...)
		for _, ref := range allRefs {
			if _, err := manifest.ResolveComponentRefs(m, []string{ref}); err != nil {
				errs = append(errs, varperr.NewUnknownRefError(t.ID, ref))
			}
		}
		for _, mx := range t.Mutexes {
			if mx == "" {
				errs = append(errs, &varperr.PlanError{Reason: varperr.PlanReasonEmptyMutex, TaskID: t.ID, Ref: mx})
			}
		}

		if len(t.Touches.Writes) > 0 && len(errs) == 0 {
			if w := checkWriteReachability(t, depEdges); w != "" {
				warnings = append(warnings, w)
			}
		}
	}

	for _, section := range []struct {
		name  string
		conds []plan.Condition
	}{
		{"precondition", p.Contract.Preconditions},
		{"invariant", p.Contract.Invariants},
		{"postcondition", p.Contract.Postconditions},
	} {
		seen := make(map[string]bool)
		for _, c := range section.conds {
			if seen[c.ID] {
				errs = append(errs, &varperr.PlanError{Reason: varperr.PlanReasonDuplicateConditionID, TaskID: c.ID})
				continue
			}
			seen[c.ID] = true
			if c.Verify == "" {
				errs = append(errs, varperr.NewEmptyVerifyError(c.ID))
			}
		}
	}

	sort.Strings(warnings)
	return Result{ReportID: uuid.New().String(), Valid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

func buildDepEdges(m *manifest.Manifest) [][2]string {
	var edges [][2]string
	for _, name := range m.Order {
		for _, dep := range m.Components[name].Deps {
			edges = append(edges, [2]string{name, dep})
		}
	}
	return edges
}

// checkWriteReachability reports, for a single task, whether any declared
// write is unreachable (via the manifest's dependency graph) from every
// declared read. Reachability failures here are reported as advisory
// warnings, not validation errors: a plan task is free to write to a
// component it has no declared dependency path into, most commonly because
// it's creating that component's initial contents.
func checkWriteReachability(t plan.Task, depEdges [][2]string) string {
	checker, err := newReachabilityChecker(depEdges)
	if err != nil {
		return "" // reachability is advisory; a checker failure should not block validation
	}
	for _, w := range t.Touches.Writes {
		reachableFromAnyRead := len(t.Touches.Reads) == 0
		for _, r := range t.Touches.Reads {
			if r == w || checker.IsReachable(r, w) {
				reachableFromAnyRead = true
				break
			}
		}
		if !reachableFromAnyRead {
			return fmt.Sprintf("task %q: write to %q is not reachable from any declared read; confirm touches.reads is complete", t.ID, w)
		}
	}
	return ""
}
