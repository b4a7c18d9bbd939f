// Package capability checks a task's actual file writes against its
// declared touches.writes capability list, using the manifest's ownership
// index to resolve each changed path to a component.
package capability

import (
	"sort"

	"github.com/google/uuid"

	"varp/internal/manifest"
)

// ViolationKind discriminates the two ways a write can exceed its declared
// capability.
type ViolationKind string

const (
	// ViolationOwnedButUndeclared fires when a changed path is owned by a
	// component that the task did not declare in touches.writes.
	ViolationOwnedButUndeclared ViolationKind = "owned_but_undeclared"
	// ViolationOwnedByNone fires when a changed path is owned by no
	// component at all, and the task declared at least one write capability
	// (so it was expected to stay within declared, owned territory).
	ViolationOwnedByNone ViolationKind = "owned_by_none"
)

// Violation reports one changed path that the declared write capability
// set does not cover.
type Violation struct {
	Kind      ViolationKind
	Path      string
	Component string // owning component, empty for ViolationOwnedByNone
}

// Report is Verify's return value. ReportID identifies this call for log
// correlation only; it carries no semantic weight and must never be
// compared by callers. Valid is equivalent to len(Violations) == 0; it is
// carried as its own field so callers don't have to re-derive it.
type Report struct {
	ReportID   string
	Valid      bool
	Violations []Violation
}

// Verify checks diffPaths against declaredWrites (already resolved to
// component names, e.g. via manifest.ResolveComponentRefs). It returns one
// Violation per offending path, sorted by path.
func Verify(m *manifest.Manifest, declaredWrites []string, diffPaths []string) Report {
	declared := make(map[string]bool, len(declaredWrites))
	for _, d := range declaredWrites {
		declared[d] = true
	}

	var violations []Violation
	for _, path := range diffPaths {
		owner, ok := m.OwningComponent(path)
		if !ok {
			if len(declaredWrites) > 0 {
				violations = append(violations, Violation{Kind: ViolationOwnedByNone, Path: path})
			}
			continue
		}
		if !declared[owner] {
			violations = append(violations, Violation{Kind: ViolationOwnedButUndeclared, Path: path, Component: owner})
		}
	}
	sort.Slice(violations, func(i, j int) bool { return violations[i].Path < violations[j].Path })
	return Report{ReportID: uuid.New().String(), Valid: len(violations) == 0, Violations: violations}
}
