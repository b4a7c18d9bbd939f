// Package plan holds the plan document's data model: tasks, their touch
// sets and mutexes, and the contract a plan must satisfy. The package
// intentionally exposes two structural views of a task, per the scheduling
// components' differing needs: TaskRef carries only what hazard detection
// and wave scheduling ever look at (id, touches, mutexes), while Task
// carries the full planner-facing record (description, action, values,
// free-text metadata) that validation and diffing operate on. Scheduling
// code should accept TaskRef, not Task, so it can't accidentally depend on
// planner-only fields.
package plan

// Touches is the set of component references a task reads from and writes
// to. Entries may be component names or tags; resolving them against a
// Manifest is the caller's job (see internal/manifest.ResolveComponentRefs).
type Touches struct {
	Reads  []string
	Writes []string
}

// TaskRef is the minimal shape hazard detection, wave scheduling, and
// critical-path computation require.
type TaskRef struct {
	ID      string
	Touches Touches
	Mutexes []string
}

// Task is a plan's full per-step record.
type Task struct {
	ID          string
	Description string
	Action      string
	Values      []string
	Touches     Touches
	Mutexes     []string
	Metadata    map[string]string // opaque planner fields; planvalidate.Diff does not compare them
}

// Ref returns the TaskRef view of t.
func (t Task) Ref() TaskRef {
	return TaskRef{ID: t.ID, Touches: t.Touches, Mutexes: t.Mutexes}
}

// RefsOf projects a Task slice down to TaskRefs, in order.
func RefsOf(tasks []Task) []TaskRef {
	refs := make([]TaskRef, len(tasks))
	for i, t := range tasks {
		refs[i] = t.Ref()
	}
	return refs
}

// Condition is one entry in a plan's contract: a precondition,
// postcondition, or invariant, identified by a stable ID and verified by a
// shell command.
type Condition struct {
	ID       string
	Verify   string
	Critical bool // invariants only; ignored for pre/postconditions
}

// Contract is the set of conditions a plan's execution must satisfy.
type Contract struct {
	Preconditions  []Condition
	Invariants     []Condition
	Postconditions []Condition
}

// Plan is a complete orchestration document: metadata, a contract, and an
// ordered task list.
type Plan struct {
	Metadata map[string]string
	Contract Contract
	Tasks    []Task
}
