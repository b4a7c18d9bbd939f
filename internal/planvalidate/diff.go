package planvalidate

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"varp/internal/plan"
)

// FieldChange names one task field that differs between two plan
// revisions, with a human-readable inline diff rendering of the change
// (diffmatchpatch's DiffPrettyText) for free-text fields.
type FieldChange struct {
	Field string
	Diff  string // inline text diff for free-text fields; empty for set and boolean fields
}

// TaskChange describes how one task differs between plan a and plan b, or
// reports that the task was only added to or only removed from one side.
type TaskChange struct {
	TaskID  string
	Added   bool // present only in b
	Removed bool // present only in a
	Fields  []FieldChange
}

// ConditionChange describes a contract condition added, removed, or
// changed between two plan revisions.
type ConditionChange struct {
	Section string // "precondition", "invariant", "postcondition"
	ID      string
	Added   bool
	Removed bool
	Fields  []FieldChange
}

// PlanDiff is the full structural, order-insensitive diff between two
// plan revisions.
type PlanDiff struct {
	MetadataChanges  []FieldChange
	ConditionChanges []ConditionChange
	TaskChanges      []TaskChange
}

var dmp = diffmatchpatch.New()

// Diff computes the structural difference between a and b. Task and
// condition identity is by ID, not list position, so reordering a plan's
// task list produces an empty diff; touches.reads and touches.writes are
// compared as sets; Values is compared as an ordered sequence since its
// order is semantically meaningful to the task's action.
func Diff(a, b plan.Plan) PlanDiff {
	return PlanDiff{
		MetadataChanges:  diffMetadata(a.Metadata, b.Metadata),
		ConditionChanges: diffConditions(a.Contract, b.Contract),
		TaskChanges:      diffTasks(a.Tasks, b.Tasks),
	}
}

func diffMetadata(a, b map[string]string) []FieldChange {
	var changes []FieldChange
	keys := unionKeys(a, b)
	for _, k := range keys {
		av, aok := a[k]
		bv, bok := b[k]
		if aok && bok && av == bv {
			continue
		}
		changes = append(changes, FieldChange{Field: k, Diff: textDiff(av, bv)})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}

func unionKeys(a, b map[string]string) []string {
	seen := make(map[string]bool)
	var keys []string
	for k := range a {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range b {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

func diffConditions(a, b plan.Contract) []ConditionChange {
	var changes []ConditionChange
	changes = append(changes, diffConditionSection("precondition", a.Preconditions, b.Preconditions)...)
	changes = append(changes, diffConditionSection("invariant", a.Invariants, b.Invariants)...)
	changes = append(changes, diffConditionSection("postcondition", a.Postconditions, b.Postconditions)...)
	return changes
}

func diffConditionSection(section string, a, b []plan.Condition) []ConditionChange {
	aByID := make(map[string]plan.Condition, len(a))
	for _, c := range a {
		aByID[c.ID] = c
	}
	bByID := make(map[string]plan.Condition, len(b))
	for _, c := range b {
		bByID[c.ID] = c
	}

	var ids []string
	seen := make(map[string]bool)
	for _, c := range a {
		if !seen[c.ID] {
			seen[c.ID] = true
			ids = append(ids, c.ID)
		}
	}
	for _, c := range b {
		if !seen[c.ID] {
			seen[c.ID] = true
			ids = append(ids, c.ID)
		}
	}
	sort.Strings(ids)

	var changes []ConditionChange
	for _, id := range ids {
		av, aok := aByID[id]
		bv, bok := bByID[id]
		switch {
		case aok && !bok:
			changes = append(changes, ConditionChange{Section: section, ID: id, Removed: true})
		case !aok && bok:
			changes = append(changes, ConditionChange{Section: section, ID: id, Added: true})
		default:
			var fields []FieldChange
			if av.Verify != bv.Verify {
				fields = append(fields, FieldChange{Field: "verify", Diff: textDiff(av.Verify, bv.Verify)})
			}
			if av.Critical != bv.Critical {
				fields = append(fields, FieldChange{Field: "critical"})
			}
			if len(fields) > 0 {
				changes = append(changes, ConditionChange{Section: section, ID: id, Fields: fields})
			}
		}
	}
	return changes
}

func diffTasks(a, b []plan.Task) []TaskChange {
	aByID := make(map[string]plan.Task, len(a))
	for _, t := range a {
		aByID[t.ID] = t
	}
	bByID := make(map[string]plan.Task, len(b))
	for _, t := range b {
		bByID[t.ID] = t
	}

	var ids []string
	seen := make(map[string]bool)
	for _, t := range a {
		if !seen[t.ID] {
			seen[t.ID] = true
			ids = append(ids, t.ID)
		}
	}
	for _, t := range b {
		if !seen[t.ID] {
			seen[t.ID] = true
			ids = append(ids, t.ID)
		}
	}
	sort.Strings(ids)

	var changes []TaskChange
	for _, id := range ids {
		av, aok := aByID[id]
		bv, bok := bByID[id]
		switch {
		case aok && !bok:
			changes = append(changes, TaskChange{TaskID: id, Removed: true})
		case !aok && bok:
			changes = append(changes, TaskChange{TaskID: id, Added: true})
		default:
			if fields := diffTaskFields(av, bv); len(fields) > 0 {
				changes = append(changes, TaskChange{TaskID: id, Fields: fields})
			}
		}
	}
	return changes
}

func diffTaskFields(a, b plan.Task) []FieldChange {
	var fields []FieldChange
	if a.Description != b.Description {
		fields = append(fields, FieldChange{Field: "description", Diff: textDiff(a.Description, b.Description)})
	}
	if a.Action != b.Action {
		fields = append(fields, FieldChange{Field: "action", Diff: textDiff(a.Action, b.Action)})
	}
	if !stringSliceEqual(a.Values, b.Values) {
		fields = append(fields, FieldChange{Field: "values", Diff: textDiff(strings.Join(a.Values, "\n"), strings.Join(b.Values, "\n"))})
	}
	if !setEqual(a.Touches.Reads, b.Touches.Reads) {
		fields = append(fields, FieldChange{Field: "touches.reads"})
	}
	if !setEqual(a.Touches.Writes, b.Touches.Writes) {
		fields = append(fields, FieldChange{Field: "touches.writes"})
	}
	if !setEqual(a.Mutexes, b.Mutexes) {
		fields = append(fields, FieldChange{Field: "mutexes"})
	}
	return fields
}

func textDiff(a, b string) string {
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func setEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
