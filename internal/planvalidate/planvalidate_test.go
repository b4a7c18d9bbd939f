package planvalidate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varp/internal/manifest"
	"varp/internal/plan"
)

func newTestManifest(t *testing.T) *manifest.Manifest {
	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
		{Name: "worker", PathEntries: []string{"worker"}, Deps: []string{"api"}},
	})
	require.NoError(t, err)
	return m
}

func TestValidateRejectsDuplicateTaskID(t *testing.T) {
	m := newTestManifest(t)
	p := plan.Plan{Tasks: []plan.Task{{ID: "t1"}, {ID: "t1"}}}
	res := Validate(p, m)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
}

func TestValidateRejectsUnknownRef(t *testing.T) {
	m := newTestManifest(t)
	p := plan.Plan{Tasks: []plan.Task{{ID: "t1", Touches: plan.Touches{Writes: []string{"ghost"}}}}}
	res := Validate(p, m)
	assert.False(t, res.Valid)
}

func TestValidateAcceptsKnownRefs(t *testing.T) {
	m := newTestManifest(t)
	p := plan.Plan{Tasks: []plan.Task{{ID: "t1", Touches: plan.Touches{Writes: []string{"api"}}}}}
	res := Validate(p, m)
	assert.True(t, res.Valid)
}

func TestValidateRejectsEmptyVerifyCondition(t *testing.T) {
	m := newTestManifest(t)
	p := plan.Plan{Contract: plan.Contract{Invariants: []plan.Condition{{ID: "inv1"}}}}
	res := Validate(p, m)
	assert.False(t, res.Valid)
}

func TestValidateWarnsOnUnreachableWrite(t *testing.T) {
	m := newTestManifest(t)
	p := plan.Plan{Tasks: []plan.Task{
		{ID: "t1", Touches: plan.Touches{Reads: []string{"api"}, Writes: []string{"worker"}}},
	}}
	res := Validate(p, m)
	assert.True(t, res.Valid)
	assert.NotEmpty(t, res.Warnings)
}

func TestValidateNoWarningWhenWriteReachableFromRead(t *testing.T) {
	m := newTestManifest(t)
	p := plan.Plan{Tasks: []plan.Task{
		{ID: "t1", Touches: plan.Touches{Reads: []string{"worker"}, Writes: []string{"api"}}},
	}}
	res := Validate(p, m)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Warnings)
}

func TestDiffDetectsAddedAndRemovedTasks(t *testing.T) {
	a := plan.Plan{Tasks: []plan.Task{{ID: "t1"}}}
	b := plan.Plan{Tasks: []plan.Task{{ID: "t2"}}}
	d := Diff(a, b)
	require.Len(t, d.TaskChanges, 2)
}

func TestDiffIsOrderInsensitiveForTaskList(t *testing.T) {
	a := plan.Plan{Tasks: []plan.Task{{ID: "t1"}, {ID: "t2"}}}
	b := plan.Plan{Tasks: []plan.Task{{ID: "t2"}, {ID: "t1"}}}
	d := Diff(a, b)
	assert.Empty(t, d.TaskChanges)
}

func TestDiffIgnoresTouchesReorder(t *testing.T) {
	a := plan.Plan{Tasks: []plan.Task{{ID: "t1", Touches: plan.Touches{Reads: []string{"a", "b"}}}}}
	b := plan.Plan{Tasks: []plan.Task{{ID: "t1", Touches: plan.Touches{Reads: []string{"b", "a"}}}}}
	d := Diff(a, b)
	assert.Empty(t, d.TaskChanges)
}

func TestDiffDetectsValuesOrderChange(t *testing.T) {
	a := plan.Plan{Tasks: []plan.Task{{ID: "t1", Values: []string{"x", "y"}}}}
	b := plan.Plan{Tasks: []plan.Task{{ID: "t1", Values: []string{"y", "x"}}}}
	d := Diff(a, b)
	require.Len(t, d.TaskChanges, 1)
	if diff := cmp.Diff("values", d.TaskChanges[0].Fields[0].Field); diff != "" {
		t.Errorf("unexpected field (-want +got):\n%s", diff)
	}
}

func TestDiffDetectsMetadataChange(t *testing.T) {
	a := plan.Plan{Metadata: map[string]string{"owner": "alice"}}
	b := plan.Plan{Metadata: map[string]string{"owner": "bob"}}
	d := Diff(a, b)
	require.Len(t, d.MetadataChanges, 1)
	assert.Equal(t, "owner", d.MetadataChanges[0].Field)
}

func TestDiffDetectsConditionAddedAndChanged(t *testing.T) {
	a := plan.Plan{Contract: plan.Contract{Invariants: []plan.Condition{{ID: "inv1", Verify: "old"}}}}
	b := plan.Plan{Contract: plan.Contract{Invariants: []plan.Condition{
		{ID: "inv1", Verify: "new"},
		{ID: "inv2", Verify: "check"},
	}}}
	d := Diff(a, b)
	require.Len(t, d.ConditionChanges, 2)
}
