package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varp/internal/varperr"
)

func rc(name string, paths ...string) RawComponent {
	return RawComponent{Name: name, PathEntries: paths}
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New("/repo", "1", []RawComponent{
		rc("api", "api"),
		rc("api", "api2"),
	})
	require.Error(t, err)
	var mErr *varperr.ManifestError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, varperr.ReasonDuplicateName, mErr.Reason)
}

func TestNewRejectsSelfDependency(t *testing.T) {
	c := rc("api", "api")
	c.Deps = []string{"api"}
	_, err := New("/repo", "1", []RawComponent{c})
	require.Error(t, err)
	var mErr *varperr.ManifestError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, varperr.ReasonCycle, mErr.Reason)
}

func TestNewRejectsUnknownDep(t *testing.T) {
	c := rc("api", "api")
	c.Deps = []string{"ghost"}
	_, err := New("/repo", "1", []RawComponent{c})
	require.Error(t, err)
	var mErr *varperr.ManifestError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, varperr.ReasonUnknownDep, mErr.Reason)
}

func TestNewRejectsDependencyCycle(t *testing.T) {
	a := rc("a", "a")
	a.Deps = []string{"b"}
	b := rc("b", "b")
	b.Deps = []string{"a"}
	_, err := New("/repo", "1", []RawComponent{a, b})
	require.Error(t, err)
	var mErr *varperr.ManifestError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, varperr.ReasonCycle, mErr.Reason)
}

func TestNewAllowsStrictPrefixPathOverlap(t *testing.T) {
	m, err := New("/repo", "1", []RawComponent{
		rc("api", "api"),
		rc("api-internal", "api/internal"),
	})
	require.NoError(t, err)
	assert.Len(t, m.Components, 2)
}

func TestNewRejectsNonPrefixPathOverlap(t *testing.T) {
	_, err := New("/repo", "1", []RawComponent{
		rc("a", "shared/a"),
		rc("b", "shared/a"),
	})
	require.Error(t, err)
	var mErr *varperr.ManifestError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, varperr.ReasonPathConflict, mErr.Reason)
}

func TestTopologicalOrderRespectsDeps(t *testing.T) {
	a := rc("a", "a")
	b := rc("b", "b")
	b.Deps = []string{"a"}
	c := rc("c", "c")
	c.Deps = []string{"b"}
	m, err := New("/repo", "1", []RawComponent{c, b, a})
	require.NoError(t, err)

	order, err := TopologicalOrder(m)
	require.NoError(t, err)

	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	assert.Less(t, pos["a"], pos["b"])
	assert.Less(t, pos["b"], pos["c"])
}

func TestInvalidationCascadeFollowsReverseDeps(t *testing.T) {
	a := rc("a", "a")
	b := rc("b", "b")
	b.Deps = []string{"a"}
	c := rc("c", "c")
	c.Deps = []string{"b"}
	d := rc("d", "d")
	m, err := New("/repo", "1", []RawComponent{a, b, c, d})
	require.NoError(t, err)

	affected := InvalidationCascade(m, []string{"a"})
	assert.ElementsMatch(t, []string{"a", "b", "c"}, affected)
}

func TestInvalidationCascadeIgnoresUnknownNames(t *testing.T) {
	a := rc("a", "a")
	m, err := New("/repo", "1", []RawComponent{a})
	require.NoError(t, err)

	affected := InvalidationCascade(m, []string{"ghost"})
	assert.Empty(t, affected)
}

func TestOwningComponentLongestPrefixMatch(t *testing.T) {
	m, err := New("/repo", "1", []RawComponent{
		rc("api", "api"),
		rc("api-internal", "api/internal"),
	})
	require.NoError(t, err)

	owner, ok := m.OwningComponent("/repo/api/internal/handler.go")
	require.True(t, ok)
	assert.Equal(t, "api-internal", owner)

	owner, ok = m.OwningComponent("/repo/api/router.go")
	require.True(t, ok)
	assert.Equal(t, "api", owner)

	_, ok = m.OwningComponent("/repo/unclaimed/file.go")
	assert.False(t, ok)
}

func TestResolveComponentRefsNameWinsOverTag(t *testing.T) {
	a := rc("api", "api")
	a.Tags = []string{"backend"}
	b := rc("backend", "backend")
	m, err := New("/repo", "1", []RawComponent{a, b})
	require.NoError(t, err)

	refs, err := ResolveComponentRefs(m, []string{"backend"})
	require.NoError(t, err)
	assert.Equal(t, []string{"backend"}, refs)
}

func TestResolveComponentRefsExpandsTagAndDedups(t *testing.T) {
	a := rc("api", "api")
	a.Tags = []string{"svc"}
	b := rc("worker", "worker")
	b.Tags = []string{"svc"}
	m, err := New("/repo", "1", []RawComponent{a, b})
	require.NoError(t, err)

	refs, err := ResolveComponentRefs(m, []string{"svc", "api", "svc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "worker"}, refs)
}

func TestResolveComponentRefsUnknownFails(t *testing.T) {
	a := rc("api", "api")
	m, err := New("/repo", "1", []RawComponent{a})
	require.NoError(t, err)

	_, err = ResolveComponentRefs(m, []string{"ghost"})
	require.Error(t, err)
	var ref *varperr.UnknownComponentRef
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "ghost", ref.Ref)
}
