package coupling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varp/internal/cochange"
	"varp/internal/config"
	"varp/internal/importscan"
	"varp/internal/manifest"
)

func newTestManifest(t *testing.T) *manifest.Manifest {
	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
		{Name: "worker", PathEntries: []string{"worker"}},
		{Name: "docs", PathEntries: []string{"docs"}},
	})
	require.NoError(t, err)
	return m
}

func TestBuildClassifiesExplicitModule(t *testing.T) {
	m := newTestManifest(t)
	imports := &importscan.Result{Deps: []importscan.ImportDep{
		{FromComponent: "api", ToComponent: "worker"},
	}}
	coChange := &cochange.Graph{Edges: []cochange.Edge{
		{A: "/repo/api/h.ts", B: "/repo/worker/j.ts", Weight: 5},
	}}
	override := 1
	overrideF := 1.0
	mx := Build(m, coChange, imports, config.CouplingConfig{StructuralThreshold: &override, BehavioralThreshold: &overrideF})
	require.Len(t, mx.Edges, 1)
	assert.Equal(t, ClassExplicitModule, mx.Edges[0].Classification)
}

func TestBuildClassifiesHiddenCoupling(t *testing.T) {
	m := newTestManifest(t)
	coChange := &cochange.Graph{Edges: []cochange.Edge{
		{A: "/repo/api/h.ts", B: "/repo/worker/j.ts", Weight: 5},
	}}
	override := 1
	overrideF := 1.0
	mx := Build(m, coChange, nil, config.CouplingConfig{StructuralThreshold: &override, BehavioralThreshold: &overrideF})
	require.Len(t, mx.Edges, 1)
	assert.Equal(t, ClassHiddenCoupling, mx.Edges[0].Classification)
}

func TestBuildClassifiesStableInterface(t *testing.T) {
	m := newTestManifest(t)
	imports := &importscan.Result{Deps: []importscan.ImportDep{
		{FromComponent: "api", ToComponent: "worker"},
	}}
	override := 1
	overrideF := 1.0
	mx := Build(m, nil, imports, config.CouplingConfig{StructuralThreshold: &override, BehavioralThreshold: &overrideF})
	require.Len(t, mx.Edges, 1)
	assert.Equal(t, ClassStableInterface, mx.Edges[0].Classification)
}

func TestBuildIgnoresSameComponentCoChange(t *testing.T) {
	m := newTestManifest(t)
	coChange := &cochange.Graph{Edges: []cochange.Edge{
		{A: "/repo/api/a.ts", B: "/repo/api/b.ts", Weight: 5},
	}}
	mx := Build(m, coChange, nil, config.CouplingConfig{})
	assert.Empty(t, mx.Edges)
}

func TestHiddenCouplingSortedByBehavioralWeightDescending(t *testing.T) {
	m := newTestManifest(t)
	coChange := &cochange.Graph{Edges: []cochange.Edge{
		{A: "/repo/api/h.ts", B: "/repo/worker/j.ts", Weight: 1},
		{A: "/repo/api/h2.ts", B: "/repo/docs/README.md", Weight: 9},
	}}
	override := 1
	overrideF := 0.5
	mx := Build(m, coChange, nil, config.CouplingConfig{StructuralThreshold: &override, BehavioralThreshold: &overrideF})
	hidden := mx.HiddenCoupling()
	require.Len(t, hidden, 2)
	assert.Greater(t, hidden[0].BehavioralWeight, hidden[1].BehavioralWeight)
}

func TestProfileReturnsEdgesTouchingComponent(t *testing.T) {
	m := newTestManifest(t)
	imports := &importscan.Result{Deps: []importscan.ImportDep{
		{FromComponent: "api", ToComponent: "worker"},
	}}
	mx := Build(m, nil, imports, config.CouplingConfig{})
	profile := mx.Profile("api")
	require.Len(t, profile, 1)
}
