package docs

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varp/internal/config"
	"varp/internal/manifest"
	"varp/internal/plan"
)

func testScanConfig() config.ScanConfig {
	return config.ScanConfig{
		SourceExtensions:       []string{".ts"},
		ConventionalSourceDirs: []string{"src"},
	}
}

func TestDiscoverFindsReadmeAndPrivateDocs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/api/README.md", []byte("# api"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/api/docs/internals.md", []byte("notes"), 0o644))

	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
	})
	require.NoError(t, err)

	refs := Discover(fs, m, "api", testScanConfig())
	require.Len(t, refs, 2)
	var readme, internal Ref
	for _, r := range refs {
		if r.Public {
			readme = r
		} else {
			internal = r
		}
	}
	assert.Equal(t, "/repo/api/README.md", readme.Path)
	assert.Equal(t, "/repo/api/docs/internals.md", internal.Path)
}

func TestDiscoverCollapsesConventionalSourceDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/api/README.md", []byte("# api"), 0o644))

	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api/src"}},
	})
	require.NoError(t, err)

	refs := Discover(fs, m, "api", testScanConfig())
	require.Len(t, refs, 1)
	assert.Equal(t, "/repo/api/README.md", refs[0].Path)
}

func TestResolveForTouchesWritesGetPrivateDocsReadsOnlyPublic(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/api/README.md", []byte("# api"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/api/docs/internals.md", []byte("notes"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/worker/README.md", []byte("# worker"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/worker/docs/internals.md", []byte("notes"), 0o644))

	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
		{Name: "worker", PathEntries: []string{"worker"}},
	})
	require.NoError(t, err)

	touches := plan.Touches{Writes: []string{"api"}, Reads: []string{"worker"}}
	refs := ResolveForTouches(fs, m, touches, testScanConfig())
	require.Len(t, refs, 3)

	paths := map[string]bool{}
	for _, r := range refs {
		paths[r.Path] = true
	}
	assert.True(t, paths["/repo/api/README.md"])
	assert.True(t, paths["/repo/api/docs/internals.md"])
	assert.True(t, paths["/repo/worker/README.md"])
	assert.False(t, paths["/repo/worker/docs/internals.md"])
}

func TestCheckFreshnessNoDocsIsStale(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/api/handler.ts", []byte("x"), 0o644))

	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
	})
	require.NoError(t, err)

	f := CheckFreshness(fs, m, "api", testScanConfig())
	assert.Equal(t, "N/A", f.DocPath)
	assert.True(t, f.Stale)
}

func TestCheckFreshnessFreshWhenDocNewerThanSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/api/handler.ts", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/api/README.md", []byte("# api"), 0o644))

	now := time.Now()
	require.NoError(t, fs.Chtimes("/repo/api/handler.ts", now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, fs.Chtimes("/repo/api/README.md", now, now))

	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
	})
	require.NoError(t, err)

	f := CheckFreshness(fs, m, "api", testScanConfig())
	assert.False(t, f.Stale)
}

func TestWarmStalenessNoteSafeWhenUnchanged(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/api/handler.ts", []byte("x"), 0o644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, fs.Chtimes("/repo/api/handler.ts", past.Add(-time.Minute), past.Add(-time.Minute)))

	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
	})
	require.NoError(t, err)

	safe, _ := WarmStalenessNote(fs, m, "api", testScanConfig(), past)
	assert.True(t, safe)
}

func TestWarmStalenessNoteUnsafeWhenSourceChangedSince(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/api/handler.ts", []byte("x"), 0o644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, fs.Chtimes("/repo/api/handler.ts", time.Now(), time.Now()))

	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
	})
	require.NoError(t, err)

	safe, _ := WarmStalenessNote(fs, m, "api", testScanConfig(), past)
	assert.False(t, safe)
}
