package linkscan

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varp/internal/manifest"
)

func TestScanClassifiesExternalLink(t *testing.T) {
	fs := afero.NewMemMapFs()
	links := Scan(fs, "/repo/api/README.md", "see [docs](https://example.com/x)", nil)
	require.Len(t, links, 1)
	assert.Equal(t, KindExternal, links[0].Kind)
}

func TestScanIgnoresImageLinks(t *testing.T) {
	fs := afero.NewMemMapFs()
	links := Scan(fs, "/repo/api/README.md", "![alt](./diagram.png)", nil)
	assert.Empty(t, links)
}

func TestScanClassifiesFragmentLink(t *testing.T) {
	fs := afero.NewMemMapFs()
	slugs := map[string]bool{"setup": true}
	links := Scan(fs, "/repo/api/README.md", "see [setup](#setup)", slugs)
	require.Len(t, links, 1)
	assert.Equal(t, KindFragment, links[0].Kind)
}

func TestScanClassifiesBrokenFragmentLink(t *testing.T) {
	fs := afero.NewMemMapFs()
	slugs := map[string]bool{"setup": true}
	links := Scan(fs, "/repo/api/README.md", "see [ghost](#ghost)", slugs)
	require.Len(t, links, 1)
	assert.Equal(t, KindBroken, links[0].Kind)
}

func TestScanClassifiesResolvedFileLink(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/api/docs/internals.md", []byte("x"), 0o644))
	links := Scan(fs, "/repo/api/README.md", "see [internals](docs/internals.md)", nil)
	require.Len(t, links, 1)
	assert.Equal(t, KindFile, links[0].Kind)
	assert.Equal(t, "/repo/api/docs/internals.md", links[0].Resolved)
}

func TestScanClassifiesBrokenFileLink(t *testing.T) {
	fs := afero.NewMemMapFs()
	links := Scan(fs, "/repo/api/README.md", "see [ghost](docs/missing.md)", nil)
	require.Len(t, links, 1)
	assert.Equal(t, KindBroken, links[0].Kind)
}

func TestInferDepsDropsSameComponentLinks(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/api/docs/internals.md", []byte("x"), 0o644))
	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
	})
	require.NoError(t, err)

	links := Scan(fs, "/repo/api/README.md", "see [internals](docs/internals.md)", nil)
	deps := InferDeps(m, links)
	assert.Empty(t, deps)
}

func TestInferDepsAcrossComponents(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/worker/README.md", []byte("x"), 0o644))
	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
		{Name: "worker", PathEntries: []string{"worker"}},
	})
	require.NoError(t, err)

	links := Scan(fs, "/repo/api/README.md", "see [worker](../worker/README.md)", nil)
	deps := InferDeps(m, links)
	require.Len(t, deps, 1)
	assert.Equal(t, "api", deps[0].From)
	assert.Equal(t, "worker", deps[0].To)
}

func TestHeadingSlugsGeneratesGithubStyleSlugs(t *testing.T) {
	slugs := HeadingSlugs("# Getting Started\n## API Reference!\n")
	assert.True(t, slugs["getting-started"])
	assert.True(t, slugs["api-reference"])
}
