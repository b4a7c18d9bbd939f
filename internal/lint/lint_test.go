package lint

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varp/internal/config"
	"varp/internal/manifest"
)

func testScanConfig() config.ScanConfig {
	return config.ScanConfig{SourceExtensions: []string{".ts"}}
}

func TestRunFlagsStaleDocs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/api/handler.ts", []byte("x"), 0o644))

	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
	})
	require.NoError(t, err)

	report, err := Run(context.Background(), fs, m, testScanConfig(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, report.Issues)
	assert.Equal(t, CategoryFreshness, report.Issues[0].Category)
}

func TestRunFlagsBrokenLinks(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/api/README.md", []byte("see [ghost](missing.md)"), 0o644))

	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
	})
	require.NoError(t, err)

	report, err := Run(context.Background(), fs, m, testScanConfig(), nil)
	require.NoError(t, err)

	found := false
	for _, iss := range report.Issues {
		if iss.Category == CategoryBrokenLink {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRunSuppressesByKey(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/api/handler.ts", []byte("x"), 0o644))

	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
	})
	require.NoError(t, err)

	first, err := Run(context.Background(), fs, m, testScanConfig(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, first.Issues)

	suppress := map[string]bool{first.Issues[0].Key(): true}
	second, err := Run(context.Background(), fs, m, testScanConfig(), suppress)
	require.NoError(t, err)
	assert.Equal(t, 1, second.SuppressedCount)
}

func TestRunFlagsUndeclaredDep(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/api/handler.ts", []byte(`import { run } from '../worker/job'`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/worker/job.ts", []byte(`export const run = 1`), 0o644))

	m, err := manifest.New("/repo", "1", []manifest.RawComponent{
		{Name: "api", PathEntries: []string{"api"}},
		{Name: "worker", PathEntries: []string{"worker"}},
	})
	require.NoError(t, err)

	cfg := config.ScanConfig{SourceExtensions: []string{".ts"}, IndexSuffixes: []string{".ts"}}
	report, err := Run(context.Background(), fs, m, cfg, nil)
	require.NoError(t, err)

	found := false
	for _, iss := range report.Issues {
		if iss.Category == CategoryUndeclaredDep {
			found = true
		}
	}
	assert.True(t, found)
}
