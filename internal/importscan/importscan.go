// Package importscan extracts import statements from source files using
// line-oriented regular expressions rather than a language parser: the
// corpus varp analyzes spans several JS/TS dialects, and a regex scan
// needs no per-dialect AST front end to stay useful across all of them.
// This trades exactness (a string literal that merely looks like an
// import is a false positive) for being cheap and dependency-free to run
// across an entire tree.
package importscan

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"varp/internal/config"
	"varp/internal/manifest"
	"varp/internal/varperr"
)

var importPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bimport\s+(?:[\w*\s{},]+\s+from\s+)?['"]([^'"]+)['"]`),
	regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`),
	regexp.MustCompile(`\bexport\s+(?:[\w*\s{},]+\s+from\s+)?['"]([^'"]+)['"]`),
)

// ImportDep is one piece of evidence that a source file imports from a
// path that resolves into a given component.
type ImportDep struct {
	FromComponent string
	ToComponent   string
	SourceFile    string
	ImportSpec    string
}

// Result is the outcome of scanning a tree for imports.
type Result struct {
	Deps []ImportDep
	// MissingDeps are FromComponent -> ToComponent edges importscan found
	// evidence for, but that the owning component's manifest entry did not
	// declare.
	MissingDeps []ComponentPair
	// ExtraDeps are component dependencies the manifest declares that no
	// import evidence supports.
	ExtraDeps []ComponentPair
}

// ComponentPair names an edge between two components.
type ComponentPair struct {
	From, To string
}

// Scan walks every source file under the manifest's components (per
// cfg.SourceExtensions), extracts import specifiers, resolves relative
// ones against cfg.IndexSuffixes, and maps both sides to owning
// components. Same-component imports are not evidence of anything and are
// dropped. The walk runs with bounded concurrency via errgroup so a large
// tree doesn't serialize on file I/O.
func Scan(ctx context.Context, fs afero.Fs, m *manifest.Manifest, cfg config.ScanConfig) (*Result, error) {
	files, err := collectSourceFiles(fs, m, cfg)
	if err != nil {
		return nil, err
	}

	depsCh := make(chan ImportDep, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, f := range files {
		f := f
		g.Go(func() error {
			return scanFile(gctx, fs, m, cfg, f, depsCh)
		})
	}

	go func() {
		_ = g.Wait()
		close(depsCh)
	}()

	var deps []ImportDep
	for d := range depsCh {
		deps = append(deps, d)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].FromComponent != deps[j].FromComponent {
			return deps[i].FromComponent < deps[j].FromComponent
		}
		if deps[i].ToComponent != deps[j].ToComponent {
			return deps[i].ToComponent < deps[j].ToComponent
		}
		return deps[i].SourceFile < deps[j].SourceFile
	})

	evidence := make(map[ComponentPair]bool)
	for _, d := range deps {
		evidence[ComponentPair{d.FromComponent, d.ToComponent}] = true
	}

	declared := make(map[ComponentPair]bool)
	for _, name := range m.Order {
		for _, dep := range m.Components[name].Deps {
			declared[ComponentPair{name, dep}] = true
		}
	}

	var missing, extra []ComponentPair
	for pair := range evidence {
		if !declared[pair] {
			missing = append(missing, pair)
		}
	}
	for pair := range declared {
		if !evidence[pair] {
			extra = append(extra, pair)
		}
	}
	sortPairs(missing)
	sortPairs(extra)

	return &Result{Deps: deps, MissingDeps: missing, ExtraDeps: extra}, nil
}

func sortPairs(pairs []ComponentPair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].From != pairs[j].From {
			return pairs[i].From < pairs[j].From
		}
		return pairs[i].To < pairs[j].To
	})
}

func collectSourceFiles(fs afero.Fs, m *manifest.Manifest, cfg config.ScanConfig) ([]string, error) {
	extSet := make(map[string]bool, len(cfg.SourceExtensions))
	for _, e := range cfg.SourceExtensions {
		extSet[e] = true
	}

	var files []string
	seen := make(map[string]bool)
	for _, name := range m.Order {
		for _, root := range m.Components[name].Path {
			if err := walkDir(fs, root, extSet, seen, &files); err != nil {
				return nil, err
			}
		}
	}
	return files, nil
}

func walkDir(fs afero.Fs, root string, extSet map[string]bool, seen map[string]bool, out *[]string) error {
	info, err := fs.Stat(root)
	if err != nil {
		return nil // unreadable component root: treated as empty by the caller's lint pass
	}
	if !info.IsDir() {
		if extSet[filepath.Ext(root)] && !seen[root] {
			seen[root] = true
			*out = append(*out, root)
		}
		return nil
	}
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		full := filepath.Join(root, e.Name())
		if e.IsDir() {
			if err := walkDir(fs, full, extSet, seen, out); err != nil {
				return err
			}
			continue
		}
		if extSet[filepath.Ext(e.Name())] && !seen[full] {
			seen[full] = true
			*out = append(*out, full)
		}
	}
	return nil
}

func scanFile(ctx context.Context, fs afero.Fs, m *manifest.Manifest, cfg config.ScanConfig, path string, out chan<- ImportDep) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", varperr.ErrCancelled, ctx.Err())
	default:
	}

	fromComponent, ok := m.OwningComponent(path)
	if !ok {
		return nil
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil // per-file I/O errors are non-fatal: the unreadable file is skipped without a report
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		spec, found := extractImport(line)
		if !found {
			continue
		}
		resolved := resolveImport(fs, path, spec, cfg.IndexSuffixes)
		if resolved == "" {
			continue // bare (package) import; nothing in the manifest owns it
		}
		toComponent, ok := m.OwningComponent(resolved)
		if !ok || toComponent == fromComponent {
			continue
		}
		out <- ImportDep{FromComponent: fromComponent, ToComponent: toComponent, SourceFile: path, ImportSpec: spec}
	}
	return nil
}

func extractImport(line string) (string, bool) {
	for _, re := range importPatterns {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// resolveImport resolves a relative import specifier against the
// directory containing fromFile. It returns "" for bare (package) specs,
// which import nothing the manifest can own.
func resolveImport(fs afero.Fs, fromFile, spec string, indexSuffixes []string) string {
	if !strings.HasPrefix(spec, ".") {
		return ""
	}
	base := filepath.Join(filepath.Dir(fromFile), spec)
	if info, err := fs.Stat(base); err == nil && !info.IsDir() {
		return filepath.Clean(base)
	}
	for _, suffix := range indexSuffixes {
		candidate := base + suffix
		if strings.HasPrefix(suffix, "/") {
			candidate = filepath.Join(base, suffix)
		}
		if info, err := fs.Stat(candidate); err == nil && !info.IsDir() {
			return filepath.Clean(candidate)
		}
	}
	return filepath.Clean(base)
}
