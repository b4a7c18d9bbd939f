// Package docs discovers the documentation that belongs to a component,
// resolves which of it a plan task should read given its touches set, and
// checks whether discovered docs are stale relative to the source they
// describe.
package docs

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"

	"varp/internal/config"
	"varp/internal/manifest"
	"varp/internal/plan"
)

// Ref is one discovered doc, tagged with the component(s) it was
// discovered for and whether it's public.
//
// Public docs (a component's README.md, and any doc explicitly declared in
// the manifest) describe the component's externally visible contract and
// are relevant to any task that merely reads the component. Private docs
// (docs/*.md) are implementation notes relevant only to a task that writes
// the component.
type Ref struct {
	Path       string
	Public     bool
	Components []string // components this doc was discovered for
}

// Discover finds every doc belonging to component: its README.md (public),
// every docs/*.md file found non-recursively (private), and any doc paths
// the manifest entry declares explicitly (public). When a component's path
// entry's base name is one of cfg.ConventionalSourceDirs (e.g. "src"),
// discovery collapses to the entry's parent directory, since doc files
// conventionally sit alongside a src/ tree rather than inside it.
func Discover(fs afero.Fs, m *manifest.Manifest, component string, cfg config.ScanConfig) []Ref {
	c, ok := m.Components[component]
	if !ok {
		return nil
	}

	seen := make(map[string]*Ref)
	add := func(path string, public bool) {
		if r, ok := seen[path]; ok {
			if public {
				r.Public = true
			}
			return
		}
		seen[path] = &Ref{Path: path, Public: public, Components: []string{component}}
	}

	for _, p := range c.Path {
		root := collapseSourceDir(p, cfg.ConventionalSourceDirs)

		readme := filepath.Join(root, "README.md")
		if isFile(fs, readme) {
			add(readme, true)
		}

		docsDir := filepath.Join(root, "docs")
		entries, err := afero.ReadDir(fs, docsDir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
					continue
				}
				add(filepath.Join(docsDir, e.Name()), false)
			}
		}
	}

	for _, d := range c.Docs {
		add(d, true)
	}

	var out []Ref
	for _, r := range seen {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func collapseSourceDir(path string, conventionalDirs []string) string {
	base := filepath.Base(path)
	for _, d := range conventionalDirs {
		if base == d {
			return filepath.Dir(path)
		}
	}
	return path
}

func isFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && !info.IsDir()
}

// ResolveForTouches returns the docs relevant to a task given its touches
// set: every doc (public and private) of each written component, and only
// the public docs of each read component. Results are deduplicated by
// path; a doc discovered for more than one component lists every
// contributing component in Components.
func ResolveForTouches(fs afero.Fs, m *manifest.Manifest, touches plan.Touches, cfg config.ScanConfig) []Ref {
	merged := make(map[string]*Ref)
	merge := func(component string, onlyPublic bool) {
		for _, r := range Discover(fs, m, component, cfg) {
			if onlyPublic && !r.Public {
				continue
			}
			if existing, ok := merged[r.Path]; ok {
				existing.Components = append(existing.Components, component)
				if r.Public {
					existing.Public = true
				}
				continue
			}
			cp := r
			cp.Components = []string{component}
			merged[r.Path] = &cp
		}
	}
	for _, c := range touches.Writes {
		merge(c, false)
	}
	for _, c := range touches.Reads {
		merge(c, true)
	}

	var out []Ref
	for _, r := range merged {
		sort.Strings(r.Components)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Freshness reports whether a component's docs are current relative to
// its source.
type Freshness struct {
	Component string
	DocPath   string // "N/A" when the component has no discoverable docs
	Stale     bool
}

// CheckFreshness compares the newest source-file mtime under component
// against the newest discovered-doc mtime. A component with no docs is
// always reported stale, with DocPath "N/A". A component whose source
// directory cannot be read is treated as having no source files (an empty
// tree is trivially not newer than its docs).
func CheckFreshness(fs afero.Fs, m *manifest.Manifest, component string, cfg config.ScanConfig) Freshness {
	c, ok := m.Components[component]
	if !ok {
		return Freshness{Component: component, DocPath: "N/A", Stale: true}
	}

	docRefs := Discover(fs, m, component, cfg)
	if len(docRefs) == 0 {
		return Freshness{Component: component, DocPath: "N/A", Stale: true}
	}

	var newestDoc time.Time
	var newestDocPath string
	for _, r := range docRefs {
		if info, err := fs.Stat(r.Path); err == nil && info.ModTime().After(newestDoc) {
			newestDoc = info.ModTime()
			newestDocPath = r.Path
		}
	}

	extSet := make(map[string]bool, len(cfg.SourceExtensions))
	for _, e := range cfg.SourceExtensions {
		extSet[e] = true
	}
	var newestSrc time.Time
	for _, root := range c.Path {
		walkNewest(fs, root, extSet, &newestSrc)
	}

	return Freshness{
		Component: component,
		DocPath:   newestDocPath,
		Stale:     newestSrc.After(newestDoc),
	}
}

func walkNewest(fs afero.Fs, root string, extSet map[string]bool, newest *time.Time) {
	info, err := fs.Stat(root)
	if err != nil {
		return // unreadable directory treated as empty
	}
	if !info.IsDir() {
		if extSet[filepath.Ext(root)] && info.ModTime().After(*newest) {
			*newest = info.ModTime()
		}
		return
	}
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return
	}
	for _, e := range entries {
		full := filepath.Join(root, e.Name())
		if e.IsDir() {
			walkNewest(fs, full, extSet, newest)
			continue
		}
		if extSet[filepath.Ext(e.Name())] && e.ModTime().After(*newest) {
			*newest = e.ModTime()
		}
	}
}

// WarmStalenessNote reports whether it's safe to resume a paused run
// without re-reading a component's docs: safe exactly when no source file
// under component has changed since lastCheckedAt, the time its docs were
// last read. The returned string is a human-readable explanation suitable
// for a resume-confirmation prompt.
func WarmStalenessNote(fs afero.Fs, m *manifest.Manifest, component string, cfg config.ScanConfig, lastCheckedAt time.Time) (safe bool, note string) {
	c, ok := m.Components[component]
	if !ok {
		return false, fmt.Sprintf("%s: unknown component, cannot verify staleness", component)
	}

	extSet := make(map[string]bool, len(cfg.SourceExtensions))
	for _, e := range cfg.SourceExtensions {
		extSet[e] = true
	}
	var newestSrc time.Time
	for _, root := range c.Path {
		walkNewest(fs, root, extSet, &newestSrc)
	}

	if newestSrc.After(lastCheckedAt) {
		return false, fmt.Sprintf("%s: source has changed since docs were last read; re-read before resuming", component)
	}
	return true, fmt.Sprintf("%s: source unchanged since last read, safe to resume", component)
}
