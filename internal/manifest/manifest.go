// Package manifest implements the normalized component registry,
// longest-prefix file ownership lookup, tag expansion, and dependency-graph
// integrity checks (cycle detection, reverse-BFS invalidation cascade) that
// every other core subsystem borrows by reference.
package manifest

import (
	"path/filepath"
	"sort"
	"strings"

	"varp/internal/varperr"
)

// Stability classifies how settled a component's implementation is.
type Stability string

const (
	StabilityStable       Stability = "stable"
	StabilityActive       Stability = "active"
	StabilityExperimental Stability = "experimental"
)

// Component is a named, path-anchored module.
type Component struct {
	Name      string
	Path      []string // normalized absolute path prefixes
	Deps      []string
	Docs      []string // explicit doc paths, outside the component's own path tree
	Tags      []string
	Env       []string
	Stability Stability
	Test      string
}

// Manifest is a normalized, immutable component registry. Construct with
// New; once built, a Manifest is safe for concurrent read by every caller.
type Manifest struct {
	Version    string
	Root       string // the manifest's directory; path normalization root
	Components map[string]*Component // name -> component, insertion order tracked separately
	Order      []string               // component names in manifest/insertion order

	ownership *ownershipIndex
}

// RawComponent is the shape a parsed-but-unvalidated manifest document
// supplies per component, before path normalization. Path may be a single
// string or a list of strings in the source document; callers of New
// normalize that themselves into PathEntries.
type RawComponent struct {
	Name        string
	PathEntries []string
	Deps        []string
	Docs        []string
	Tags        []string
	Env         []string
	Stability   Stability
	Test        string
}

// New constructs a Manifest from already-parsed, ordered raw components.
// It normalizes every path entry to an absolute path rooted at root,
// validates name uniqueness, deps existence, and dep-graph acyclicity, and
// builds the ownership index. It never mutates raw.
func New(root, version string, raw []RawComponent) (*Manifest, error) {
	m := &Manifest{
		Version:    version,
		Root:       root,
		Components: make(map[string]*Component, len(raw)),
		Order:      make([]string, 0, len(raw)),
	}

	for _, rc := range raw {
		if _, exists := m.Components[rc.Name]; exists {
			return nil, varperr.NewDuplicateNameError(rc.Name)
		}
		paths := make([]string, 0, len(rc.PathEntries))
		for _, p := range rc.PathEntries {
			paths = append(paths, normalizePath(root, p))
		}
		docs := make([]string, 0, len(rc.Docs))
		for _, d := range rc.Docs {
			docs = append(docs, normalizePath(root, d))
		}
		c := &Component{
			Name:      rc.Name,
			Path:      paths,
			Deps:      append([]string(nil), rc.Deps...),
			Docs:      docs,
			Tags:      append([]string(nil), rc.Tags...),
			Env:       append([]string(nil), rc.Env...),
			Stability: rc.Stability,
			Test:      rc.Test,
		}
		m.Components[c.Name] = c
		m.Order = append(m.Order, c.Name)
	}

	for _, name := range m.Order {
		c := m.Components[name]
		if name == "" {
			continue
		}
		for _, dep := range c.Deps {
			if dep == name {
				return nil, varperr.NewCycleError([]string{name})
			}
			if _, ok := m.Components[dep]; !ok {
				return nil, varperr.NewUnknownDepError(name, dep)
			}
		}
	}

	if err := checkPathConflicts(m); err != nil {
		return nil, err
	}

	if _, err := TopologicalOrder(m); err != nil {
		return nil, err
	}

	m.ownership = buildOwnershipIndex(m)
	return m, nil
}

func normalizePath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(root, p))
}

// checkPathConflicts rejects two components whose path claims overlap
// without a strict prefix relationship between them.
func checkPathConflicts(m *Manifest) error {
	type entry struct {
		component string
		path      string
	}
	var all []entry
	for _, name := range m.Order {
		for _, p := range m.Components[name].Path {
			all = append(all, entry{name, p})
		}
	}
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			if a.component == b.component {
				continue
			}
			if isStrictPrefix(a.path, b.path) || isStrictPrefix(b.path, a.path) {
				continue
			}
			if !overlaps(a.path, b.path) {
				continue
			}
			return varperr.NewPathConflictError(a.component, b.component, a.path)
		}
	}
	return nil
}

func isStrictPrefix(prefix, path string) bool {
	if prefix == path {
		return false
	}
	return strings.HasPrefix(path, prefix+string(filepath.Separator))
}

func overlaps(a, b string) bool {
	return strings.HasPrefix(a, b+string(filepath.Separator)) ||
		strings.HasPrefix(b, a+string(filepath.Separator)) ||
		a == b
}

// TopologicalOrder returns component names in dependency order (deps
// before dependents) using Kahn's algorithm. If the manifest's dep graph
// contains a cycle, the sorted prefix will be shorter than the component
// count; the unsorted remainder is reported via varperr.ManifestError.
func TopologicalOrder(m *Manifest) ([]string, error) {
	indegree := make(map[string]int, len(m.Order))
	dependents := make(map[string][]string, len(m.Order))
	for _, name := range m.Order {
		indegree[name] = 0
	}
	for _, name := range m.Order {
		for _, dep := range m.Components[name].Deps {
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	queue := make([]string, 0, len(m.Order))
	for _, name := range m.Order {
		if indegree[name] == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var sorted []string
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		sorted = append(sorted, n)

		var next []string
		for _, d := range dependents[n] {
			indegree[d]--
			if indegree[d] == 0 {
				next = append(next, d)
			}
		}
		sort.Strings(next)
		queue = append(queue, next...)
	}

	if len(sorted) < len(m.Order) {
		sortedSet := make(map[string]bool, len(sorted))
		for _, s := range sorted {
			sortedSet[s] = true
		}
		var remainder []string
		for _, name := range m.Order {
			if !sortedSet[name] {
				remainder = append(remainder, name)
			}
		}
		sort.Strings(remainder)
		return nil, varperr.NewCycleError(remainder)
	}
	return sorted, nil
}

// InvalidationCascade performs breadth-first traversal over the
// reverse-dependency map (edges b -> a whenever a.Deps contains b) starting
// from changed. The result is the transitive closure of affected
// components, including changed itself, ordered breadth-first (closest
// first). Unknown names in changed are ignored.
func InvalidationCascade(m *Manifest, changed []string) []string {
	reverse := make(map[string][]string, len(m.Order))
	for _, name := range m.Order {
		for _, dep := range m.Components[name].Deps {
			reverse[dep] = append(reverse[dep], name)
		}
	}
	for _, deps := range reverse {
		sort.Strings(deps)
	}

	visited := make(map[string]bool, len(m.Order))
	var order []string
	queue := make([]string, 0, len(changed))
	for _, c := range changed {
		if _, ok := m.Components[c]; !ok {
			continue
		}
		if !visited[c] {
			visited[c] = true
			queue = append(queue, c)
			order = append(order, c)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dependent := range reverse[cur] {
			if !visited[dependent] {
				visited[dependent] = true
				queue = append(queue, dependent)
				order = append(order, dependent)
			}
		}
	}
	return order
}

// ResolveComponentRefs expands each ref in refs to one or more component
// names: a ref matching a component name wins over a same-named tag; a ref
// matching only a tag expands to every component bearing that tag; a ref
// matching neither fails. The result is deduplicated preserving first-seen
// order.
func ResolveComponentRefs(m *Manifest, refs []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, ref := range refs {
		if _, ok := m.Components[ref]; ok {
			if !seen[ref] {
				seen[ref] = true
				out = append(out, ref)
			}
			continue
		}
		matched := false
		for _, name := range m.Order {
			for _, tag := range m.Components[name].Tags {
				if tag == ref {
					matched = true
					if !seen[name] {
						seen[name] = true
						out = append(out, name)
					}
					break
				}
			}
		}
		if !matched {
			return nil, &varperr.UnknownComponentRef{Ref: ref}
		}
	}
	return out, nil
}
