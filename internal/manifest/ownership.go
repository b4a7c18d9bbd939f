package manifest

import (
	"path/filepath"
	"sort"
	"strings"
)

// ownershipIndex resolves a file path to its owning component by
// longest-prefix match over every component's declared path entries.
// Entries are pre-sorted longest-first so OwningComponent can return on the
// first match.
type ownershipIndex struct {
	entries []ownershipEntry
}

type ownershipEntry struct {
	prefix    string
	component string
}

func buildOwnershipIndex(m *Manifest) *ownershipIndex {
	idx := &ownershipIndex{}
	for _, name := range m.Order {
		for _, p := range m.Components[name].Path {
			idx.entries = append(idx.entries, ownershipEntry{prefix: p, component: name})
		}
	}
	sort.Slice(idx.entries, func(i, j int) bool {
		return len(idx.entries[i].prefix) > len(idx.entries[j].prefix)
	})
	return idx
}

// OwningComponent returns the name of the component whose declared path
// prefix most specifically contains path, and true. If no component's path
// claims path, it returns "", false.
func (m *Manifest) OwningComponent(path string) (string, bool) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Clean(filepath.Join(m.Root, abs))
	} else {
		abs = filepath.Clean(abs)
	}
	for _, e := range m.ownership.entries {
		if abs == e.prefix || strings.HasPrefix(abs, e.prefix+string(filepath.Separator)) {
			return e.component, true
		}
	}
	return "", false
}
