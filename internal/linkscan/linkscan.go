// Package linkscan extracts markdown links from a component's docs and
// classifies each one: an external URL, a same-document heading anchor, or
// a relative path to another file (resolved, or broken if the target
// doesn't exist).
package linkscan

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"varp/internal/manifest"
)

var linkPattern = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)

// Kind classifies a markdown link's target.
type Kind string

const (
	KindExternal Kind = "external"
	KindFragment Kind = "fragment"
	KindFile     Kind = "file"
	KindBroken   Kind = "broken"
)

// Link is one extracted, classified markdown link.
type Link struct {
	SourceDoc string
	Text      string
	Target    string // the raw target, fragment stripped for file/fragment kinds
	Kind      Kind
	Resolved  string // absolute path, set only for Kind == KindFile
}

// Scan extracts and classifies every link in doc's content. headingSlugs
// is the set of heading-derived slugs present in doc (case-folded), used
// to validate fragment links; pass nil if unavailable, in which case every
// fragment link classifies as KindFragment without further validation.
func Scan(fs afero.Fs, doc string, content string, headingSlugs map[string]bool) []Link {
	var links []Link
	for _, m := range linkPattern.FindAllStringSubmatch(content, -1) {
		isImage, text, target := m[1], m[2], m[3]
		if isImage == "!" {
			continue
		}
		links = append(links, classify(fs, doc, text, target, headingSlugs))
	}
	return links
}

func classify(fs afero.Fs, doc, text, target string, headingSlugs map[string]bool) Link {
	l := Link{SourceDoc: doc, Text: text, Target: target}

	if isExternal(target) {
		l.Kind = KindExternal
		return l
	}

	if strings.HasPrefix(target, "#") {
		l.Target = strings.TrimPrefix(target, "#")
		l.Kind = KindFragment
		if headingSlugs != nil && !headingSlugs[strings.ToLower(l.Target)] {
			l.Kind = KindBroken
		}
		return l
	}

	path := target
	if idx := strings.IndexByte(path, '#'); idx >= 0 {
		path = path[:idx]
	}
	resolved := filepath.Clean(filepath.Join(filepath.Dir(doc), path))
	if info, err := fs.Stat(resolved); err == nil && !info.IsDir() {
		l.Kind = KindFile
		l.Resolved = resolved
		l.Target = path
		return l
	}
	l.Kind = KindBroken
	l.Target = path
	return l
}

func isExternal(target string) bool {
	return strings.Contains(target, "://") || strings.HasPrefix(target, "mailto:")
}

// InferredDep is a component-to-component dependency implied by a file
// link whose source and target docs belong to different components.
type InferredDep struct {
	From, To string
	Link     Link
}

// InferDeps projects every KindFile link in links onto component pairs via
// m's ownership index, dropping same-component links and deduplicating by
// (from, to, resolved path).
func InferDeps(m *manifest.Manifest, links []Link) []InferredDep {
	seen := make(map[string]bool)
	var out []InferredDep
	for _, l := range links {
		if l.Kind != KindFile {
			continue
		}
		from, ok := m.OwningComponent(l.SourceDoc)
		if !ok {
			continue
		}
		to, ok := m.OwningComponent(l.Resolved)
		if !ok || from == to {
			continue
		}
		key := from + "\x00" + to + "\x00" + l.Resolved
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, InferredDep{From: from, To: to, Link: l})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// HeadingSlugs extracts the case-folded slug for every markdown heading
// ("## Some Title" -> "some-title") found in content, matching the
// convention GitHub-flavored renderers use for in-page anchors.
func HeadingSlugs(content string) map[string]bool {
	slugs := make(map[string]bool)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimLeft(line, "#")
		if len(trimmed) == len(line) {
			continue // no leading '#'
		}
		title := strings.TrimSpace(trimmed)
		if title == "" {
			continue
		}
		slugs[slugify(title)] = true
	}
	return slugs
}

var slugNonWord = regexp.MustCompile(`[^a-z0-9\- ]`)

func slugify(title string) string {
	s := strings.ToLower(title)
	s = slugNonWord.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	return s
}
