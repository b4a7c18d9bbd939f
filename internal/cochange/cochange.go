// Package cochange builds a weighted file co-change graph from git commit
// history: files that are edited together in the same commit accumulate
// weight on the edge between them, discounted for commits that touch many
// files at once (a broad refactor says less about any one file pair than
// a two-file commit does).
package cochange

import (
	"context"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"varp/internal/config"
	"varp/internal/gitadapter"
	"varp/internal/varperr"
)

// Edge is the accumulated co-change weight between two files, named in a
// canonical (lexically smaller, lexically larger) order so a pair is
// never represented twice.
type Edge struct {
	A, B        string
	Weight      float64
	CommitCount int
}

// Graph is the result of a co-change analysis run.
type Graph struct {
	Edges                []Edge
	TotalCommitsAnalyzed int
	TotalCommitsFiltered int
}

// CancelFunc reports whether the caller has asked analysis to stop. It is
// checked once per commit while Build folds commits into edges.
type CancelFunc func() bool

// Build reads commits from adapter and folds them into a Graph. The caller
// does not supply commits: Build pulls history itself via
// adapter.LogNumstat, which returns the whole requested range as one
// slice, so memory use grows with history length as well as edge-map
// size. Commits are then filtered and weighted one at a time.
func Build(ctx context.Context, adapter gitadapter.Adapter, root, revRange string, cfg config.CoChangeConfig, cancel CancelFunc) (*Graph, error) {
	commits, err := adapter.LogNumstat(ctx, root, revRange)
	if err != nil {
		return nil, err
	}

	skipPatterns := make([]*regexp.Regexp, 0, len(cfg.SkipMessagePatterns))
	for _, p := range cfg.SkipMessagePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		skipPatterns = append(skipPatterns, re)
	}

	maxFiles := cfg.MaxFilesPerCommit
	if maxFiles <= 0 {
		maxFiles = 50
	}

	weights := make(map[string]*Edge)
	analyzed, filtered := 0, 0

	for _, c := range commits {
		if cancel != nil && cancel() {
			return nil, varperr.ErrCancelled
		}
		if shouldSkip(c.Message, skipPatterns) {
			filtered++
			continue
		}

		files := filterExcluded(c.Files, cfg.ExcludeGlobs)
		if len(files) < 2 || len(files) > maxFiles {
			filtered++
			continue
		}
		analyzed++

		mult := typeMultiplier(c.Message, cfg.TypeWeights)
		n := len(files)
		base := 2.0 / float64(n*(n-1)) * mult

		paths := make([]string, len(files))
		for i, f := range files {
			paths[i] = f.Path
		}
		sort.Strings(paths)

		for i := 0; i < len(paths); i++ {
			for j := i + 1; j < len(paths); j++ {
				key := paths[i] + "\x00" + paths[j]
				e, ok := weights[key]
				if !ok {
					e = &Edge{A: paths[i], B: paths[j]}
					weights[key] = e
				}
				e.Weight += base
				e.CommitCount++
			}
		}
	}

	edges := make([]Edge, 0, len(weights))
	for _, e := range weights {
		edges = append(edges, *e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})

	return &Graph{Edges: edges, TotalCommitsAnalyzed: analyzed, TotalCommitsFiltered: filtered}, nil
}

func shouldSkip(message string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

func filterExcluded(files []gitadapter.FileChange, globs []string) []gitadapter.FileChange {
	if len(globs) == 0 {
		return files
	}
	var out []gitadapter.FileChange
	for _, f := range files {
		excluded := false
		for _, g := range globs {
			if ok, _ := filepath.Match(g, f.Path); ok {
				excluded = true
				break
			}
			if ok, _ := filepath.Match(g, filepath.Base(f.Path)); ok {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, f)
		}
	}
	return out
}

// conventionalType extracts the "type" prefix of a conventional-commit
// style message, e.g. "refactor(core): simplify" -> "refactor".
func conventionalType(message string) string {
	idx := strings.IndexAny(message, "(:")
	if idx <= 0 {
		return ""
	}
	return strings.ToLower(message[:idx])
}

func typeMultiplier(message string, weights map[string]float64) float64 {
	t := conventionalType(message)
	if t == "" {
		return 1.0
	}
	if m, ok := weights[t]; ok {
		return m
	}
	return 1.0
}
