// Package lint aggregates doc freshness, broken-link, and import-coupling
// findings from across the core analysis packages into one flat issue
// list, suitable for a CLI to print or a CI job to gate on.
package lint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"varp/internal/config"
	"varp/internal/docs"
	"varp/internal/importscan"
	"varp/internal/linkscan"
	"varp/internal/manifest"
)

// Severity ranks how strongly an Issue should block a workflow.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Category discriminates the kind of finding.
type Category string

const (
	CategoryFreshness     Category = "freshness"
	CategoryBrokenLink    Category = "broken-link"
	CategoryUndeclaredDep Category = "undeclared-dep"
	CategoryExtraneousDep Category = "extraneous-dep"
)

// Issue is one aggregated finding.
type Issue struct {
	Severity  Severity
	Category  Category
	Component string // empty when the issue isn't component-scoped
	Message   string
}

// Key returns a stable identity for an issue, independent of any transient
// detail (such as a line number), for use with a caller-supplied
// suppression set.
func (i Issue) Key() string {
	h := sha256.Sum256([]byte(string(i.Category) + "\x00" + i.Component + "\x00" + i.Message))
	return hex.EncodeToString(h[:])
}

// Report is the aggregated result of a lint run. ReportID identifies this
// call for log correlation only; it carries no semantic weight and must
// never be compared by callers.
type Report struct {
	ReportID        string
	Issues          []Issue
	WarningCount    int
	ErrorCount      int
	SuppressedCount int
}

// Run scans every component in m for doc freshness, broken links in its
// discovered docs, and import-scan dependency drift, merging the results
// into one Report. suppressed, if non-nil, is a set of Issue.Key() values
// to drop from the report (but still count) — typically populated from a
// checked-in suppressions file covering known, accepted findings.
func Run(ctx context.Context, fs afero.Fs, m *manifest.Manifest, cfg config.ScanConfig, suppressed map[string]bool) (*Report, error) {
	var issues []Issue

	for _, name := range m.Order {
		f := docs.CheckFreshness(fs, m, name, cfg)
		if f.Stale {
			issues = append(issues, Issue{
				Severity:  SeverityWarning,
				Category:  CategoryFreshness,
				Component: name,
				Message:   fmt.Sprintf("docs for %q are stale or missing (doc=%s)", name, f.DocPath),
			})
		}

		for _, ref := range docs.Discover(fs, m, name, cfg) {
			content, err := afero.ReadFile(fs, ref.Path)
			if err != nil {
				continue
			}
			slugs := linkscan.HeadingSlugs(string(content))
			for _, l := range linkscan.Scan(fs, ref.Path, string(content), slugs) {
				if l.Kind == linkscan.KindBroken {
					issues = append(issues, Issue{
						Severity:  SeverityError,
						Category:  CategoryBrokenLink,
						Component: name,
						Message:   fmt.Sprintf("%s: broken link to %q", ref.Path, l.Target),
					})
				}
			}
		}
	}

	scanResult, err := importscan.Scan(ctx, fs, m, cfg)
	if err != nil {
		return nil, err
	}
	for _, pair := range scanResult.MissingDeps {
		issues = append(issues, Issue{
			Severity:  SeverityError,
			Category:  CategoryUndeclaredDep,
			Component: pair.From,
			Message:   fmt.Sprintf("%q imports from %q without declaring it as a dependency", pair.From, pair.To),
		})
	}
	for _, pair := range scanResult.ExtraDeps {
		issues = append(issues, Issue{
			Severity:  SeverityWarning,
			Category:  CategoryExtraneousDep,
			Component: pair.From,
			Message:   fmt.Sprintf("%q declares a dependency on %q with no supporting import evidence", pair.From, pair.To),
		})
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Category != issues[j].Category {
			return issues[i].Category < issues[j].Category
		}
		if issues[i].Component != issues[j].Component {
			return issues[i].Component < issues[j].Component
		}
		return issues[i].Message < issues[j].Message
	})

	report := &Report{ReportID: uuid.New().String()}
	for _, iss := range issues {
		if suppressed[iss.Key()] {
			report.SuppressedCount++
			continue
		}
		report.Issues = append(report.Issues, iss)
		switch iss.Severity {
		case SeverityError:
			report.ErrorCount++
		case SeverityWarning:
			report.WarningCount++
		}
	}
	return report, nil
}
