// Package coupling cross-references structural coupling (import-scan
// evidence) against behavioral coupling (git co-change weight) between
// components, to surface the divergence between them: components that
// change together but declare no relationship are a hidden-coupling risk;
// components that import each other but never change together may have a
// stabler interface than their declared dependency suggests.
package coupling

import (
	"sort"

	"github.com/google/uuid"

	"varp/internal/cochange"
	"varp/internal/config"
	"varp/internal/importscan"
	"varp/internal/manifest"
)

// Classification names one cell of the structural x behavioral 2x2 table.
type Classification string

const (
	// ClassExplicitModule: declared/imported AND frequently co-edited —
	// the manifest's dependency accurately reflects how the code evolves.
	ClassExplicitModule Classification = "explicit_module"
	// ClassStableInterface: declared/imported but rarely co-edited — the
	// dependency exists but its interface has stayed stable.
	ClassStableInterface Classification = "stable_interface"
	// ClassHiddenCoupling: frequently co-edited but NOT declared/imported —
	// an undocumented coupling the manifest doesn't capture.
	ClassHiddenCoupling Classification = "hidden_coupling"
	// ClassUnrelated: neither declared nor co-edited.
	ClassUnrelated Classification = "unrelated"
)

// Edge is one component pair's coupling profile.
type Edge struct {
	A, B             string // canonical order: A < B
	StructuralWeight int    // count of import-scan evidence pieces between A and B, either direction
	BehavioralWeight float64
	Classification   Classification
}

// Matrix is the full pairwise coupling result for a manifest. ReportID
// identifies this call for log correlation only; it carries no semantic
// weight and must never be compared by callers.
type Matrix struct {
	ReportID            string
	Edges               []Edge
	StructuralThreshold int
	BehavioralThreshold float64
}

// Build projects file-level co-change edges onto component pairs via the
// manifest's ownership index, folds in import-scan evidence counts as the
// structural signal, calibrates thresholds (median of the positive
// weights, unless cfg overrides one or both), and classifies every pair
// that has either signal.
func Build(m *manifest.Manifest, coChange *cochange.Graph, imports *importscan.Result, cfg config.CouplingConfig) *Matrix {
	structural := make(map[pairKey]int)
	if imports != nil {
		for _, d := range imports.Deps {
			if d.FromComponent == d.ToComponent {
				continue
			}
			structural[canon(d.FromComponent, d.ToComponent)]++
		}
	}

	behavioral := make(map[pairKey]float64)
	if coChange != nil {
		for _, e := range coChange.Edges {
			ca, okA := m.OwningComponent(e.A)
			cb, okB := m.OwningComponent(e.B)
			if !okA || !okB || ca == cb {
				continue
			}
			behavioral[canon(ca, cb)] += e.Weight
		}
	}

	allPairs := make(map[pairKey]bool)
	for k := range structural {
		allPairs[k] = true
	}
	for k := range behavioral {
		allPairs[k] = true
	}

	structThresh := median(positiveInts(structural))
	behavThresh := medianFloat(positiveFloats(behavioral))
	if cfg.StructuralThreshold != nil {
		structThresh = *cfg.StructuralThreshold
	}
	if cfg.BehavioralThreshold != nil {
		behavThresh = *cfg.BehavioralThreshold
	}

	var edges []Edge
	for k := range allPairs {
		s := structural[k]
		b := behavioral[k]
		edges = append(edges, Edge{
			A: k.a, B: k.b,
			StructuralWeight: s,
			BehavioralWeight: b,
			Classification:   classify(s, b, structThresh, behavThresh),
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})

	return &Matrix{ReportID: uuid.New().String(), Edges: edges, StructuralThreshold: structThresh, BehavioralThreshold: behavThresh}
}

func classify(structural int, behavioral float64, structThresh int, behavThresh float64) Classification {
	highStruct := structural >= structThresh && structThresh > 0
	highBehav := behavioral >= behavThresh && behavThresh > 0
	switch {
	case highStruct && highBehav:
		return ClassExplicitModule
	case highStruct && !highBehav:
		return ClassStableInterface
	case !highStruct && highBehav:
		return ClassHiddenCoupling
	default:
		return ClassUnrelated
	}
}

// HiddenCoupling returns every hidden_coupling edge, sorted by descending
// behavioral weight: the pairs most worth turning into a declared
// dependency (or splitting apart) come first.
func (mx *Matrix) HiddenCoupling() []Edge {
	var out []Edge
	for _, e := range mx.Edges {
		if e.Classification == ClassHiddenCoupling {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BehavioralWeight > out[j].BehavioralWeight })
	return out
}

// Profile returns every edge touching component, sorted by descending
// behavioral weight.
func (mx *Matrix) Profile(component string) []Edge {
	var out []Edge
	for _, e := range mx.Edges {
		if e.A == component || e.B == component {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BehavioralWeight > out[j].BehavioralWeight })
	return out
}

type pairKey struct{ a, b string }

func canon(x, y string) pairKey {
	if x < y {
		return pairKey{x, y}
	}
	return pairKey{y, x}
}

func positiveInts(m map[pairKey]int) []int {
	var out []int
	for _, v := range m {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}

func positiveFloats(m map[pairKey]float64) []float64 {
	var out []float64
	for _, v := range m {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}

func median(xs []int) int {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]int(nil), xs...)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}

func medianFloat(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
