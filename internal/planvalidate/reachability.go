package planvalidate

import (
	"bytes"
	"fmt"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
)

// reachabilitySchema declares the transitive closure of dep_edge as a
// Datalog program. It's a handful of facts and two rules; spinning up a
// full Mangle engine for this is more than a plain BFS needs, but it states
// the write-reachability check as a declarative query rather than
// hand-rolled graph code. Other dependency-closure questions in the core
// (e.g. in internal/manifest) use plain Go graph traversal.
const reachabilitySchema = `
dep_edge(X, Y).
reachable(X, Y) :- dep_edge(X, Y).
reachable(X, Z) :- dep_edge(X, Y), reachable(Y, Z).
`

// reachabilityChecker evaluates transitive reachability over a component
// dependency graph expressed as dep_edge(From, To) facts.
type reachabilityChecker struct {
	store      factstore.FactStore
	reachableP ast.PredicateSym
}

// newReachabilityChecker builds a one-shot checker for edges: each pair
// contributes a dep_edge(from, to) fact, and the reachable/2 predicate is
// materialized eagerly so IsReachable is a plain fact-store lookup.
func newReachabilityChecker(edges [][2]string) (*reachabilityChecker, error) {
	unit, err := parse.Unit(bytes.NewReader([]byte(reachabilitySchema)))
	if err != nil {
		return nil, fmt.Errorf("planvalidate: parse reachability schema: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(parse.SourceUnit{Clauses: unit.Clauses, Decls: unit.Decls}, nil)
	if err != nil {
		return nil, fmt.Errorf("planvalidate: analyze reachability schema: %w", err)
	}

	var reachableSym, depEdgeSym ast.PredicateSym
	for sym := range programInfo.Decls {
		switch sym.Symbol {
		case "reachable":
			reachableSym = sym
		case "dep_edge":
			depEdgeSym = sym
		}
	}

	store := factstore.NewSimpleInMemoryStore()
	for _, e := range edges {
		atom := ast.NewAtom(depEdgeSym.Symbol, ast.String(e[0]), ast.String(e[1]))
		store.Add(atom)
	}

	if _, err := mengine.EvalProgramWithStats(programInfo, store); err != nil {
		return nil, fmt.Errorf("planvalidate: evaluate reachability program: %w", err)
	}

	return &reachabilityChecker{
		store:      store,
		reachableP: reachableSym,
	}, nil
}

// IsReachable reports whether to is reachable from from via one or more
// dep_edge hops.
func (c *reachabilityChecker) IsReachable(from, to string) bool {
	found := false
	_ = c.store.GetFacts(ast.NewQuery(c.reachableP), func(atom ast.Atom) error {
		if len(atom.Args) != 2 {
			return nil
		}
		if atom.Args[0] == ast.String(from) && atom.Args[1] == ast.String(to) {
			found = true
		}
		return nil
	})
	return found
}
