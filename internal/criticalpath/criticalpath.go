// Package criticalpath computes the longest RAW-only dependency chain
// through a plan's tasks. WAR, WAW, and MUTEX hazards never order tasks
// for this computation: only a true read-after-write dependency extends
// the chain, since that's the one hazard kind that cannot be parallelized
// away.
package criticalpath

import (
	"sort"

	"varp/internal/hazard"
	"varp/internal/plan"
)

// Path is the result of a critical-path computation.
type Path struct {
	TaskIDs []string // the path itself, in execution order
	Length  int      // number of tasks in the path
}

// Compute returns the longest RAW-ordered chain among tasks. If hazards is
// nil, RAW edges are derived by calling hazard.Detect. Ties are broken by
// preferring the lexicographically smaller ending task ID, and, among
// paths sharing an ending task, by preferring the lexicographically
// smaller predecessor at each join encountered while walking backward from
// the end.
func Compute(tasks []plan.TaskRef, hazards []hazard.Hazard) Path {
	if len(tasks) == 0 {
		return Path{}
	}
	if hazards == nil {
		hazards = hazard.Detect(tasks)
	}

	preds := make(map[string][]string) // task -> tasks it directly follows (RAW From)
	order := make([]string, 0, len(tasks))
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		order = append(order, t.ID)
		index[t.ID] = i
	}
	for _, h := range hazards {
		if h.Kind != hazard.KindRAW {
			continue
		}
		preds[h.To] = append(preds[h.To], h.From)
	}
	for id := range preds {
		sort.Strings(preds[id])
	}

	lengthMemo := make(map[string]int)
	bestPredMemo := make(map[string]string)
	visiting := make(map[string]bool)

	var longestEndingAt func(id string) int
	longestEndingAt = func(id string) int {
		if l, ok := lengthMemo[id]; ok {
			return l
		}
		if visiting[id] {
			// defensive: a cycle here would mean the wave scheduler should
			// already have rejected this task set. Treat as a length-1 floor
			// so computation still terminates.
			return 1
		}
		visiting[id] = true
		best := 0
		bestPred := ""
		for _, p := range preds[id] {
			l := longestEndingAt(p)
			if l > best || (l == best && (bestPred == "" || p < bestPred)) {
				best = l
				bestPred = p
			}
		}
		visiting[id] = false
		lengthMemo[id] = best + 1
		bestPredMemo[id] = bestPred
		return best + 1
	}

	bestLen := 0
	bestEnd := ""
	for _, id := range order {
		l := longestEndingAt(id)
		if l > bestLen || (l == bestLen && (bestEnd == "" || id < bestEnd)) {
			bestLen = l
			bestEnd = id
		}
	}
	if bestEnd == "" {
		return Path{}
	}

	var reversed []string
	cur := bestEnd
	for cur != "" {
		reversed = append(reversed, cur)
		cur = bestPredMemo[cur]
	}
	path := make([]string, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return Path{TaskIDs: path, Length: bestLen}
}
