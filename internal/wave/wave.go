// Package wave assigns plan tasks to execution waves: groups of tasks with
// no ordering dependency between them, which the caller may dispatch
// concurrently. Only RAW and WAW hazards create wave-ordering edges; WAR
// and MUTEX hazards are advisory and never delay a task's wave assignment.
package wave

import (
	"sort"

	"github.com/google/uuid"

	"varp/internal/hazard"
	"varp/internal/plan"
	"varp/internal/varperr"
)

// Wave is one group of tasks that carry no ordering dependency on each
// other. Tasks within a wave are ordered critical-path-first: a task that
// sits on a longer remaining RAW/WAW chain is listed before one that doesn't,
// so a caller dispatching tasks in list order front-loads the schedule's
// long pole. Ties are broken by task ID.
type Wave struct {
	Tasks []plan.TaskRef
}

// Result is Compute's return value. ReportID identifies this call for
// log correlation only; it carries no semantic weight and must never be
// compared by callers.
type Result struct {
	ReportID string
	Waves    []Wave
}

// Compute groups tasks into waves. It returns a varperr.AnalysisError with
// AnalysisReasonWaveCycle if the RAW/WAW dependency graph contains a
// cycle; when every task in the cycle writes the same single component,
// the error's SingleWriteHint names it.
func Compute(tasks []plan.TaskRef) (Result, error) {
	reportID := uuid.New().String()
	if len(tasks) == 0 {
		return Result{ReportID: reportID}, nil
	}

	hazards := hazard.Detect(tasks)
	byID := make(map[string]plan.TaskRef, len(tasks))
	order := make([]string, 0, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		order = append(order, t.ID)
	}

	preds := make(map[string][]string)
	succs := make(map[string][]string)
	for _, h := range hazards {
		if h.Kind != hazard.KindRAW && h.Kind != hazard.KindWAW {
			continue
		}
		preds[h.To] = append(preds[h.To], h.From)
		succs[h.From] = append(succs[h.From], h.To)
	}

	waveMemo := make(map[string]int)
	visiting := make(map[string]bool)
	var cyclePath []string

	var waveOf func(id string) (int, bool)
	waveOf = func(id string) (int, bool) {
		if w, ok := waveMemo[id]; ok {
			return w, true
		}
		if visiting[id] {
			cyclePath = append(cyclePath, id)
			return 0, false
		}
		visiting[id] = true
		max := -1
		for _, p := range preds[id] {
			w, ok := waveOf(p)
			if !ok {
				cyclePath = append(cyclePath, id)
				return 0, false
			}
			if w > max {
				max = w
			}
		}
		visiting[id] = false
		result := max + 1
		waveMemo[id] = result
		return result, true
	}

	for _, id := range order {
		if _, ok := waveOf(id); !ok {
			return Result{}, cycleError(byID, cyclePath)
		}
	}

	chainLen := make(map[string]int)
	var longestChainFrom func(id string) int
	longestChainFrom = func(id string) int {
		if l, ok := chainLen[id]; ok {
			return l
		}
		best := 0
		for _, s := range succs[id] {
			if l := longestChainFrom(s); l > best {
				best = l
			}
		}
		chainLen[id] = best + 1
		return best + 1
	}
	for _, id := range order {
		longestChainFrom(id)
	}

	buckets := make(map[int][]string)
	maxWave := 0
	for _, id := range order {
		w := waveMemo[id]
		buckets[w] = append(buckets[w], id)
		if w > maxWave {
			maxWave = w
		}
	}

	waves := make([]Wave, maxWave+1)
	for w := 0; w <= maxWave; w++ {
		ids := buckets[w]
		sort.Slice(ids, func(i, j int) bool {
			li, lj := chainLen[ids[i]], chainLen[ids[j]]
			if li != lj {
				return li > lj
			}
			return ids[i] < ids[j]
		})
		refs := make([]plan.TaskRef, len(ids))
		for i, id := range ids {
			refs[i] = byID[id]
		}
		waves[w] = Wave{Tasks: refs}
	}
	return Result{ReportID: reportID, Waves: waves}, nil
}

func cycleError(byID map[string]plan.TaskRef, cyclePath []string) error {
	seen := make(map[string]bool)
	var ids []string
	for _, id := range cyclePath {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	singleWrite := ""
	if len(ids) > 0 {
		common := make(map[string]bool)
		for i, id := range ids {
			writes := toSet(byID[id].Touches.Writes)
			if i == 0 {
				common = writes
				continue
			}
			common = intersectSets(common, writes)
		}
		if len(common) == 1 {
			for c := range common {
				singleWrite = c
			}
		}
	}
	return varperr.NewWaveCycleError(ids, singleWrite)
}

func toSet(xs []string) map[string]bool {
	s := make(map[string]bool, len(xs))
	for _, x := range xs {
		s[x] = true
	}
	return s
}

func intersectSets(a, b map[string]bool) map[string]bool {
	out := map[string]bool{}
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}
