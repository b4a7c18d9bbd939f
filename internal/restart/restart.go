// Package restart derives what a scheduler should do after a dispatched
// task fails: retry it alone, retry it and whatever already consumed its
// output, or give up and ask the caller to decide.
package restart

import (
	"sort"

	"varp/internal/hazard"
	"varp/internal/plan"
)

// Strategy names the recovery action a scheduler should take.
type Strategy string

const (
	// StrategyIsolatedRetry retries only the failed task. Safe whenever no
	// already-dispatched task has consumed its (possibly bad) output yet.
	StrategyIsolatedRetry Strategy = "isolated_retry"
	// StrategyCascadeRestart retries the failed task and every
	// already-dispatched task that directly reads its output, since those
	// tasks may have already read a value the retry will overwrite with
	// something different. Tasks further downstream are not included.
	StrategyCascadeRestart Strategy = "cascade_restart"
	// StrategyEscalate reports that the scheduler cannot safely decide and
	// the caller (a human, or a higher-level controller) must intervene.
	StrategyEscalate Strategy = "escalate"
)

// Decision is the outcome of a restart-strategy derivation.
type Decision struct {
	Strategy Strategy
	Reason   string
	// Affected lists the failed task plus any readers to restart for
	// isolated_retry and cascade_restart; for escalate it lists the
	// completed readers, or is nil when the failed task is unknown or
	// already completed.
	Affected []string
}

// Derive decides how to recover from failedTask's failure, given the full
// task set, the IDs already marked completed, and the IDs already
// dispatched (which may overlap completed for tasks that finished).
//
// The decision tree:
//  1. If failedTask is not present in allTasks, or is already marked
//     completed, the scheduler's bookkeeping is inconsistent: escalate.
//  2. Compute readers: tasks (other than failedTask) whose declared reads
//     intersect failedTask's declared writes. This is a direct-readers set,
//     not a transitive closure — a task two RAW hops downstream is only
//     reached once its own direct producer is itself restarted and
//     re-derives a decision for its readers in turn.
//  3. If any reader is already completed, that reader has consumed the
//     failed attempt's (possibly bad) output and cannot be un-run:
//     escalate, with Affected listing the completed readers.
//  4. Else if any reader has already been dispatched, it may observe the
//     retried task's output diverge from what it read (or will read) from
//     the failed attempt: cascade_restart, with Affected listing
//     failedTask plus every dispatched reader.
//  5. Otherwise — whether failedTask has no readers at all, or its readers
//     exist but none have started — no other work can have observed bad
//     output, so isolated_retry suffices.
func Derive(failedTask plan.TaskRef, allTasks []plan.TaskRef, completedIDs, dispatchedIDs []string) Decision {
	byID := make(map[string]plan.TaskRef, len(allTasks))
	for _, t := range allTasks {
		byID[t.ID] = t
	}
	if _, ok := byID[failedTask.ID]; !ok {
		return Decision{Strategy: StrategyEscalate, Reason: "failed task is not a member of the known task set"}
	}
	completed := toSet(completedIDs)
	if completed[failedTask.ID] {
		return Decision{Strategy: StrategyEscalate, Reason: "failed task is already recorded as completed"}
	}
	dispatched := toSet(dispatchedIDs)

	hazards := hazard.Detect(allTasks)
	var readers []string
	for _, h := range hazards {
		if h.Kind != hazard.KindRAW {
			continue
		}
		if h.From == failedTask.ID {
			readers = append(readers, h.To)
		}
	}
	sort.Strings(readers)

	var completedReaders []string
	for _, r := range readers {
		if completed[r] {
			completedReaders = append(completedReaders, r)
		}
	}
	if len(completedReaders) > 0 {
		return Decision{
			Strategy: StrategyEscalate,
			Reason:   "a completed task already consumed the failed task's output; it cannot be safely re-run",
			Affected: completedReaders,
		}
	}

	var dispatchedReaders []string
	for _, r := range readers {
		if dispatched[r] {
			dispatchedReaders = append(dispatchedReaders, r)
		}
	}

	if len(dispatchedReaders) > 0 {
		affected := append([]string{failedTask.ID}, dispatchedReaders...)
		return Decision{
			Strategy: StrategyCascadeRestart,
			Reason:   "one or more already-dispatched tasks may have consumed the failed task's output",
			Affected: affected,
		}
	}

	if len(readers) == 0 {
		return Decision{
			Strategy: StrategyIsolatedRetry,
			Reason:   "no downstream consumers depend on this task's output",
			Affected: []string{failedTask.ID},
		}
	}

	return Decision{
		Strategy: StrategyIsolatedRetry,
		Reason:   "downstream consumers exist but none have been dispatched yet",
		Affected: []string{failedTask.ID},
	}
}

func toSet(xs []string) map[string]bool {
	s := make(map[string]bool, len(xs))
	for _, x := range xs {
		s[x] = true
	}
	return s
}
