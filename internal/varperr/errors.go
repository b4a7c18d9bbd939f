// Package varperr defines the four error kinds exposed at the core's boundary:
// ManifestError, PlanError, AnalysisError, and ErrCancelled. Each is a typed
// value carrying machine-readable context (component, task, path) alongside
// a human-readable message, so callers can errors.As into the kind they care
// about instead of matching on formatted strings.
package varperr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCancelled is returned by any long-running analysis when the caller's
// cancellation token fires. It is checked with errors.Is, not errors.As,
// since it carries no extra context.
var ErrCancelled = errors.New("varp: cancelled")

// ManifestReason discriminates the kinds of ManifestError.
type ManifestReason string

const (
	ReasonCycle           ManifestReason = "cycle_detected"
	ReasonUnknownDep       ManifestReason = "unknown_dep"
	ReasonDuplicateName    ManifestReason = "duplicate_component_name"
	ReasonPathConflict     ManifestReason = "path_conflict"
	ReasonUnknownComponent ManifestReason = "unknown_component_ref"
)

// ManifestError reports a structural defect in a Manifest: cycles, unknown
// deps, duplicate component names, or overlapping path claims that are not
// a strict prefix relationship.
type ManifestError struct {
	Reason     ManifestReason
	Components []string // offending component name(s), order preserved
	Ref        string    // offending ref, for ReasonUnknownComponent
	msg        string
}

func (e *ManifestError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return fmt.Sprintf("manifest error (%s): %s", e.Reason, strings.Join(e.Components, ", "))
}

// NewCycleError builds a ManifestError for a dependency cycle. components is
// the set of components Kahn's algorithm could not sort (the unsorted
// remainder), in detection order.
func NewCycleError(components []string) *ManifestError {
	return &ManifestError{
		Reason:     ReasonCycle,
		Components: components,
		msg:        fmt.Sprintf("dependency cycle detected among components: %s", strings.Join(components, ", ")),
	}
}

// NewUnknownDepError builds a ManifestError for a component declaring a dep
// on a name that doesn't exist in the manifest.
func NewUnknownDepError(component, dep string) *ManifestError {
	return &ManifestError{
		Reason:     ReasonUnknownDep,
		Components: []string{component},
		msg:        fmt.Sprintf("component %q declares unknown dependency %q", component, dep),
	}
}

// NewDuplicateNameError builds a ManifestError for a repeated component name.
func NewDuplicateNameError(name string) *ManifestError {
	return &ManifestError{
		Reason:     ReasonDuplicateName,
		Components: []string{name},
		msg:        fmt.Sprintf("duplicate component name %q", name),
	}
}

// NewPathConflictError builds a ManifestError for two components whose path
// claims overlap without one being a strict prefix of the other.
func NewPathConflictError(a, b, path string) *ManifestError {
	return &ManifestError{
		Reason:     ReasonPathConflict,
		Components: []string{a, b},
		msg:        fmt.Sprintf("components %q and %q both claim overlapping path %q without a strict prefix relationship", a, b, path),
	}
}

// UnknownComponentRef reports a reference (in touches, mutexes, etc.) that
// resolves to neither a component name nor a tag.
type UnknownComponentRef struct {
	Ref string
}

func (e *UnknownComponentRef) Error() string {
	return fmt.Sprintf("unknown component reference: %q", e.Ref)
}

// PlanErrorReason discriminates the kinds of PlanError.
type PlanErrorReason string

const (
	PlanReasonDuplicateTaskID   PlanErrorReason = "duplicate_task_id"
	PlanReasonUnknownRef        PlanErrorReason = "unknown_ref"
	PlanReasonEmptyVerify       PlanErrorReason = "empty_verify_command"
	PlanReasonDuplicateConditionID PlanErrorReason = "duplicate_condition_id"
	PlanReasonEmptyMutex        PlanErrorReason = "empty_mutex_name"
)

// PlanError reports a structural defect in a Plan: duplicate task IDs,
// unknown refs in touches, or empty verify commands.
type PlanError struct {
	Reason PlanErrorReason
	TaskID string
	Ref    string
	msg    string
}

func (e *PlanError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return fmt.Sprintf("plan error (%s): task=%s ref=%s", e.Reason, e.TaskID, e.Ref)
}

// NewDuplicateTaskIDError builds a PlanError for a task ID used more than once.
func NewDuplicateTaskIDError(taskID string) *PlanError {
	return &PlanError{
		Reason: PlanReasonDuplicateTaskID,
		TaskID: taskID,
		msg:    fmt.Sprintf("duplicate task id %q", taskID),
	}
}

// NewUnknownRefError builds a PlanError for a touches reference that
// resolves to neither a component name nor a tag.
func NewUnknownRefError(taskID, ref string) *PlanError {
	return &PlanError{
		Reason: PlanReasonUnknownRef,
		TaskID: taskID,
		Ref:    ref,
		msg:    fmt.Sprintf("task %q: unknown component or tag reference %q", taskID, ref),
	}
}

// NewEmptyVerifyError builds a PlanError for a contract condition with no
// verify command.
func NewEmptyVerifyError(conditionID string) *PlanError {
	return &PlanError{
		Reason: PlanReasonEmptyVerify,
		TaskID: conditionID,
		msg:    fmt.Sprintf("condition %q has an empty verify command", conditionID),
	}
}

// AnalysisErrorReason discriminates the kinds of AnalysisError.
type AnalysisErrorReason string

const (
	AnalysisReasonWaveCycle   AnalysisErrorReason = "wave_cycle_detected"
	AnalysisReasonIOWarning   AnalysisErrorReason = "io_warning"
	AnalysisReasonIOFatal     AnalysisErrorReason = "io_fatal"
)

// AnalysisError reports a problem detected during scheduling or a
// filesystem walk. Per-path I/O errors are non-fatal (Fatal=false) and
// should be surfaced as lint warnings by the caller; a component root that
// cannot be read at all is fatal.
type AnalysisError struct {
	Reason            AnalysisErrorReason
	Path              string
	TaskIDs           []string
	Fatal             bool
	SingleWriteHint   string // set when a wave cycle's tasks all share one write component
	msg               string
}

func (e *AnalysisError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return fmt.Sprintf("analysis error (%s): %s", e.Reason, e.Path)
}

// NewWaveCycleError builds an AnalysisError for a cycle discovered during
// wave assignment. If every task in the cycle shares a single write
// component, singleWriteComponent names it and a downgrade hint is attached.
func NewWaveCycleError(taskIDs []string, singleWriteComponent string) *AnalysisError {
	msg := fmt.Sprintf("cycle detected among tasks: %s", strings.Join(taskIDs, " -> "))
	if singleWriteComponent != "" {
		msg += fmt.Sprintf(" (all write %q; consider downgrading to sequential execution by task id)", singleWriteComponent)
	}
	return &AnalysisError{
		Reason:          AnalysisReasonWaveCycle,
		TaskIDs:         taskIDs,
		SingleWriteHint: singleWriteComponent,
		msg:             msg,
	}
}

// NewIOWarning builds a non-fatal AnalysisError for a single unreadable
// path encountered during a filesystem walk. The walk continues.
func NewIOWarning(path string, cause error) *AnalysisError {
	return &AnalysisError{
		Reason: AnalysisReasonIOWarning,
		Path:   path,
		Fatal:  false,
		msg:    fmt.Sprintf("warning: could not read %q: %v", path, cause),
	}
}

// NewIOFatal builds a fatal AnalysisError for an unreadable component root.
func NewIOFatal(path string, cause error) *AnalysisError {
	return &AnalysisError{
		Reason: AnalysisReasonIOFatal,
		Path:   path,
		Fatal:  true,
		msg:    fmt.Sprintf("component root %q is unreadable: %v", path, cause),
	}
}
