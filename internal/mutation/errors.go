package mutation

import "fmt"

// Code classifies a typed engine error at the operation boundary.
type Code string

// Boundary error codes.
const (
	// CodeInvalidInput marks input-shape errors raised before any tree
	// access.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeInvalidTarget marks a malformed or contradictory selector.
	CodeInvalidTarget Code = "INVALID_TARGET"

	// CodeTargetNotFound means a canonical address did not resolve.
	CodeTargetNotFound Code = "TARGET_NOT_FOUND"

	// CodeAmbiguousTarget means an identity key matched more than one
	// candidate.
	CodeAmbiguousTarget Code = "AMBIGUOUS_TARGET"

	// CodeCrossBlockMatch means match fragments spanned multiple blocks
	// where a single block was required.
	CodeCrossBlockMatch Code = "CROSS_BLOCK_MATCH"

	// CodeMatchNotFound means a selector produced no matches but the step
	// required at least one.
	CodeMatchNotFound Code = "MATCH_NOT_FOUND"

	// CodeRevisionMismatch means the document changed since the caller
	// resolved its state; re-resolve and retry the whole plan.
	CodeRevisionMismatch Code = "REVISION_MISMATCH"

	// CodePreconditionFailed means an assert step failed after mutation.
	CodePreconditionFailed Code = "PRECONDITION_FAILED"

	// CodeCapabilityUnavailable means a required operation, mark, or mode
	// is not supported.
	CodeCapabilityUnavailable Code = "CAPABILITY_UNAVAILABLE"

	// CodeNoOp means the step resolved but there was nothing to do.
	CodeNoOp Code = "NO_OP"
)

// Plan phases, recorded on errors for failure reporting.
const (
	PhaseCompile  = "compile"
	PhaseValidate = "validate"
	PhaseExecute  = "execute"
	PhaseAssert   = "assert"
)

// Error is the typed error carried across the engine boundary.
type Error struct {
	Code    Code           `json:"code"`
	StepID  string         `json:"stepId,omitempty"`
	Phase   string         `json:"phase,omitempty"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("%s (step %s): %s", e.Code, e.StepID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// newError creates a typed error for the given phase.
func newError(code Code, phase, stepID, message string) *Error {
	return &Error{Code: code, Phase: phase, StepID: stepID, Message: message}
}

// withDetail attaches a detail key and returns the error for chaining.
func (e *Error) withDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// AsError extracts a typed engine error, when err is one.
func AsError(err error) (*Error, bool) {
	te, ok := err.(*Error)
	return te, ok
}
