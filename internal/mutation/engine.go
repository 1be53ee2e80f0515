package mutation

import (
	"encoding/json"
	"errors"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
	"github.com/wasimrehman05/superdoc-sub017/internal/doc/index"
)

// Engine executes mutation plans against one document session. It is
// instantiated per session together with its revision tracker, so engine
// state never leaks across documents.
type Engine struct {
	doc      *doc.Doc
	tracker  *Tracker
	registry *Registry
	limits   Limits
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimits overrides the default safety limits.
func WithLimits(l Limits) Option {
	return func(e *Engine) { e.limits = l }
}

// NewEngine creates a plan engine for the document. The executor registry
// is built here, once, and never mutated afterwards.
func NewEngine(d *doc.Doc, tracker *Tracker, opts ...Option) *Engine {
	e := &Engine{
		doc:     d,
		tracker: tracker,
		limits:  DefaultLimits(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.registry = NewRegistry(d.Schema())
	return e
}

// Tracker returns the session's revision tracker.
func (e *Engine) Tracker() *Tracker { return e.tracker }

// Limits returns the engine's safety limits.
func (e *Engine) Limits() Limits { return e.limits }

// Ops returns the supported operation kinds.
func (e *Engine) Ops() []string { return e.registry.Ops() }

// Apply compiles, validates, and executes a plan, dispatching its
// transaction exactly once. Any failure before dispatch leaves the document
// untouched.
func (e *Engine) Apply(req PlanRequest) (*PlanReceipt, error) {
	mode, err := normalizeMode(req.ChangeMode, e.doc.Schema())
	if err != nil {
		return nil, err
	}
	if err := e.tracker.CheckRevision(req.ExpectedRevision); err != nil {
		return nil, err
	}

	before := e.tracker.Revision()
	snap := e.doc.Snapshot()
	cctx := &CompileContext{
		Snap:   snap,
		Index:  index.Build(snap),
		Schema: e.doc.Schema(),
		Limits: e.limits,
	}
	plan, err := Compile(cctx, e.registry, req.Steps, before)
	if err != nil {
		return nil, err
	}

	tx := e.doc.NewTransaction()
	ectx := &ExecContext{Tx: tx, Base: snap, Index: cctx.Index, Mode: mode}

	outcomes := make([]StepOutcome, len(plan.Steps))
	for i := range plan.Steps {
		cs := &plan.Steps[i]
		if cs.Step.IsAssert() {
			continue
		}
		out, err := cs.Exec.Execute(ectx, cs.Targets, &cs.Step)
		if err != nil {
			return nil, execError(err, cs.Step.ID)
		}
		outcomes[i] = out
	}
	for i := range plan.Steps {
		cs := &plan.Steps[i]
		if !cs.Step.IsAssert() {
			continue
		}
		out, err := cs.Exec.Execute(ectx, cs.Targets, &cs.Step)
		if err != nil {
			return nil, execError(err, cs.Step.ID)
		}
		outcomes[i] = out
	}

	if err := e.doc.Dispatch(tx); err != nil {
		if errors.Is(err, doc.ErrStaleTransaction) {
			return nil, newError(CodeRevisionMismatch, PhaseExecute, "",
				"document changed during plan execution; retry the plan").
				withDetail("currentRevision", e.tracker.Revision())
		}
		return nil, err
	}

	return &PlanReceipt{
		Revision: RevisionSpan{Before: before, After: e.tracker.Revision()},
		Steps:    stepReceipts(plan, outcomes, len(plan.Steps)),
		Success:  true,
	}, nil
}

// Preview runs the same compile and execute path as Apply against an
// ephemeral transaction that is never dispatched. Failures are collected
// instead of raised; the evaluated revision is the compiled snapshot's, not
// re-read afterwards.
func (e *Engine) Preview(req PlanRequest) (*PreviewOutput, error) {
	mode, err := normalizeMode(req.ChangeMode, e.doc.Schema())
	if err != nil {
		return nil, err
	}
	if err := e.tracker.CheckRevision(req.ExpectedRevision); err != nil {
		return nil, err
	}

	evaluated := e.tracker.Revision()
	snap := e.doc.Snapshot()
	cctx := &CompileContext{
		Snap:   snap,
		Index:  index.Build(snap),
		Schema: e.doc.Schema(),
		Limits: e.limits,
	}
	plan, err := Compile(cctx, e.registry, req.Steps, evaluated)
	if err != nil {
		return &PreviewOutput{
			EvaluatedRevision: evaluated,
			Valid:             false,
			Failures:          []*Error{previewFailure(err)},
		}, nil
	}

	tx := e.doc.NewTransaction()
	ectx := &ExecContext{Tx: tx, Base: snap, Index: cctx.Index, Mode: mode}

	var failures []*Error
	outcomes := make([]StepOutcome, len(plan.Steps))
	completed := 0
	for i := range plan.Steps {
		cs := &plan.Steps[i]
		if cs.Step.IsAssert() {
			continue
		}
		out, err := cs.Exec.Execute(ectx, cs.Targets, &cs.Step)
		if err != nil {
			failures = append(failures, previewFailure(execError(err, cs.Step.ID)))
			break
		}
		outcomes[i] = out
		completed = i + 1
	}
	if len(failures) == 0 {
		completed = len(plan.Steps)
		for i := range plan.Steps {
			cs := &plan.Steps[i]
			if !cs.Step.IsAssert() {
				continue
			}
			out, err := cs.Exec.Execute(ectx, cs.Targets, &cs.Step)
			if err != nil {
				failures = append(failures, previewFailure(execError(err, cs.Step.ID)))
				continue
			}
			outcomes[i] = out
		}
	}

	out := &PreviewOutput{
		EvaluatedRevision: evaluated,
		Steps:             stepReceipts(plan, outcomes, completed),
		Valid:             len(failures) == 0,
	}
	if len(failures) > 0 {
		out.Failures = failures
	}
	return out, nil
}

// Canonical returns the receipt's canonical serialization: fixed field
// order, declared step order, no timing or map iteration leaks. Identical
// plans on identical starting states serialize byte-identically.
func (r *PlanReceipt) Canonical() ([]byte, error) {
	return json.Marshal(r)
}

func stepReceipts(plan *CompiledPlan, outcomes []StepOutcome, upto int) []StepReceipt {
	out := make([]StepReceipt, 0, upto)
	for i := 0; i < upto && i < len(plan.Steps); i++ {
		if outcomes[i].Effect == "" && plan.Steps[i].Step.IsAssert() {
			continue
		}
		out = append(out, StepReceipt{
			ID:         plan.Steps[i].Step.ID,
			Op:         plan.Steps[i].Step.Op,
			Effect:     outcomes[i].Effect,
			MatchCount: outcomes[i].MatchCount,
		})
	}
	return out
}

// execError guarantees execute-phase failures carry the typed shape.
func execError(err error, stepID string) *Error {
	if te, ok := AsError(err); ok {
		if te.Phase == "" {
			te.Phase = PhaseExecute
		}
		if te.StepID == "" {
			te.StepID = stepID
		}
		return te
	}
	return newError(CodeInvalidTarget, PhaseExecute, stepID, err.Error())
}

func previewFailure(err error) *Error {
	if te, ok := AsError(err); ok {
		return te
	}
	return newError(CodeInvalidInput, PhaseCompile, "", err.Error())
}

func normalizeMode(mode ChangeMode, schema *doc.Schema) (ChangeMode, error) {
	switch mode {
	case "", ChangeDirect:
		return ChangeDirect, nil
	case ChangeTracked:
		if !schema.HasMarkType(doc.MarkInsertion) || !schema.HasMarkType(doc.MarkDeletion) {
			return "", newError(CodeCapabilityUnavailable, PhaseCompile, "",
				"tracked changes are not supported by the document schema")
		}
		return ChangeTracked, nil
	default:
		return "", newError(CodeInvalidInput, PhaseCompile, "",
			"unknown change mode").
			withDetail("changeMode", string(mode))
	}
}
