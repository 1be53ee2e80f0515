package mutation

import (
	"sort"
	"strings"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
	"github.com/wasimrehman05/superdoc-sub017/internal/doc/index"
)

// ExecContext is the shared execution state one plan's steps write to. The
// transaction and its mapping are the only shared mutable resource; write
// ownership passes strictly sequentially in declared step order.
type ExecContext struct {
	Tx    *doc.Transaction
	Base  *doc.Snapshot
	Index *index.Index
	Mode  ChangeMode
}

// MapRange carries a compiled range through every edit earlier steps
// already applied to the shared transaction.
func (ctx *ExecContext) MapRange(from, to int) (int, int) {
	if from == to {
		pos := ctx.Tx.Mapping().Map(from, 1)
		return pos, pos
	}
	return ctx.Tx.Mapping().MapRange(from, to)
}

// Step effects reported in receipts.
const (
	EffectInserted  = "inserted"
	EffectReplaced  = "replaced"
	EffectDeleted   = "deleted"
	EffectFormatted = "formatted"
	EffectCleared   = "cleared"
	EffectAsserted  = "asserted"
)

// Executor implements one operation-kind family. Execute is mandatory; the
// optional hooks are discovered by interface assertion.
type Executor interface {
	// Ops returns the operation kinds the executor implements.
	Ops() []string

	// Execute applies one step's compiled targets to the shared
	// transaction.
	Execute(ctx *ExecContext, targets []CompiledTarget, step *Step) (StepOutcome, error)
}

// CompileHook lets an executor replace the default target resolution.
type CompileHook interface {
	CompileStep(cctx *CompileContext, step *Step) ([]CompiledTarget, error)
}

// ValidateHook lets an executor reject compiled targets before any
// execution starts.
type ValidateHook interface {
	ValidateStep(step *Step, targets []CompiledTarget) error
}

// StepOutcome reports what one executed step did.
type StepOutcome struct {
	Effect     string
	MatchCount int
}

// Registry is the static operation-kind dispatch table. It is built once at
// engine initialization and never mutated afterwards.
type Registry struct {
	byPrefix map[string]Executor
	ops      map[string]Executor
}

// NewRegistry builds the registry with the built-in executors.
func NewRegistry(schema *doc.Schema) *Registry {
	r := &Registry{
		byPrefix: make(map[string]Executor),
		ops:      make(map[string]Executor),
	}
	r.add("text", &textExecutor{schema: schema})
	r.add("format", &formatExecutor{schema: schema})
	r.add("assert", &assertExecutor{})
	return r
}

func (r *Registry) add(prefix string, e Executor) {
	r.byPrefix[prefix] = e
	for _, op := range e.Ops() {
		r.ops[op] = e
	}
}

// Lookup resolves the executor for an operation kind.
func (r *Registry) Lookup(op string) (Executor, bool) {
	prefix, _, found := strings.Cut(op, ".")
	if !found {
		return nil, false
	}
	e, ok := r.byPrefix[prefix]
	if !ok {
		return nil, false
	}
	if _, ok := r.ops[op]; !ok {
		return nil, false
	}
	return e, true
}

// Ops returns every supported operation kind, sorted.
func (r *Registry) Ops() []string {
	out := make([]string, 0, len(r.ops))
	for op := range r.ops {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}
