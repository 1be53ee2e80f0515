package mutation

import "github.com/wasimrehman05/superdoc-sub017/internal/doc"

// assertExecutor implements the assert.* operation kinds. Assert steps
// never mutate; they are evaluated against post-mutation state and raise
// PRECONDITION_FAILED on the strict path.
type assertExecutor struct{}

func (*assertExecutor) Ops() []string {
	return []string{"assert.textEquals", "assert.blockCount"}
}

// CompileStep keeps default resolution for positional asserts but lets
// assert.blockCount evaluate a whole node type without a cardinality
// constraint.
func (e *assertExecutor) CompileStep(cctx *CompileContext, step *Step) ([]CompiledTarget, error) {
	if step.Op == "assert.blockCount" {
		if step.Node == nil || step.Node.NodeType == "" {
			return nil, newError(CodeInvalidInput, PhaseCompile, step.ID,
				"assert.blockCount requires node.nodeType")
		}
		if step.Count == nil {
			return nil, newError(CodeInvalidInput, PhaseCompile, step.ID,
				"assert.blockCount requires count")
		}
		if !cctx.Schema.HasBlockType(doc.NodeType(step.Node.NodeType)) {
			return nil, newError(CodeCapabilityUnavailable, PhaseCompile, step.ID,
				"unsupported node type").
				withDetail("nodeType", step.Node.NodeType)
		}
		step.Expect = ExpectAny
		return nil, nil
	}
	return defaultCompileTargets(cctx, step)
}

func (e *assertExecutor) Execute(ctx *ExecContext, targets []CompiledTarget, step *Step) (StepOutcome, error) {
	switch step.Op {
	case "assert.textEquals":
		if err := e.assertTextEquals(ctx, targets, step); err != nil {
			return StepOutcome{}, err
		}
	case "assert.blockCount":
		if err := e.assertBlockCount(ctx, step); err != nil {
			return StepOutcome{}, err
		}
	default:
		panic("mutation: unhandled assert operation " + step.Op)
	}
	return StepOutcome{Effect: EffectAsserted, MatchCount: len(targets)}, nil
}

func (e *assertExecutor) assertTextEquals(ctx *ExecContext, targets []CompiledTarget, step *Step) error {
	for _, t := range targets {
		var actual string
		for i, seg := range targetSegments(t) {
			from, to := ctx.MapRange(seg.From, seg.To)
			text, err := ctx.Tx.Snapshot().TextBetween(from, to)
			if err != nil {
				return newError(CodePreconditionFailed, PhaseAssert, step.ID,
					"asserted range no longer resolves")
			}
			if i > 0 {
				actual += string(doc.BlockSeparator)
			}
			actual += text
		}
		if actual != step.Text {
			return newError(CodePreconditionFailed, PhaseAssert, step.ID,
				"text differs from expectation").
				withDetail("expected", step.Text).
				withDetail("actual", actual)
		}
	}
	return nil
}

func (e *assertExecutor) assertBlockCount(ctx *ExecContext, step *Step) error {
	typ := doc.NodeType(step.Node.NodeType)
	count := 0
	for _, span := range ctx.Tx.Snapshot().Blocks() {
		if span.Node.Type == typ {
			count++
		}
	}
	if count != *step.Count {
		return newError(CodePreconditionFailed, PhaseAssert, step.ID,
			"block count differs from expectation").
			withDetail("nodeType", step.Node.NodeType).
			withDetail("expected", *step.Count).
			withDetail("actual", count)
	}
	return nil
}
