package mutation

import "github.com/wasimrehman05/superdoc-sub017/internal/doc"

// formatExecutor implements the format.* operation kinds.
type formatExecutor struct {
	schema *doc.Schema
}

func (*formatExecutor) Ops() []string {
	return []string{"format.apply", "format.clear"}
}

func (e *formatExecutor) ValidateStep(step *Step, targets []CompiledTarget) error {
	marks, err := marksFromStep(step, e.schema, PhaseValidate)
	if err != nil {
		return err
	}
	if step.Op == "format.apply" && len(marks) == 0 {
		return newError(CodeInvalidInput, PhaseValidate, step.ID,
			"format.apply requires at least one mark")
	}
	for _, t := range targets {
		switch tt := t.(type) {
		case RangeTarget:
			if tt.IsCollapsed() {
				return newError(CodeInvalidTarget, PhaseValidate, step.ID,
					"cannot format a collapsed range").
					withDetail("blockId", tt.BlockID)
			}
		case SpanTarget:
			// span segments are non-empty by construction
		default:
			panic("mutation: unhandled compiled target variant")
		}
	}
	return nil
}

func (e *formatExecutor) Execute(ctx *ExecContext, targets []CompiledTarget, step *Step) (StepOutcome, error) {
	marks, err := marksFromStep(step, e.schema, PhaseExecute)
	if err != nil {
		return StepOutcome{}, err
	}

	if step.Op == "format.clear" {
		if err := e.checkClearable(ctx, targets, step, marks); err != nil {
			return StepOutcome{}, err
		}
	}

	for _, t := range targets {
		for _, seg := range targetSegments(t) {
			from, to := ctx.MapRange(seg.From, seg.To)
			if from == to {
				continue
			}
			switch step.Op {
			case "format.apply":
				for _, m := range marks {
					if err := ctx.Tx.AddMark(from, to, m); err != nil {
						return StepOutcome{}, err
					}
				}
			case "format.clear":
				for _, typ := range e.clearTypes(marks) {
					if err := ctx.Tx.RemoveMark(from, to, typ); err != nil {
						return StepOutcome{}, err
					}
				}
			default:
				panic("mutation: unhandled format operation " + step.Op)
			}
		}
	}

	effect := EffectFormatted
	if step.Op == "format.clear" {
		effect = EffectCleared
	}
	return StepOutcome{Effect: effect, MatchCount: len(targets)}, nil
}

// clearTypes returns the mark types format.clear removes: the listed marks,
// or every formatting mark when none are listed.
func (e *formatExecutor) clearTypes(marks []doc.Mark) []doc.MarkType {
	if len(marks) > 0 {
		out := make([]doc.MarkType, len(marks))
		for i, m := range marks {
			out[i] = m.Type
		}
		return out
	}
	var out []doc.MarkType
	for _, name := range e.schema.MarkTypes() {
		out = append(out, doc.MarkType(name))
	}
	return out
}

// checkClearable distinguishes "nothing to do" from a real clear: when no
// run in any target carries a clearable mark, the step is a NO_OP.
func (e *formatExecutor) checkClearable(ctx *ExecContext, targets []CompiledTarget, step *Step, marks []doc.Mark) error {
	types := e.clearTypes(marks)
	for _, t := range targets {
		for _, seg := range targetSegments(t) {
			runs, err := CaptureRunsInRange(ctx.Base, seg.From, seg.To)
			if err != nil {
				continue
			}
			for _, run := range runs {
				for _, typ := range types {
					if doc.HasMark(run.Marks, typ) {
						return nil
					}
				}
			}
		}
	}
	return newError(CodeNoOp, PhaseExecute, step.ID,
		"no matching formatting in range")
}

// targetSegments flattens either variant into block-confined segments.
func targetSegments(t CompiledTarget) []SpanSegment {
	switch tt := t.(type) {
	case RangeTarget:
		return []SpanSegment{{BlockID: tt.BlockID, From: tt.From, To: tt.To}}
	case SpanTarget:
		return tt.Segments
	default:
		panic("mutation: unhandled compiled target variant")
	}
}
