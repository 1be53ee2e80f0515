package mutation

import "github.com/wasimrehman05/superdoc-sub017/internal/doc"

// textExecutor implements the text.* operation kinds.
type textExecutor struct {
	schema *doc.Schema
}

func (*textExecutor) Ops() []string {
	return []string{"text.insert", "text.replace", "text.delete"}
}

// ValidateStep rejects targets the operation cannot act on before any
// execution starts.
func (e *textExecutor) ValidateStep(step *Step, targets []CompiledTarget) error {
	if _, err := marksFromStep(step, e.schema, PhaseValidate); err != nil {
		return err
	}
	if step.Op != "text.insert" {
		return nil
	}
	for _, t := range targets {
		switch tt := t.(type) {
		case RangeTarget:
			if !tt.IsCollapsed() {
				return newError(CodeInvalidTarget, PhaseValidate, step.ID,
					"insert requires a collapsed target").
					withDetail("blockId", tt.BlockID)
			}
		case SpanTarget:
			return newError(CodeCrossBlockMatch, PhaseValidate, step.ID,
				"insert target crosses block boundaries").
				withDetail("blockIds", segmentBlockIDs(tt.Segments))
		default:
			panic("mutation: unhandled compiled target variant")
		}
	}
	return nil
}

func (e *textExecutor) Execute(ctx *ExecContext, targets []CompiledTarget, step *Step) (StepOutcome, error) {
	marks, err := marksFromStep(step, e.schema, PhaseExecute)
	if err != nil {
		return StepOutcome{}, err
	}

	for _, t := range targets {
		switch tt := t.(type) {
		case RangeTarget:
			if err := e.executeRange(ctx, tt, step, marks); err != nil {
				return StepOutcome{}, err
			}
		case SpanTarget:
			if err := e.executeSpan(ctx, tt, step, marks); err != nil {
				return StepOutcome{}, err
			}
		default:
			panic("mutation: unhandled compiled target variant")
		}
	}

	return StepOutcome{Effect: textEffect(step.Op), MatchCount: len(targets)}, nil
}

func (e *textExecutor) executeRange(ctx *ExecContext, t RangeTarget, step *Step, marks []doc.Mark) error {
	from, to := ctx.MapRange(t.From, t.To)
	switch step.Op {
	case "text.insert":
		return insertText(ctx, from, step.Text, marks)
	case "text.replace":
		return replaceText(ctx, from, to, step.Text, marks)
	case "text.delete":
		if from == to {
			return newError(CodeNoOp, PhaseExecute, step.ID,
				"nothing to delete").
				withDetail("blockId", t.BlockID)
		}
		return deleteText(ctx, from, to)
	default:
		panic("mutation: unhandled text operation " + step.Op)
	}
}

func (e *textExecutor) executeSpan(ctx *ExecContext, t SpanTarget, step *Step, marks []doc.Mark) error {
	switch step.Op {
	case "text.delete", "text.replace":
	default:
		panic("mutation: unhandled text operation " + step.Op)
	}

	// Delete every segment in order; the shared mapping carries later
	// segment positions across earlier deletions.
	for _, seg := range t.Segments {
		from, to := ctx.MapRange(seg.From, seg.To)
		if from == to {
			continue
		}
		if err := deleteText(ctx, from, to); err != nil {
			return err
		}
	}
	if step.Op == "text.replace" && step.Text != "" {
		pos := ctx.Tx.Mapping().Map(t.Segments[0].From, -1)
		return insertText(ctx, pos, step.Text, marks)
	}
	return nil
}

func insertText(ctx *ExecContext, pos int, text string, marks []doc.Mark) error {
	if text == "" {
		return nil
	}
	if ctx.Mode == ChangeTracked {
		marks = doc.AddMark(marks, doc.NewMark(doc.MarkInsertion))
	}
	return ctx.Tx.Replace(pos, pos, text, marks)
}

func deleteText(ctx *ExecContext, from, to int) error {
	if ctx.Mode == ChangeTracked {
		return ctx.Tx.AddMark(from, to, doc.NewMark(doc.MarkDeletion))
	}
	return ctx.Tx.Replace(from, to, "", nil)
}

func replaceText(ctx *ExecContext, from, to int, text string, marks []doc.Mark) error {
	if ctx.Mode == ChangeTracked {
		if from < to {
			if err := ctx.Tx.AddMark(from, to, doc.NewMark(doc.MarkDeletion)); err != nil {
				return err
			}
		}
		return insertText(ctx, to, text, marks)
	}
	return ctx.Tx.Replace(from, to, text, marks)
}

func textEffect(op string) string {
	switch op {
	case "text.insert":
		return EffectInserted
	case "text.replace":
		return EffectReplaced
	case "text.delete":
		return EffectDeleted
	default:
		panic("mutation: unhandled text operation " + op)
	}
}

func segmentBlockIDs(segs []SpanSegment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.BlockID
	}
	return out
}

// marksFromStep materializes the step's mark names against the schema.
func marksFromStep(step *Step, schema *doc.Schema, phase string) ([]doc.Mark, error) {
	var out []doc.Mark
	for _, name := range step.Marks {
		typ := doc.MarkType(name)
		if !schema.HasMarkType(typ) {
			return nil, newError(CodeCapabilityUnavailable, phase, step.ID,
				"unsupported mark").
				withDetail("mark", name)
		}
		m := doc.NewMark(typ)
		if typ == doc.MarkLink && step.Attrs["href"] != "" {
			m.Attrs = map[string]string{"href": step.Attrs["href"]}
		}
		out = append(out, m)
	}
	return out, nil
}
