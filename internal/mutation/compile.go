package mutation

import (
	"fmt"
	"sort"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
	"github.com/wasimrehman05/superdoc-sub017/internal/doc/index"
)

// Limits are the safety limits advertised to callers and enforced at
// compile time.
type Limits struct {
	MaxPlanSteps      int `json:"maxPlanSteps"`
	MaxFindPatternLen int `json:"maxFindPatternLen"`
	MaxMatches        int `json:"maxMatches"`
}

// DefaultLimits returns the default safety limits.
func DefaultLimits() Limits {
	return Limits{
		MaxPlanSteps:      64,
		MaxFindPatternLen: 1024,
		MaxMatches:        256,
	}
}

// CompileContext carries the fixed snapshot every step of one plan resolves
// against. The context is owned by a single Compile call and discarded
// after.
type CompileContext struct {
	Snap   *doc.Snapshot
	Index  *index.Index
	Schema *doc.Schema
	Limits Limits
}

// CompiledStep pairs a step with its executor and resolved targets.
type CompiledStep struct {
	Step    Step
	Exec    Executor
	Targets []CompiledTarget
}

// CompiledPlan is the all-or-nothing result of compiling a step list:
// every step resolved against one snapshot, in declared order.
type CompiledPlan struct {
	Steps    []CompiledStep
	Revision string
}

// Compile resolves an ordered step list against one fixed snapshot. An
// earlier step's selector never observes a later step's effects. Any
// failure aborts the whole compile.
func Compile(cctx *CompileContext, reg *Registry, steps []Step, revision string) (*CompiledPlan, error) {
	if len(steps) == 0 {
		return nil, newError(CodeInvalidInput, PhaseCompile, "", "plan has no steps")
	}
	if cctx.Limits.MaxPlanSteps > 0 && len(steps) > cctx.Limits.MaxPlanSteps {
		return nil, newError(CodeInvalidInput, PhaseCompile, "", "plan exceeds step limit").
			withDetail("maxPlanSteps", cctx.Limits.MaxPlanSteps)
	}

	plan := &CompiledPlan{Revision: revision}
	for i, step := range steps {
		if step.ID == "" {
			step.ID = fmt.Sprintf("step-%d", i+1)
		}
		exec, ok := reg.Lookup(step.Op)
		if !ok {
			return nil, newError(CodeCapabilityUnavailable, PhaseCompile, step.ID,
				"unsupported operation kind").
				withDetail("op", step.Op)
		}

		var targets []CompiledTarget
		var err error
		if hook, ok := exec.(CompileHook); ok {
			targets, err = hook.CompileStep(cctx, &step)
		} else {
			targets, err = defaultCompileTargets(cctx, &step)
		}
		if err != nil {
			return nil, err
		}
		if err := checkCardinality(&step, len(targets)); err != nil {
			return nil, err
		}
		plan.Steps = append(plan.Steps, CompiledStep{Step: step, Exec: exec, Targets: targets})
	}

	// Validation runs only after every target compiled.
	for i := range plan.Steps {
		cs := &plan.Steps[i]
		if hook, ok := cs.Exec.(ValidateHook); ok {
			if err := hook.ValidateStep(&cs.Step, cs.Targets); err != nil {
				return nil, err
			}
		}
	}
	if err := validateOverlap(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func checkCardinality(step *Step, count int) error {
	switch step.cardinality() {
	case ExpectOne:
		if count == 0 {
			return newError(CodeMatchNotFound, PhaseCompile, step.ID,
				"selector matched nothing")
		}
		if count > 1 {
			return newError(CodeAmbiguousTarget, PhaseCompile, step.ID,
				"selector matched more than one target").
				withDetail("matchCount", count)
		}
	case ExpectSome:
		if count == 0 {
			return newError(CodeMatchNotFound, PhaseCompile, step.ID,
				"selector matched nothing")
		}
	case ExpectAny:
		// any count is acceptable
	default:
		return newError(CodeInvalidInput, PhaseCompile, step.ID,
			"unknown cardinality").
			withDetail("expect", string(step.Expect))
	}
	return nil
}

// defaultCompileTargets resolves a step's selector into compiled targets.
func defaultCompileTargets(cctx *CompileContext, step *Step) ([]CompiledTarget, error) {
	switch {
	case step.Find != nil:
		if step.Target != nil || step.Node != nil || step.BlockID != "" ||
			step.Offset != nil || step.Start != nil || step.End != nil {
			return nil, newError(CodeInvalidTarget, PhaseCompile, step.ID,
				"find cannot be combined with another selector")
		}
		return findTargets(cctx, step)
	case step.Node != nil:
		if step.Target != nil || step.BlockID != "" {
			return nil, newError(CodeInvalidTarget, PhaseCompile, step.ID,
				"node cannot be combined with another selector")
		}
		return nodeTargets(cctx, step)
	default:
		addr, err := normalizeLocator(step)
		if err != nil {
			return nil, err
		}
		resolved, err := ResolveTextTarget(cctx.Index, *addr, step.ID)
		if err != nil {
			return nil, err
		}
		if resolved == nil {
			return nil, newError(CodeTargetNotFound, PhaseCompile, step.ID,
				"text address did not resolve").
				withDetail("blockId", addr.BlockID)
		}
		target, err := makeTarget(cctx, step.ID, resolved.From, resolved.To)
		if err != nil {
			return nil, err
		}
		return []CompiledTarget{target}, nil
	}
}

// nodeTargets resolves a structural or entity address to one target
// covering the candidate's range.
func nodeTargets(cctx *CompileContext, step *Step) ([]CompiledTarget, error) {
	n := step.Node
	switch {
	case n.NodeID != "" || n.NodeType != "":
		if n.EntityID != "" || n.EntityType != "" {
			return nil, newError(CodeInvalidTarget, PhaseCompile, step.ID,
				"node address mixes block and entity identity")
		}
		if n.NodeID == "" {
			return typeTargets(cctx, step, doc.NodeType(n.NodeType))
		}
		cand, res := cctx.Index.Block(n.NodeID)
		switch res {
		case index.LookupNotFound:
			return nil, newError(CodeTargetNotFound, PhaseCompile, step.ID,
				"node address did not resolve").
				withDetail("nodeId", n.NodeID)
		case index.LookupAmbiguous:
			return nil, newError(CodeAmbiguousTarget, PhaseCompile, step.ID,
				"node identity is ambiguous").
				withDetail("nodeId", n.NodeID)
		}
		if n.NodeType != "" && cand.NodeType != doc.NodeType(n.NodeType) {
			return nil, newError(CodeTargetNotFound, PhaseCompile, step.ID,
				"node type does not match the resolved node").
				withDetail("nodeId", n.NodeID).
				withDetail("nodeType", n.NodeType)
		}
		target, err := makeTarget(cctx, step.ID, cand.Pos, cand.End)
		if err != nil {
			return nil, err
		}
		return []CompiledTarget{target}, nil

	case n.EntityID != "" && n.EntityType != "":
		cand, res := cctx.Index.Entity(n.EntityType, n.EntityID)
		switch res {
		case index.LookupNotFound:
			return nil, newError(CodeTargetNotFound, PhaseCompile, step.ID,
				"entity address did not resolve").
				withDetail("entityType", n.EntityType).
				withDetail("entityId", n.EntityID)
		case index.LookupAmbiguous:
			return nil, newError(CodeAmbiguousTarget, PhaseCompile, step.ID,
				"entity identity is ambiguous").
				withDetail("entityType", n.EntityType).
				withDetail("entityId", n.EntityID)
		}
		target, err := makeTarget(cctx, step.ID, cand.Pos, cand.End)
		if err != nil {
			return nil, err
		}
		return []CompiledTarget{target}, nil

	default:
		return nil, newError(CodeInvalidInput, PhaseCompile, step.ID,
			"node address requires nodeType/nodeId or entityType/entityId")
	}
}

// typeTargets resolves every block of one type, for "any"/"some" selectors.
func typeTargets(cctx *CompileContext, step *Step, typ doc.NodeType) ([]CompiledTarget, error) {
	if !cctx.Schema.HasBlockType(typ) {
		return nil, newError(CodeCapabilityUnavailable, PhaseCompile, step.ID,
			"unsupported node type").
			withDetail("nodeType", string(typ))
	}
	var out []CompiledTarget
	for _, cand := range cctx.Index.BlocksOfType(typ) {
		target, err := makeTarget(cctx, step.ID, cand.Pos, cand.End)
		if err != nil {
			return nil, err
		}
		out = append(out, target)
	}
	return out, nil
}

// findTargets searches the flattened text for literal occurrences. A hit
// confined to one block is decomposed into its formatting-run fragments and
// normalized back into one range; a hit crossing leaf blocks compiles to a
// span target.
func findTargets(cctx *CompileContext, step *Step) ([]CompiledTarget, error) {
	pattern := []rune(step.Find.Text)
	if len(pattern) == 0 {
		return nil, newError(CodeInvalidInput, PhaseCompile, step.ID,
			"find requires non-empty text")
	}
	if cctx.Limits.MaxFindPatternLen > 0 && len(pattern) > cctx.Limits.MaxFindPatternLen {
		return nil, newError(CodeInvalidInput, PhaseCompile, step.ID,
			"find pattern exceeds length limit").
			withDetail("maxFindPatternLen", cctx.Limits.MaxFindPatternLen)
	}

	scopeFrom, scopeTo := 0, cctx.Snap.Len()
	if step.Find.BlockID != "" {
		cand, res := cctx.Index.Block(step.Find.BlockID)
		switch res {
		case index.LookupNotFound:
			return nil, newError(CodeTargetNotFound, PhaseCompile, step.ID,
				"find scope block did not resolve").
				withDetail("blockId", step.Find.BlockID)
		case index.LookupAmbiguous:
			return nil, newError(CodeAmbiguousTarget, PhaseCompile, step.ID,
				"find scope block is ambiguous").
				withDetail("blockId", step.Find.BlockID)
		}
		scopeFrom, scopeTo = cand.Pos, cand.End
	}

	flat := []rune(cctx.Snap.Text())
	var out []CompiledTarget
	for pos := scopeFrom; pos+len(pattern) <= scopeTo; {
		if !runesMatch(flat, pos, pattern) {
			pos++
			continue
		}
		if cctx.Limits.MaxMatches > 0 && len(out) >= cctx.Limits.MaxMatches {
			return nil, newError(CodeInvalidInput, PhaseCompile, step.ID,
				"find exceeds match limit").
				withDetail("maxMatches", cctx.Limits.MaxMatches)
		}
		target, err := makeFindTarget(cctx, step.ID, pos, pos+len(pattern))
		if err != nil {
			return nil, err
		}
		out = append(out, target)
		pos += len(pattern)
	}
	return out, nil
}

func runesMatch(flat []rune, at int, pattern []rune) bool {
	for i, r := range pattern {
		if flat[at+i] != r {
			return false
		}
	}
	return true
}

// makeFindTarget compiles one search hit. In-block hits go through the
// fragment normalization path so formatting-run splits collapse back into
// one logical range.
func makeFindTarget(cctx *CompileContext, stepID string, from, to int) (CompiledTarget, error) {
	span, ok := cctx.Snap.LeafAt(from, to)
	if !ok {
		return makeTarget(cctx, stepID, from, to)
	}
	runs, err := CaptureRunsInRange(cctx.Snap, from, to)
	if err != nil {
		return nil, newError(CodeInvalidInput, PhaseCompile, stepID, err.Error())
	}
	blockID := blockIDFor(cctx.Index, span.Node)
	frags := make([]MatchRange, 0, len(runs))
	for _, r := range runs {
		frags = append(frags, MatchRange{
			BlockID: blockID,
			Start:   r.From - span.Start,
			End:     r.To - span.Start,
		})
	}
	norm, err := NormalizeMatchRanges(stepID, frags)
	if err != nil {
		return nil, err
	}
	return makeTarget(cctx, stepID, span.Start+norm.From, span.Start+norm.To)
}

// makeTarget builds the compiled target for an absolute range: a
// RangeTarget when the range sits in one block, a SpanTarget with ordered
// segments when it crosses leaf blocks.
func makeTarget(cctx *CompileContext, stepID string, from, to int) (CompiledTarget, error) {
	segs := spanify(cctx.Snap, cctx.Index, from, to)
	if len(segs) == 0 {
		return nil, newError(CodeInvalidTarget, PhaseCompile, stepID,
			"position is not addressable").
			withDetail("pos", from)
	}
	text, err := cctx.Snap.TextBetween(from, to)
	if err != nil {
		return nil, newError(CodeInvalidInput, PhaseCompile, stepID, err.Error())
	}
	marks := marksAt(cctx.Snap, from)

	if len(segs) == 1 {
		t := RangeTarget{
			BlockID: segs[0].BlockID,
			From:    from,
			To:      to,
			Text:    text,
			Marks:   marks,
		}
		if from < to {
			if _, ok := cctx.Snap.LeafAt(from, to); ok {
				runs, err := CaptureRunsInRange(cctx.Snap, from, to)
				if err == nil {
					t.CapturedStyle = CoalesceRuns(runs)
				}
			}
		}
		return t, nil
	}
	return SpanTarget{Segments: segs, Text: text, Marks: marks}, nil
}

// marksAt returns the formatting marks at an absolute position.
func marksAt(snap *doc.Snapshot, pos int) []doc.Mark {
	span, ok := snap.LeafAt(pos, pos)
	if !ok {
		return nil
	}
	off := span.Start
	for _, c := range span.Node.Children {
		w := c.Width()
		if c.IsText() && pos >= off && pos < off+w {
			return doc.FormattingMarks(c.Marks)
		}
		off += w
	}
	return nil
}

// validateOverlap rejects plans whose mutation targets overlap within the
// same block or span.
func validateOverlap(plan *CompiledPlan) error {
	type claim struct {
		from, to int
		stepID   string
		blockID  string
	}
	var claims []claim
	for _, cs := range plan.Steps {
		if cs.Step.IsAssert() {
			continue
		}
		for _, t := range cs.Targets {
			switch tt := t.(type) {
			case RangeTarget:
				claims = append(claims, claim{tt.From, tt.To, cs.Step.ID, tt.BlockID})
			case SpanTarget:
				for _, seg := range tt.Segments {
					claims = append(claims, claim{seg.From, seg.To, cs.Step.ID, seg.BlockID})
				}
			default:
				panic("mutation: unhandled compiled target variant")
			}
		}
	}
	sort.Slice(claims, func(i, j int) bool {
		if claims[i].from != claims[j].from {
			return claims[i].from < claims[j].from
		}
		if claims[i].to != claims[j].to {
			return claims[i].to < claims[j].to
		}
		return claims[i].stepID < claims[j].stepID
	})
	for i := 1; i < len(claims); i++ {
		prev, cur := claims[i-1], claims[i]
		if cur.from < prev.to {
			return newError(CodeInvalidTarget, PhaseValidate, cur.stepID,
				"targets overlap").
				withDetail("blockId", cur.blockID).
				withDetail("stepIds", []string{prev.stepID, cur.stepID})
		}
	}
	return nil
}
