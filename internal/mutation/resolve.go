package mutation

import (
	"sort"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
	"github.com/wasimrehman05/superdoc-sub017/internal/doc/index"
)

// MatchRange is one fragment of a logical selector hit, in block-local
// character offsets.
type MatchRange struct {
	BlockID string
	Start   int
	End     int
}

// NormalizedRange is the single logical range a fragment set collapses to.
type NormalizedRange struct {
	BlockID string
	From    int
	To      int
}

// NormalizeMatchRanges collapses the fragment set of one logical match into
// exactly one block-local range, regardless of fragment count.
//
// Fragments spanning more than one distinct block raise CROSS_BLOCK_MATCH
// carrying every distinct block id. Contiguous or overlapping fragments
// coalesce; a gap between sorted fragments raises INVALID_INPUT.
func NormalizeMatchRanges(stepID string, ranges []MatchRange) (NormalizedRange, error) {
	if len(ranges) == 0 {
		return NormalizedRange{}, newError(CodeInvalidInput, PhaseCompile, stepID,
			"no match ranges to normalize")
	}

	for _, r := range ranges {
		if r.Start < 0 || r.End < r.Start {
			return NormalizedRange{}, newError(CodeInvalidInput, PhaseCompile, stepID,
				"invalid range bounds").
				withDetail("start", r.Start).
				withDetail("end", r.End)
		}
	}

	distinct := distinctBlockIDs(ranges)
	if len(distinct) > 1 {
		return NormalizedRange{}, newError(CodeCrossBlockMatch, PhaseCompile, stepID,
			"match fragments span multiple blocks").
			withDetail("blockIds", distinct)
	}

	sorted := append([]MatchRange(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := NormalizedRange{BlockID: sorted[0].BlockID, From: sorted[0].Start, To: sorted[0].End}
	for _, r := range sorted[1:] {
		if r.Start > out.To {
			return NormalizedRange{}, newError(CodeInvalidInput, PhaseCompile, stepID,
				"discontiguous match fragments").
				withDetail("gapAfter", out.To).
				withDetail("nextStart", r.Start)
		}
		if r.End > out.To {
			out.To = r.End
		}
	}
	return out, nil
}

func distinctBlockIDs(ranges []MatchRange) []string {
	seen := make(map[string]bool, len(ranges))
	var out []string
	for _, r := range ranges {
		if !seen[r.BlockID] {
			seen[r.BlockID] = true
			out = append(out, r.BlockID)
		}
	}
	sort.Strings(out)
	return out
}

// ResolveTextTarget converts a block-relative text address into absolute
// snapshot positions. A nil result with a nil error means the block did not
// resolve; the caller reports TARGET_NOT_FOUND.
func ResolveTextTarget(ix *index.Index, addr TextAddress, stepID string) (*NormalizedRange, error) {
	if addr.Range.Start < 0 || addr.Range.End < addr.Range.Start {
		return nil, newError(CodeInvalidInput, PhaseCompile, stepID,
			"invalid range bounds").
			withDetail("start", addr.Range.Start).
			withDetail("end", addr.Range.End)
	}

	cand, res := ix.Block(addr.BlockID)
	switch res {
	case index.LookupNotFound:
		return nil, nil
	case index.LookupAmbiguous:
		return nil, newError(CodeAmbiguousTarget, PhaseCompile, stepID,
			"block identity is ambiguous").
			withDetail("blockId", addr.BlockID)
	}

	length := cand.End - cand.Pos
	if addr.Range.End > length {
		return nil, nil
	}
	return &NormalizedRange{
		BlockID: addr.BlockID,
		From:    cand.Pos + addr.Range.Start,
		To:      cand.Pos + addr.Range.End,
	}, nil
}

// normalizeLocator derives the step's canonical text address, folding
// friendly locator fields (blockId + offset for inserts, blockId +
// start/end otherwise) into a TextAddress. Combining a friendly locator with
// a canonical selector is INVALID_TARGET.
func normalizeLocator(step *Step) (*TextAddress, error) {
	friendly := step.BlockID != "" || step.Offset != nil || step.Start != nil || step.End != nil
	canonical := 0
	if step.Target != nil {
		canonical++
	}
	if step.Node != nil {
		canonical++
	}
	if step.Find != nil {
		canonical++
	}

	if friendly && canonical > 0 {
		return nil, newError(CodeInvalidTarget, PhaseCompile, step.ID,
			"friendly locator fields cannot be combined with a canonical target")
	}
	if canonical > 1 {
		return nil, newError(CodeInvalidTarget, PhaseCompile, step.ID,
			"step declares more than one selector")
	}
	if !friendly {
		if canonical == 0 {
			return nil, newError(CodeInvalidInput, PhaseCompile, step.ID,
				"step declares no selector")
		}
		return step.Target, nil
	}

	if step.BlockID == "" {
		return nil, newError(CodeInvalidInput, PhaseCompile, step.ID,
			"friendly locator requires blockId")
	}
	switch {
	case step.Offset != nil:
		if step.Start != nil || step.End != nil {
			return nil, newError(CodeInvalidInput, PhaseCompile, step.ID,
				"offset cannot be combined with start/end")
		}
		return &TextAddress{
			BlockID: step.BlockID,
			Range:   OffsetRange{Start: *step.Offset, End: *step.Offset},
		}, nil
	case step.Start != nil && step.End != nil:
		return &TextAddress{
			BlockID: step.BlockID,
			Range:   OffsetRange{Start: *step.Start, End: *step.End},
		}, nil
	default:
		return nil, newError(CodeInvalidInput, PhaseCompile, step.ID,
			"friendly locator requires offset, or start and end")
	}
}

// spanify intersects an absolute range with the snapshot's leaf blocks,
// producing one segment per covered block. Separator positions between
// blocks belong to no segment.
func spanify(snap *doc.Snapshot, ix *index.Index, from, to int) []SpanSegment {
	var out []SpanSegment
	for _, span := range snap.LeafBlocks() {
		if span.End < from || span.Start > to {
			continue
		}
		segFrom, segTo := from, to
		if segFrom < span.Start {
			segFrom = span.Start
		}
		if segTo > span.End {
			segTo = span.End
		}
		if segTo < segFrom {
			continue
		}
		if segTo == segFrom && !(from == to && span.Contains(from)) {
			// Zero-width intersection at a block edge of a wider range
			// contributes nothing.
			continue
		}
		out = append(out, SpanSegment{
			BlockID: blockIDFor(ix, span.Node),
			From:    segFrom,
			To:      segTo,
		})
	}
	return out
}

// blockIDFor returns the index identity of a block node.
func blockIDFor(ix *index.Index, n *doc.Node) string {
	for _, c := range ix.Blocks() {
		if c.Node == n {
			return c.NodeID
		}
	}
	return n.ID
}
