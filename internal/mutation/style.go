package mutation

import (
	"fmt"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
)

// Run is one contiguous formatting run inside a captured range. Positions
// are absolute snapshot positions. Metadata marks are filtered from Marks.
type Run struct {
	From      int
	To        int
	CharCount int
	Marks     []doc.Mark

	// Synthetic marks the one-character run emitted for an atomic inline
	// leaf. A synthetic run never coalesces with its neighbors.
	Synthetic bool
}

// CaptureRunsInRange tiles [from, to) within one leaf block into contiguous
// runs with no gaps or overlaps. Transparent zero-width markers have no
// width and never break a tiling; each atomic inline leaf emits a
// synthetic one-character run with empty marks.
func CaptureRunsInRange(snap *doc.Snapshot, from, to int) ([]Run, error) {
	if from < 0 || to < from {
		return nil, doc.ErrInvalidRange
	}
	if from == to {
		return nil, nil
	}
	span, ok := snap.LeafAt(from, to)
	if !ok {
		return nil, doc.ErrCrossBlockEdit
	}

	var runs []Run
	off := span.Start
	for _, c := range span.Node.Children {
		w := c.Width()
		s, e := off, off+w
		off = e
		if e <= from || s >= to {
			continue
		}
		switch {
		case c.IsText():
			runFrom, runTo := s, e
			if runFrom < from {
				runFrom = from
			}
			if runTo > to {
				runTo = to
			}
			runs = append(runs, Run{
				From:      runFrom,
				To:        runTo,
				CharCount: runTo - runFrom,
				Marks:     doc.FormattingMarks(c.Marks),
			})
		case c.IsLeaf():
			runs = append(runs, Run{
				From:      s,
				To:        e,
				CharCount: 1,
				Synthetic: true,
			})
		}
	}

	verifyTiling(runs, from, to)
	return runs, nil
}

// CoalesceRuns merges adjacent runs with identical mark sets. A synthetic
// leaf run breaks coalescing even when its flanking marks match each other.
func CoalesceRuns(runs []Run) []Run {
	if len(runs) == 0 {
		return nil
	}
	out := []Run{runs[0]}
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if !r.Synthetic && !last.Synthetic && doc.SameMarks(last.Marks, r.Marks) {
			last.To = r.To
			last.CharCount += r.CharCount
			continue
		}
		out = append(out, r)
	}
	verifyTiling(out, out[0].From, out[len(out)-1].To)
	return out
}

// verifyTiling panics when a run sequence fails to exactly cover
// [from, to). A broken tiling is an engine defect, never a user error, so
// it propagates as a fatal failure rather than a typed error.
func verifyTiling(runs []Run, from, to int) {
	if len(runs) == 0 {
		if from != to {
			panic(fmt.Sprintf("mutation: run tiling empty for non-empty range [%d:%d)", from, to))
		}
		return
	}
	if runs[0].From != from || runs[len(runs)-1].To != to {
		panic(fmt.Sprintf("mutation: run tiling does not cover [%d:%d)", from, to))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].From != runs[i-1].To {
			panic(fmt.Sprintf("mutation: run tiling gap at %d", runs[i-1].To))
		}
	}
}
