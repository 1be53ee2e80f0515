package mutation

import (
	"testing"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
)

func styledSnapshot(t *testing.T, children ...*doc.Node) *doc.Snapshot {
	t.Helper()
	root := doc.NewBlockNode(doc.NodeDoc, "doc",
		&doc.Node{Type: doc.NodeParagraph, ID: "p1", Children: children})
	snap, err := doc.NewSnapshot(root)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	return snap
}

func TestCaptureUniformText(t *testing.T) {
	snap := styledSnapshot(t, doc.NewTextNode("plain text"))

	runs, err := CaptureRunsInRange(snap, 0, 10)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].From != 0 || runs[0].To != 10 || runs[0].CharCount != 10 {
		t.Errorf("unexpected run %+v", runs[0])
	}
	if len(runs[0].Marks) != 0 {
		t.Errorf("expected no marks, got %v", runs[0].Marks)
	}
}

func TestCaptureMixedRunsTileExactly(t *testing.T) {
	snap := styledSnapshot(t,
		doc.NewTextNode("ab"),
		doc.NewTextNode("cd", doc.NewMark(doc.MarkBold)),
		doc.NewTextNode("ef"),
	)

	runs, err := CaptureRunsInRange(snap, 0, 6)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].From != runs[i-1].To {
			t.Errorf("tiling gap between run %d and %d", i-1, i)
		}
	}
	if !doc.HasMark(runs[1].Marks, doc.MarkBold) {
		t.Error("middle run should carry bold")
	}
}

func TestCaptureClipsPartialOverlap(t *testing.T) {
	snap := styledSnapshot(t,
		doc.NewTextNode("abcd"),
		doc.NewTextNode("efgh", doc.NewMark(doc.MarkItalic)),
	)

	runs, err := CaptureRunsInRange(snap, 2, 6)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].From != 2 || runs[0].To != 4 {
		t.Errorf("first run [%d,%d), want [2,4)", runs[0].From, runs[0].To)
	}
	if runs[1].From != 4 || runs[1].To != 6 {
		t.Errorf("second run [%d,%d), want [4,6)", runs[1].From, runs[1].To)
	}
}

func TestCaptureAtomicLeafIsSynthetic(t *testing.T) {
	snap := styledSnapshot(t,
		doc.NewTextNode("ab"),
		&doc.Node{Type: doc.NodeImage, ID: "img1"},
		doc.NewTextNode("cd"),
	)

	runs, err := CaptureRunsInRange(snap, 0, 5)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if !runs[1].Synthetic || runs[1].CharCount != 1 {
		t.Errorf("leaf run should be synthetic single-char, got %+v", runs[1])
	}
}

func TestCaptureMarkersAreTransparent(t *testing.T) {
	snap := styledSnapshot(t,
		doc.NewTextNode("ab"),
		&doc.Node{Type: doc.NodeBookmarkStart, Attrs: map[string]string{"name": "x"}},
		doc.NewTextNode("cd"),
	)

	runs, err := CaptureRunsInRange(snap, 0, 4)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	// The marker contributes no run and must not break the tiling.
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[1].From != runs[0].To {
		t.Error("marker broke the run tiling")
	}
}

func TestCaptureMetadataMarksFiltered(t *testing.T) {
	snap := styledSnapshot(t,
		doc.NewTextNode("hi", doc.NewMark(doc.MarkBold), doc.NewMark(doc.MarkComment)),
	)

	runs, err := CaptureRunsInRange(snap, 0, 2)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if doc.HasMark(runs[0].Marks, doc.MarkComment) {
		t.Error("metadata marks should be filtered from captured runs")
	}
	if !doc.HasMark(runs[0].Marks, doc.MarkBold) {
		t.Error("formatting marks should be kept")
	}
}

func TestCaptureCollapsedRangeIsEmpty(t *testing.T) {
	snap := styledSnapshot(t, doc.NewTextNode("abc"))

	runs, err := CaptureRunsInRange(snap, 1, 1)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if runs != nil {
		t.Errorf("expected no runs for a collapsed range, got %v", runs)
	}
}

func TestCoalesceMergesSameMarks(t *testing.T) {
	runs := []Run{
		{From: 0, To: 2, CharCount: 2},
		{From: 2, To: 5, CharCount: 3},
		{From: 5, To: 6, CharCount: 1, Marks: []doc.Mark{doc.NewMark(doc.MarkBold)}},
	}
	got := CoalesceRuns(runs)
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	if got[0].From != 0 || got[0].To != 5 || got[0].CharCount != 5 {
		t.Errorf("unexpected merged run %+v", got[0])
	}
}

func TestCoalesceNeverMergesSyntheticRuns(t *testing.T) {
	runs := []Run{
		{From: 0, To: 2, CharCount: 2},
		{From: 2, To: 3, CharCount: 1, Synthetic: true},
		{From: 3, To: 5, CharCount: 2},
	}
	got := CoalesceRuns(runs)
	if len(got) != 3 {
		t.Errorf("synthetic run must not coalesce, got %d runs", len(got))
	}
}
