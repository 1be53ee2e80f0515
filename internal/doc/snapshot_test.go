package doc

import (
	"errors"
	"testing"
)

func twoParagraphs() *Node {
	p1 := NewBlockNode(NodeParagraph, "p1", NewTextNode("Hello World"))
	p2 := NewBlockNode(NodeParagraph, "p2", NewTextNode("Second paragraph"))
	return NewBlockNode(NodeDoc, "doc", p1, p2)
}

func TestSnapshotFlattenedText(t *testing.T) {
	snap, err := NewSnapshot(twoParagraphs())
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	want := "Hello World\nSecond paragraph"
	if snap.Text() != want {
		t.Errorf("expected %q, got %q", want, snap.Text())
	}
	if snap.Len() != len(want) {
		t.Errorf("expected length %d, got %d", len(want), snap.Len())
	}
}

func TestSnapshotBlockSpansExcludeSeparator(t *testing.T) {
	snap, err := NewSnapshot(twoParagraphs())
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	blocks := snap.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Start != 0 || blocks[0].End != 11 {
		t.Errorf("first block span [%d,%d), want [0,11)", blocks[0].Start, blocks[0].End)
	}
	// The separator between blocks belongs to neither span.
	if blocks[1].Start != 12 {
		t.Errorf("second block starts at %d, want 12", blocks[1].Start)
	}
}

func TestSnapshotLeafPlaceholder(t *testing.T) {
	img := &Node{Type: NodeImage, ID: "img1", Attrs: map[string]string{"src": "a.png"}}
	p := NewBlockNode(NodeParagraph, "p1", NewTextNode("see "), img, NewTextNode(" here"))
	snap, err := NewSnapshot(NewBlockNode(NodeDoc, "doc", p))
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	want := "see ￼ here"
	if snap.Text() != want {
		t.Errorf("expected %q, got %q", want, snap.Text())
	}
}

func TestSnapshotMarkersHaveNoWidth(t *testing.T) {
	bm := &Node{Type: NodeBookmarkStart, Attrs: map[string]string{"name": "intro"}}
	be := &Node{Type: NodeBookmarkEnd, Attrs: map[string]string{"name": "intro"}}
	p := NewBlockNode(NodeParagraph, "p1", bm, NewTextNode("anchored"), be)
	snap, err := NewSnapshot(NewBlockNode(NodeDoc, "doc", p))
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	if snap.Text() != "anchored" {
		t.Errorf("expected %q, got %q", "anchored", snap.Text())
	}
	if snap.Len() != 8 {
		t.Errorf("expected length 8, got %d", snap.Len())
	}
}

func TestSnapshotContainerSpanCoversItems(t *testing.T) {
	li1 := NewBlockNode(NodeListItem, "li1", NewBlockNode(NodeParagraph, "p1", NewTextNode("one")))
	li2 := NewBlockNode(NodeListItem, "li2", NewBlockNode(NodeParagraph, "p2", NewTextNode("two")))
	list := NewBlockNode(NodeBulletList, "ul1", li1, li2)
	snap, err := NewSnapshot(NewBlockNode(NodeDoc, "doc", list))
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	span, ok := snap.SpanOf(list)
	if !ok {
		t.Fatal("list span not found")
	}
	if span.Start != 0 || span.End != snap.Len() {
		t.Errorf("list span [%d,%d), want [0,%d)", span.Start, span.End, snap.Len())
	}
}

func TestLeafAtBoundaryResolvesEarlierBlock(t *testing.T) {
	snap, err := NewSnapshot(twoParagraphs())
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	// Position 11 is the end of the first paragraph and also sits on the
	// separator; the collapsed lookup resolves to the earlier block.
	span, ok := snap.LeafAt(11, 11)
	if !ok {
		t.Fatal("expected a leaf at the block boundary")
	}
	if span.Node.ID != "p1" {
		t.Errorf("expected p1, got %s", span.Node.ID)
	}
}

func TestLeafAtRejectsCrossBlockRange(t *testing.T) {
	snap, err := NewSnapshot(twoParagraphs())
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	if _, ok := snap.LeafAt(5, 15); ok {
		t.Error("range spanning two blocks should not resolve to a leaf")
	}
}

func TestTextBetween(t *testing.T) {
	snap, err := NewSnapshot(twoParagraphs())
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	got, err := snap.TextBetween(6, 11)
	if err != nil {
		t.Fatalf("TextBetween failed: %v", err)
	}
	if got != "World" {
		t.Errorf("expected %q, got %q", "World", got)
	}

	if _, err := snap.TextBetween(5, 2); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := snap.TextBetween(0, snap.Len()+1); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
}

func TestNewSnapshotRequiresDocument(t *testing.T) {
	p := NewBlockNode(NodeParagraph, "p1", NewTextNode("text"))
	if _, err := NewSnapshot(p); !errors.Is(err, ErrNotDocument) {
		t.Errorf("expected ErrNotDocument, got %v", err)
	}
}

func TestNodeWidth(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want int
	}{
		{"ascii text", NewTextNode("hello"), 5},
		{"multibyte text", NewTextNode("héllo"), 5},
		{"image leaf", &Node{Type: NodeImage}, 1},
		{"hard break leaf", &Node{Type: NodeHardBreak}, 1},
		{"bookmark marker", &Node{Type: NodeBookmarkStart}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.Width(); got != tt.want {
				t.Errorf("expected width %d, got %d", tt.want, got)
			}
		})
	}
}
