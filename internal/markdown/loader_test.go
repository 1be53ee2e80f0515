package markdown

import (
	"strings"
	"testing"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
)

func loadDoc(t *testing.T, source string) *doc.Node {
	t.Helper()
	root, err := NewLoader().Load([]byte(source))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return root
}

func flatText(t *testing.T, root *doc.Node) string {
	t.Helper()
	snap, err := doc.NewSnapshot(root)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	return snap.Text()
}

func TestLoadParagraphs(t *testing.T) {
	root := loadDoc(t, "Hello World\n\nSecond paragraph\n")

	if len(root.Children) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(root.Children))
	}
	p1 := root.Children[0]
	if p1.Type != doc.NodeParagraph || p1.ID != "p1" {
		t.Errorf("unexpected first block %s/%s", p1.Type, p1.ID)
	}
	if got := flatText(t, root); got != "Hello World\nSecond paragraph" {
		t.Errorf("unexpected flattened text %q", got)
	}
}

func TestLoadIDsAreDeterministic(t *testing.T) {
	source := "# Title\n\nBody text\n\n- one\n- two\n"
	a := loadDoc(t, source)
	b := loadDoc(t, source)

	var idsOf func(n *doc.Node) []string
	idsOf = func(n *doc.Node) []string {
		ids := []string{n.ID}
		for _, c := range n.Children {
			ids = append(ids, idsOf(c)...)
		}
		return ids
	}
	got, want := idsOf(a), idsOf(b)
	if len(got) != len(want) {
		t.Fatalf("tree shapes differ: %v vs %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("id %d differs: %s vs %s", i, got[i], want[i])
		}
	}
}

func TestLoadHeadingLevel(t *testing.T) {
	root := loadDoc(t, "## Section\n")

	h := root.Children[0]
	if h.Type != doc.NodeHeading || h.ID != "h1" {
		t.Fatalf("unexpected block %s/%s", h.Type, h.ID)
	}
	if h.Attr("level") != "2" {
		t.Errorf("expected level 2, got %q", h.Attr("level"))
	}
}

func TestLoadInlineMarks(t *testing.T) {
	root := loadDoc(t, "plain **bold** and *italic* and `code`\n")

	p := root.Children[0]
	byText := map[string]*doc.Node{}
	for _, c := range p.Children {
		byText[c.Text] = c
	}
	if n := byText["bold"]; n == nil || !doc.HasMark(n.Marks, doc.MarkBold) {
		t.Errorf("expected a bold run, got %+v", p.Children)
	}
	if n := byText["italic"]; n == nil || !doc.HasMark(n.Marks, doc.MarkItalic) {
		t.Errorf("expected an italic run, got %+v", p.Children)
	}
	if n := byText["code"]; n == nil || !doc.HasMark(n.Marks, doc.MarkCode) {
		t.Errorf("expected a code run, got %+v", p.Children)
	}
	if n := byText["plain "]; n == nil || len(n.Marks) != 0 {
		t.Errorf("expected an unmarked run, got %+v", p.Children)
	}
}

func TestLoadNestedEmphasis(t *testing.T) {
	root := loadDoc(t, "***both***\n")

	p := root.Children[0]
	if len(p.Children) != 1 {
		t.Fatalf("expected 1 run, got %d", len(p.Children))
	}
	run := p.Children[0]
	if !doc.HasMark(run.Marks, doc.MarkBold) || !doc.HasMark(run.Marks, doc.MarkItalic) {
		t.Errorf("expected bold+italic, got %v", run.Marks)
	}
}

func TestLoadLink(t *testing.T) {
	root := loadDoc(t, "see [the docs](https://example.com) here\n")

	p := root.Children[0]
	var link *doc.Node
	for _, c := range p.Children {
		if doc.HasMark(c.Marks, doc.MarkLink) {
			link = c
		}
	}
	if link == nil {
		t.Fatalf("no link run in %+v", p.Children)
	}
	if link.Text != "the docs" {
		t.Errorf("expected link text, got %q", link.Text)
	}
	var href string
	for _, m := range link.Marks {
		if m.Type == doc.MarkLink {
			href = m.Attrs["href"]
		}
	}
	if href != "https://example.com" {
		t.Errorf("expected href attr, got %q", href)
	}
}

func TestLoadImage(t *testing.T) {
	root := loadDoc(t, "see ![a chart](chart.png) here\n")

	p := root.Children[0]
	var img *doc.Node
	for _, c := range p.Children {
		if c.Type == doc.NodeImage {
			img = c
		}
	}
	if img == nil {
		t.Fatalf("no image in %+v", p.Children)
	}
	if img.Attr("src") != "chart.png" || img.Attr("alt") != "a chart" {
		t.Errorf("unexpected image attrs %v", img.Attrs)
	}
	// Atomic leaves occupy one position in the flattened text.
	if got := flatText(t, root); got != "see ￼ here" {
		t.Errorf("unexpected flattened text %q", got)
	}
}

func TestLoadList(t *testing.T) {
	root := loadDoc(t, "1. first\n2. second\n")

	ol := root.Children[0]
	if ol.Type != doc.NodeOrderedList || ol.ID != "ol1" {
		t.Fatalf("unexpected block %s/%s", ol.Type, ol.ID)
	}
	if len(ol.Children) != 2 {
		t.Fatalf("expected 2 items, got %d", len(ol.Children))
	}
	li := ol.Children[0]
	if li.Type != doc.NodeListItem || li.ID != "li1" {
		t.Errorf("unexpected item %s/%s", li.Type, li.ID)
	}
	if got := flatText(t, root); got != "first\nsecond" {
		t.Errorf("unexpected flattened text %q", got)
	}
}

func TestLoadTable(t *testing.T) {
	root := loadDoc(t, "| a | b |\n|---|---|\n| c | d |\n")

	tbl := root.Children[0]
	if tbl.Type != doc.NodeTable {
		t.Fatalf("expected a table, got %s", tbl.Type)
	}
	if len(tbl.Children) != 2 {
		t.Fatalf("expected header and body rows, got %d", len(tbl.Children))
	}
	for _, row := range tbl.Children {
		if row.Type != doc.NodeTableRow || len(row.Children) != 2 {
			t.Fatalf("unexpected row %s with %d cells", row.Type, len(row.Children))
		}
		for _, cell := range row.Children {
			if cell.Type != doc.NodeTableCell {
				t.Errorf("unexpected cell type %s", cell.Type)
			}
		}
	}
	if got := flatText(t, root); got != "a\nb\nc\nd" {
		t.Errorf("unexpected flattened text %q", got)
	}
}

func TestLoadCodeBlock(t *testing.T) {
	root := loadDoc(t, "```\nx := 1\n```\n")

	p := root.Children[0]
	if p.Type != doc.NodeParagraph || len(p.Children) != 1 {
		t.Fatalf("unexpected block %+v", p)
	}
	run := p.Children[0]
	if run.Text != "x := 1" || !doc.HasMark(run.Marks, doc.MarkCode) {
		t.Errorf("expected a code run, got %q %v", run.Text, run.Marks)
	}
}

func TestLoadEmptySource(t *testing.T) {
	root := loadDoc(t, "")

	if len(root.Children) != 1 || root.Children[0].Type != doc.NodeParagraph {
		t.Fatalf("empty source should yield one paragraph, got %+v", root.Children)
	}
}

func TestRenderRoundTripStructure(t *testing.T) {
	source := "# Title\n\nSome **bold** text.\n\n- one\n- two\n"
	root := loadDoc(t, source)

	rendered := Render(root)
	again := loadDoc(t, rendered)

	if got, want := flatText(t, again), flatText(t, root); got != want {
		t.Errorf("round trip changed the text: %q vs %q", got, want)
	}
	if !strings.Contains(rendered, "# Title") {
		t.Errorf("rendered output missing heading: %q", rendered)
	}
	if !strings.Contains(rendered, "**bold**") {
		t.Errorf("rendered output missing emphasis: %q", rendered)
	}
}
