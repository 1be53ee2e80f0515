package index

import (
	"testing"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
)

func buildIndex(t *testing.T, root *doc.Node) *Index {
	t.Helper()
	snap, err := doc.NewSnapshot(root)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	return Build(snap)
}

func TestBlockLookupBySessionID(t *testing.T) {
	root := doc.NewBlockNode(doc.NodeDoc, "doc",
		doc.NewBlockNode(doc.NodeParagraph, "p1", doc.NewTextNode("first")),
		doc.NewBlockNode(doc.NodeParagraph, "p2", doc.NewTextNode("second")),
	)
	ix := buildIndex(t, root)

	c, res := ix.Block("p2")
	if res != LookupFound {
		t.Fatalf("expected LookupFound, got %v", res)
	}
	if c.Pos != 6 || c.End != 12 {
		t.Errorf("candidate span [%d,%d], want [6,12]", c.Pos, c.End)
	}
}

func TestExplicitIDAttributeWinsOverSessionID(t *testing.T) {
	p := doc.NewBlockNode(doc.NodeParagraph, "p1", doc.NewTextNode("text"))
	p.Attrs = map[string]string{"id": "intro"}
	ix := buildIndex(t, doc.NewBlockNode(doc.NodeDoc, "doc", p))

	if _, res := ix.Block("intro"); res != LookupFound {
		t.Errorf("explicit id should resolve, got %v", res)
	}
	if _, res := ix.Block("p1"); res != LookupNotFound {
		t.Errorf("session id should be shadowed by explicit id, got %v", res)
	}
}

func TestGeneratedIDForAnonymousBlocks(t *testing.T) {
	root := doc.NewBlockNode(doc.NodeDoc, "doc",
		doc.NewBlockNode(doc.NodeParagraph, "", doc.NewTextNode("anon")),
	)
	ix := buildIndex(t, root)

	if _, res := ix.Block("gen1"); res != LookupFound {
		t.Errorf("anonymous block should get a generated id, got %v", res)
	}
}

func TestCollidingIDsAreEvicted(t *testing.T) {
	root := doc.NewBlockNode(doc.NodeDoc, "doc",
		doc.NewBlockNode(doc.NodeParagraph, "dup", doc.NewTextNode("one")),
		doc.NewBlockNode(doc.NodeParagraph, "dup", doc.NewTextNode("two")),
	)
	ix := buildIndex(t, root)

	if _, res := ix.Block("dup"); res != LookupAmbiguous {
		t.Errorf("colliding id should be ambiguous, got %v", res)
	}
}

func TestBookmarkNameAliasesBlock(t *testing.T) {
	p := doc.NewBlockNode(doc.NodeParagraph, "p1", doc.NewTextNode("text"))
	p.Attrs = map[string]string{"name": "summary"}
	ix := buildIndex(t, doc.NewBlockNode(doc.NodeDoc, "doc", p))

	byName, res := ix.Block("summary")
	if res != LookupFound {
		t.Fatalf("alias lookup failed: %v", res)
	}
	byID, _ := ix.Block("p1")
	if byName.Node != byID.Node {
		t.Error("alias and id should resolve to the same candidate")
	}
}

func TestBlocksOfType(t *testing.T) {
	h := doc.NewBlockNode(doc.NodeHeading, "h1", doc.NewTextNode("Title"))
	root := doc.NewBlockNode(doc.NodeDoc, "doc",
		h,
		doc.NewBlockNode(doc.NodeParagraph, "p1", doc.NewTextNode("body")),
		doc.NewBlockNode(doc.NodeParagraph, "p2", doc.NewTextNode("more")),
	)
	ix := buildIndex(t, root)

	paras := ix.BlocksOfType(doc.NodeParagraph)
	if len(paras) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(paras))
	}
	if paras[0].NodeID != "p1" || paras[1].NodeID != "p2" {
		t.Errorf("paragraphs out of position order: %s, %s", paras[0].NodeID, paras[1].NodeID)
	}
}

func TestFindByPos(t *testing.T) {
	root := doc.NewBlockNode(doc.NodeDoc, "doc",
		doc.NewBlockNode(doc.NodeParagraph, "p1", doc.NewTextNode("Hello")),
		doc.NewBlockNode(doc.NodeParagraph, "p2", doc.NewTextNode("World")),
	)
	ix := buildIndex(t, root)

	c, ok := ix.FindByPos(8)
	if !ok {
		t.Fatal("expected a candidate at position 8")
	}
	if c.NodeID != "p2" {
		t.Errorf("expected p2, got %s", c.NodeID)
	}

	if _, ok := ix.FindByPos(99); ok {
		t.Error("position past the document should not resolve")
	}
}

func TestFindByPosInsideContainer(t *testing.T) {
	item := doc.NewBlockNode(doc.NodeListItem, "li1",
		doc.NewBlockNode(doc.NodeParagraph, "p1", doc.NewTextNode("entry")))
	list := doc.NewBlockNode(doc.NodeBulletList, "ul1", item)
	ix := buildIndex(t, doc.NewBlockNode(doc.NodeDoc, "doc", list))

	c, ok := ix.FindByPos(2)
	if !ok {
		t.Fatal("expected a candidate inside the list")
	}
	if !c.Contains(2) {
		t.Error("returned candidate does not contain the position")
	}
}

func TestLinkRunIndexed(t *testing.T) {
	link := doc.Mark{Type: doc.MarkLink, Attrs: map[string]string{"href": "https://example.com"}}
	p := doc.NewBlockNode(doc.NodeParagraph, "p1",
		doc.NewTextNode("see "),
		doc.NewTextNode("docs", link),
		doc.NewTextNode(" now"),
	)
	ix := buildIndex(t, doc.NewBlockNode(doc.NodeDoc, "doc", p))

	c, res := ix.Entity(EntityLink, "https://example.com")
	if res != LookupFound {
		t.Fatalf("link lookup failed: %v", res)
	}
	if c.Pos != 4 || c.End != 8 {
		t.Errorf("link span [%d,%d], want [4,8]", c.Pos, c.End)
	}
}

func TestImageIndexed(t *testing.T) {
	img := &doc.Node{Type: doc.NodeImage, ID: "img1", Attrs: map[string]string{"src": "a.png"}}
	p := doc.NewBlockNode(doc.NodeParagraph, "p1", doc.NewTextNode("x"), img)
	ix := buildIndex(t, doc.NewBlockNode(doc.NodeDoc, "doc", p))

	c, res := ix.Entity(EntityImage, "img1")
	if res != LookupFound {
		t.Fatalf("image lookup failed: %v", res)
	}
	if c.Pos != 1 || c.End != 2 {
		t.Errorf("image span [%d,%d], want [1,2]", c.Pos, c.End)
	}
}

func TestBookmarkRangeIndexed(t *testing.T) {
	bs := &doc.Node{Type: doc.NodeBookmarkStart, Attrs: map[string]string{"id": "bm1"}}
	be := &doc.Node{Type: doc.NodeBookmarkEnd, Attrs: map[string]string{"id": "bm1"}}
	p := doc.NewBlockNode(doc.NodeParagraph, "p1",
		doc.NewTextNode("ab"), bs, doc.NewTextNode("cd"), be, doc.NewTextNode("ef"))
	ix := buildIndex(t, doc.NewBlockNode(doc.NodeDoc, "doc", p))

	c, res := ix.Entity(EntityBookmark, "bm1")
	if res != LookupFound {
		t.Fatalf("bookmark lookup failed: %v", res)
	}
	if c.Pos != 2 || c.End != 4 {
		t.Errorf("bookmark span [%d,%d], want [2,4]", c.Pos, c.End)
	}
}

func TestCommentRangeIndexed(t *testing.T) {
	cs := &doc.Node{Type: doc.NodeCommentRangeStart, Attrs: map[string]string{"id": "c1"}}
	ce := &doc.Node{Type: doc.NodeCommentRangeEnd, Attrs: map[string]string{"id": "c1"}}
	p := doc.NewBlockNode(doc.NodeParagraph, "p1",
		cs, doc.NewTextNode("flagged"), ce)
	ix := buildIndex(t, doc.NewBlockNode(doc.NodeDoc, "doc", p))

	c, res := ix.Entity(EntityComment, "c1")
	if res != LookupFound {
		t.Fatalf("comment lookup failed: %v", res)
	}
	if c.Pos != 0 || c.End != 7 {
		t.Errorf("comment span [%d,%d], want [0,7]", c.Pos, c.End)
	}
}

func TestUnknownEntityNotFound(t *testing.T) {
	ix := buildIndex(t, doc.NewBlockNode(doc.NodeDoc, "doc",
		doc.NewBlockNode(doc.NodeParagraph, "p1", doc.NewTextNode("plain"))))

	if _, res := ix.Entity(EntityLink, "nope"); res != LookupNotFound {
		t.Errorf("expected LookupNotFound, got %v", res)
	}
}
