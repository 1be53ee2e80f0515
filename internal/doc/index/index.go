package index

import (
	"fmt"
	"sort"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
)

// BlockCandidate is an immutable snapshot entry for one block node.
type BlockCandidate struct {
	Pos      int
	End      int
	NodeType doc.NodeType
	NodeID   string
	Node     *doc.Node
}

// Contains reports whether pos falls in the candidate's range,
// end-inclusive.
func (c BlockCandidate) Contains(pos int) bool {
	return pos >= c.Pos && pos <= c.End
}

// InlineCandidate is an immutable snapshot entry for one inline entity: a
// link run, an image, a bookmark range, or a comment range.
type InlineCandidate struct {
	Pos        int
	End        int
	EntityType string
	EntityID   string
}

// Inline entity types.
const (
	EntityLink     = "link"
	EntityImage    = "image"
	EntityBookmark = "bookmark"
	EntityComment  = "comment"
)

// LookupResult classifies an identity lookup.
type LookupResult int

const (
	// LookupFound means exactly one candidate matched.
	LookupFound LookupResult = iota
	// LookupNotFound means no candidate carries the key.
	LookupNotFound
	// LookupAmbiguous means the key collided during the build and was
	// evicted from direct lookup.
	LookupAmbiguous
)

// blockEntry is a direct-lookup slot. A key collision evicts the slot:
// neither colliding candidate stays resolvable by that key.
type blockEntry struct {
	idx     int
	evicted bool
}

// Index is a snapshot of all block and inline candidates with identity maps
// for direct lookup and a position-sorted order for binary search.
type Index struct {
	blocks  []BlockCandidate
	inlines []InlineCandidate
	byID    map[string]*blockEntry
	byEnt   map[string]map[string]*inlineEntry
	nextGen int
}

type inlineEntry struct {
	idx     int
	evicted bool
}

// Build indexes the snapshot in one full traversal. Identity precedence:
// the node's explicit id attribute first, else its session id, else a
// generated one. Bookmark names register as aliases for the same candidate.
func Build(snap *doc.Snapshot) *Index {
	ix := &Index{
		byID:  make(map[string]*blockEntry),
		byEnt: make(map[string]map[string]*inlineEntry),
	}

	for _, span := range snap.Blocks() {
		ix.blocks = append(ix.blocks, BlockCandidate{
			Pos:      span.Start,
			End:      span.End,
			NodeType: span.Node.Type,
			NodeID:   ix.blockIdentity(span.Node),
			Node:     span.Node,
		})
	}

	// Position order for binary search: by start, wider ranges first so
	// containers precede the blocks they nest.
	sort.SliceStable(ix.blocks, func(i, j int) bool {
		if ix.blocks[i].Pos != ix.blocks[j].Pos {
			return ix.blocks[i].Pos < ix.blocks[j].Pos
		}
		return ix.blocks[i].End > ix.blocks[j].End
	})

	for i, c := range ix.blocks {
		ix.registerBlock(c.NodeID, i)
		if alias := c.Node.Attr("name"); alias != "" && alias != c.NodeID {
			ix.registerBlock(alias, i)
		}
	}

	ix.indexInlines(snap)

	return ix
}

// blockIdentity picks the lookup key for a block node.
func (ix *Index) blockIdentity(n *doc.Node) string {
	if id := n.Attr("id"); id != "" {
		return id
	}
	if n.ID != "" {
		return n.ID
	}
	ix.nextGen++
	return fmt.Sprintf("gen%d", ix.nextGen)
}

func (ix *Index) registerBlock(key string, idx int) {
	if e, ok := ix.byID[key]; ok {
		e.evicted = true
		return
	}
	ix.byID[key] = &blockEntry{idx: idx}
}

// Block resolves a block candidate by identity key.
func (ix *Index) Block(id string) (BlockCandidate, LookupResult) {
	e, ok := ix.byID[id]
	if !ok {
		return BlockCandidate{}, LookupNotFound
	}
	if e.evicted {
		return BlockCandidate{}, LookupAmbiguous
	}
	return ix.blocks[e.idx], LookupFound
}

// Blocks returns all block candidates in position order.
func (ix *Index) Blocks() []BlockCandidate { return ix.blocks }

// BlocksOfType returns the block candidates of one node type, position
// ordered.
func (ix *Index) BlocksOfType(typ doc.NodeType) []BlockCandidate {
	var out []BlockCandidate
	for _, c := range ix.blocks {
		if c.NodeType == typ {
			out = append(out, c)
		}
	}
	return out
}

// FindByPos binary-searches the position-sorted candidates for one whose
// range contains pos. When block ranges nest, the candidate the search lands
// on is returned; it is not guaranteed to be the innermost.
func (ix *Index) FindByPos(pos int) (BlockCandidate, bool) {
	i := sort.Search(len(ix.blocks), func(i int) bool {
		return ix.blocks[i].Pos > pos
	})
	if i == 0 {
		return BlockCandidate{}, false
	}
	c := ix.blocks[i-1]
	if !c.Contains(pos) {
		// Walk back: an earlier, wider candidate may still cover pos.
		for j := i - 2; j >= 0; j-- {
			if ix.blocks[j].Contains(pos) {
				return ix.blocks[j], true
			}
		}
		return BlockCandidate{}, false
	}
	return c, true
}

// Entity resolves an inline entity by type and identity key.
func (ix *Index) Entity(entityType, id string) (InlineCandidate, LookupResult) {
	byID, ok := ix.byEnt[entityType]
	if !ok {
		return InlineCandidate{}, LookupNotFound
	}
	e, ok := byID[id]
	if !ok {
		return InlineCandidate{}, LookupNotFound
	}
	if e.evicted {
		return InlineCandidate{}, LookupAmbiguous
	}
	return ix.inlines[e.idx], LookupFound
}

// Inlines returns all inline candidates in position order.
func (ix *Index) Inlines() []InlineCandidate { return ix.inlines }

// InlinesOfType returns the inline candidates of one entity type.
func (ix *Index) InlinesOfType(entityType string) []InlineCandidate {
	var out []InlineCandidate
	for _, c := range ix.inlines {
		if c.EntityType == entityType {
			out = append(out, c)
		}
	}
	return out
}

func (ix *Index) registerInline(c InlineCandidate) {
	idx := len(ix.inlines)
	ix.inlines = append(ix.inlines, c)
	byID, ok := ix.byEnt[c.EntityType]
	if !ok {
		byID = make(map[string]*inlineEntry)
		ix.byEnt[c.EntityType] = byID
	}
	if e, ok := byID[c.EntityID]; ok {
		e.evicted = true
		return
	}
	byID[c.EntityID] = &inlineEntry{idx: idx}
}

// indexInlines walks leaf blocks collecting images, link runs, and
// marker-delimited bookmark and comment ranges.
func (ix *Index) indexInlines(snap *doc.Snapshot) {
	openBookmarks := map[string]int{} // bookmark id -> start pos
	openComments := map[string]int{}  // comment id -> start pos

	for _, span := range snap.LeafBlocks() {
		off := span.Start
		linkStart := -1
		var linkHref string
		closeLink := func(at int) {
			if linkStart >= 0 {
				ix.registerInline(InlineCandidate{
					Pos:        linkStart,
					End:        at,
					EntityType: EntityLink,
					EntityID:   linkHref,
				})
				linkStart = -1
			}
		}

		for _, c := range span.Node.Children {
			w := c.Width()
			switch {
			case c.IsText():
				href, linked := linkAttr(c.Marks)
				if linked && (linkStart < 0 || href != linkHref) {
					closeLink(off)
					linkStart, linkHref = off, href
				}
				if !linked {
					closeLink(off)
				}
			case c.Type == doc.NodeImage:
				closeLink(off)
				ix.registerInline(InlineCandidate{
					Pos:        off,
					End:        off + 1,
					EntityType: EntityImage,
					EntityID:   imageIdentity(c),
				})
			case c.Type == doc.NodeBookmarkStart:
				openBookmarks[markerIdentity(c)] = off
			case c.Type == doc.NodeBookmarkEnd:
				id := markerIdentity(c)
				if start, ok := openBookmarks[id]; ok {
					ix.registerInline(InlineCandidate{
						Pos:        start,
						End:        off,
						EntityType: EntityBookmark,
						EntityID:   id,
					})
					delete(openBookmarks, id)
				}
			case c.Type == doc.NodeCommentRangeStart:
				openComments[markerIdentity(c)] = off
			case c.Type == doc.NodeCommentRangeEnd:
				id := markerIdentity(c)
				if start, ok := openComments[id]; ok {
					ix.registerInline(InlineCandidate{
						Pos:        start,
						End:        off,
						EntityType: EntityComment,
						EntityID:   id,
					})
					delete(openComments, id)
				}
			}
			off += w
		}
		closeLink(off)
	}
}

func linkAttr(marks []doc.Mark) (string, bool) {
	for _, m := range marks {
		if m.Type == doc.MarkLink {
			return m.Attrs["href"], true
		}
	}
	return "", false
}

func imageIdentity(n *doc.Node) string {
	if id := n.Attr("id"); id != "" {
		return id
	}
	if n.ID != "" {
		return n.ID
	}
	return n.Attr("src")
}

func markerIdentity(n *doc.Node) string {
	if id := n.Attr("id"); id != "" {
		return id
	}
	return n.Attr("name")
}
