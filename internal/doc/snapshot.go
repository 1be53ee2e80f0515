package doc

import "sort"

// BlockSpan records the absolute position range a block node occupies in the
// flattened document text. For container blocks the span covers every
// descendant leaf block, separators included.
type BlockSpan struct {
	Node  *Node
	Start int
	End   int
}

// Len returns the span length in characters.
func (s BlockSpan) Len() int { return s.End - s.Start }

// Contains reports whether pos falls inside the span, end-inclusive so a
// collapsed position at a block's tail still resolves to it.
func (s BlockSpan) Contains(pos int) bool {
	return pos >= s.Start && pos <= s.End
}

// Snapshot is an immutable view of a document tree with precomputed
// flattened text and block spans. All engine resolution happens against one
// snapshot; it is rebuilt wholesale after any mutation.
type Snapshot struct {
	root   *Node
	flat   []rune
	blocks []BlockSpan // every block node except the root, traversal order
	leaves []BlockSpan // leaf blocks only, position order
}

// NewSnapshot flattens the tree rooted at root. The root must be a document
// node.
func NewSnapshot(root *Node) (*Snapshot, error) {
	if root == nil || root.Type != NodeDoc {
		return nil, ErrNotDocument
	}
	s := &Snapshot{root: root}
	s.flattenChildren(root)
	return s, nil
}

// flattenChildren walks block children in order, appending leaf block text
// (separator-joined) to s.flat and recording spans.
func (s *Snapshot) flattenChildren(n *Node) {
	for _, c := range n.Children {
		if !c.IsBlock() {
			continue
		}
		s.flattenBlock(c)
	}
}

func (s *Snapshot) flattenBlock(n *Node) {
	if n.IsLeafBlock() {
		if len(s.leaves) > 0 {
			s.flat = append(s.flat, BlockSeparator)
		}
		start := len(s.flat)
		for _, c := range n.Children {
			switch {
			case c.IsText():
				s.flat = append(s.flat, []rune(c.Text)...)
			case c.IsLeaf():
				s.flat = append(s.flat, LeafPlaceholder)
			}
		}
		span := BlockSpan{Node: n, Start: start, End: len(s.flat)}
		s.blocks = append(s.blocks, span)
		s.leaves = append(s.leaves, span)
		return
	}

	// Container block: record a placeholder span, fill once descendants
	// are flattened.
	idx := len(s.blocks)
	s.blocks = append(s.blocks, BlockSpan{Node: n})
	before := len(s.leaves)
	s.flattenChildren(n)
	if len(s.leaves) > before {
		s.blocks[idx].Start = s.leaves[before].Start
		s.blocks[idx].End = s.leaves[len(s.leaves)-1].End
	} else {
		s.blocks[idx].Start = len(s.flat)
		s.blocks[idx].End = len(s.flat)
	}
}

// Root returns the snapshot's tree. Callers must not mutate it.
func (s *Snapshot) Root() *Node { return s.root }

// Len returns the flattened document length in characters.
func (s *Snapshot) Len() int { return len(s.flat) }

// Text returns the full flattened text.
func (s *Snapshot) Text() string { return string(s.flat) }

// TextBetween returns the flattened text in [from, to).
func (s *Snapshot) TextBetween(from, to int) (string, error) {
	if from < 0 || to < from {
		return "", ErrInvalidRange
	}
	if to > len(s.flat) {
		return "", ErrOffsetOutOfRange
	}
	return string(s.flat[from:to]), nil
}

// Blocks returns the spans of every block node in traversal order.
func (s *Snapshot) Blocks() []BlockSpan { return s.blocks }

// LeafAt returns the leaf block span containing [from, to]. Collapsed
// positions on a block boundary resolve to the earlier block.
func (s *Snapshot) LeafAt(from, to int) (BlockSpan, bool) {
	i := sort.Search(len(s.leaves), func(i int) bool {
		return s.leaves[i].End >= from
	})
	if i >= len(s.leaves) {
		return BlockSpan{}, false
	}
	span := s.leaves[i]
	if from >= span.Start && to <= span.End {
		return span, true
	}
	return BlockSpan{}, false
}

// LeafBlocks returns the leaf block spans in position order.
func (s *Snapshot) LeafBlocks() []BlockSpan { return s.leaves }

// SpanOf returns the span of the given block node, resolved by pointer
// identity.
func (s *Snapshot) SpanOf(n *Node) (BlockSpan, bool) {
	for _, span := range s.blocks {
		if span.Node == n {
			return span, true
		}
	}
	return BlockSpan{}, false
}
