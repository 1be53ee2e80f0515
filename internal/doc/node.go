package doc

import "unicode/utf8"

// NodeType identifies the kind of a document node.
type NodeType string

// Block node types.
const (
	NodeDoc         NodeType = "doc"
	NodeParagraph   NodeType = "paragraph"
	NodeHeading     NodeType = "heading"
	NodeBlockquote  NodeType = "blockquote"
	NodeBulletList  NodeType = "bulletList"
	NodeOrderedList NodeType = "orderedList"
	NodeListItem    NodeType = "listItem"
	NodeTable       NodeType = "table"
	NodeTableRow    NodeType = "tableRow"
	NodeTableCell   NodeType = "tableCell"
)

// Inline node types.
const (
	NodeText      NodeType = "text"
	NodeImage     NodeType = "image"
	NodeHardBreak NodeType = "hardBreak"
)

// Zero-width range marker types. Markers occupy no position in the
// flattened text.
const (
	NodeBookmarkStart     NodeType = "bookmarkStart"
	NodeBookmarkEnd       NodeType = "bookmarkEnd"
	NodeCommentRangeStart NodeType = "commentRangeStart"
	NodeCommentRangeEnd   NodeType = "commentRangeEnd"
)

// LeafPlaceholder is the character an atomic inline leaf contributes to the
// flattened text.
const LeafPlaceholder = '￼'

// BlockSeparator joins leaf block texts in the flattened document text.
const BlockSeparator = '\n'

// Node is a single node in the document tree. Block nodes carry Children;
// text nodes carry Text and Marks; leaf inline nodes and markers carry
// neither.
type Node struct {
	Type NodeType

	// ID is the session-stable identity of a block or marker node.
	// Empty for inline text and leaf nodes.
	ID string

	// Attrs holds node attributes (heading level, image source, bookmark
	// name, comment id).
	Attrs map[string]string

	// Text is the content of a text node.
	Text string

	// Marks are the formatting marks on a text node.
	Marks []Mark

	// Children of a block node.
	Children []*Node
}

// NewTextNode creates a text node with the given marks.
func NewTextNode(text string, marks ...Mark) *Node {
	return &Node{Type: NodeText, Text: text, Marks: marks}
}

// NewBlockNode creates a block node with the given id and children.
func NewBlockNode(typ NodeType, id string, children ...*Node) *Node {
	return &Node{Type: typ, ID: id, Children: children}
}

// IsBlock reports whether the node is a block node.
func (n *Node) IsBlock() bool {
	switch n.Type {
	case NodeDoc, NodeParagraph, NodeHeading, NodeBlockquote,
		NodeBulletList, NodeOrderedList, NodeListItem,
		NodeTable, NodeTableRow, NodeTableCell:
		return true
	}
	return false
}

// IsText reports whether the node is an inline text node.
func (n *Node) IsText() bool {
	return n.Type == NodeText
}

// IsLeaf reports whether the node is an atomic inline leaf.
func (n *Node) IsLeaf() bool {
	return n.Type == NodeImage || n.Type == NodeHardBreak
}

// IsMarker reports whether the node is a zero-width range marker.
func (n *Node) IsMarker() bool {
	switch n.Type {
	case NodeBookmarkStart, NodeBookmarkEnd,
		NodeCommentRangeStart, NodeCommentRangeEnd:
		return true
	}
	return false
}

// IsLeafBlock reports whether the node is a block whose children are all
// inline. An empty block counts as a leaf block.
func (n *Node) IsLeafBlock() bool {
	if !n.IsBlock() || n.Type == NodeDoc {
		return false
	}
	for _, c := range n.Children {
		if c.IsBlock() {
			return false
		}
	}
	return true
}

// Width returns the flattened-text width of an inline node: the rune count
// for text, one for an atomic leaf, zero for a marker.
func (n *Node) Width() int {
	switch {
	case n.IsText():
		return utf8.RuneCountInString(n.Text)
	case n.IsLeaf():
		return 1
	default:
		return 0
	}
}

// Attr returns the named attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	out := &Node{
		Type: n.Type,
		ID:   n.ID,
		Text: n.Text,
	}
	if n.Attrs != nil {
		out.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			out.Attrs[k] = v
		}
	}
	if n.Marks != nil {
		out.Marks = append([]Mark(nil), n.Marks...)
	}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// withText returns a copy of a text node carrying different text.
func (n *Node) withText(text string) *Node {
	out := &Node{Type: NodeText, Text: text}
	if n.Marks != nil {
		out.Marks = append([]Mark(nil), n.Marks...)
	}
	return out
}
