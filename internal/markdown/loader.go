// Package markdown converts markdown source into a document tree.
//
// The loader parses with goldmark and rebuilds the AST as block and inline
// nodes. Block ids are deterministic per node type ("p1", "h2", "li3"), so
// loading the same source twice yields identical trees.
package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
)

// Loader parses markdown into document trees.
type Loader struct {
	md goldmark.Markdown
}

// NewLoader creates a loader with table support enabled.
func NewLoader() *Loader {
	return &Loader{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Load parses the source and returns the document root node.
func (l *Loader) Load(source []byte) (*doc.Node, error) {
	reader := text.NewReader(source)
	root := l.md.Parser().Parse(reader)

	b := &builder{source: source, counters: map[string]int{}}
	children := b.blocks(root)
	if len(children) == 0 {
		// An empty document still has one paragraph to address.
		children = []*doc.Node{doc.NewBlockNode(doc.NodeParagraph, b.nextID("p"))}
	}
	return doc.NewBlockNode(doc.NodeDoc, "doc", children...), nil
}

type builder struct {
	source   []byte
	counters map[string]int
}

func (b *builder) nextID(prefix string) string {
	b.counters[prefix]++
	return prefix + strconv.Itoa(b.counters[prefix])
}

func (b *builder) blocks(parent ast.Node) []*doc.Node {
	var out []*doc.Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if n := b.block(c); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (b *builder) block(n ast.Node) *doc.Node {
	switch node := n.(type) {
	case *ast.Heading:
		h := doc.NewBlockNode(doc.NodeHeading, b.nextID("h"), b.inlines(node, nil)...)
		h.Attrs = map[string]string{"level": strconv.Itoa(node.Level)}
		return h
	case *ast.Paragraph:
		return doc.NewBlockNode(doc.NodeParagraph, b.nextID("p"), b.inlines(node, nil)...)
	case *ast.TextBlock:
		return doc.NewBlockNode(doc.NodeParagraph, b.nextID("p"), b.inlines(node, nil)...)
	case *ast.Blockquote:
		return doc.NewBlockNode(doc.NodeBlockquote, b.nextID("q"), b.blocks(node)...)
	case *ast.List:
		typ := doc.NodeBulletList
		prefix := "ul"
		if node.IsOrdered() {
			typ = doc.NodeOrderedList
			prefix = "ol"
		}
		return doc.NewBlockNode(typ, b.nextID(prefix), b.blocks(node)...)
	case *ast.ListItem:
		return doc.NewBlockNode(doc.NodeListItem, b.nextID("li"), b.blocks(node)...)
	case *ast.FencedCodeBlock:
		return b.codeBlock(node)
	case *ast.CodeBlock:
		return b.codeBlock(node)
	case *east.Table:
		return doc.NewBlockNode(doc.NodeTable, b.nextID("tbl"), b.blocks(node)...)
	case *east.TableHeader:
		return b.tableRow(node)
	case *east.TableRow:
		return b.tableRow(node)
	case *ast.ThematicBreak:
		return nil
	default:
		return nil
	}
}

func (b *builder) tableRow(n ast.Node) *doc.Node {
	var cells []*doc.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		cell, ok := c.(*east.TableCell)
		if !ok {
			continue
		}
		cells = append(cells, doc.NewBlockNode(doc.NodeTableCell, b.nextID("td"), b.inlines(cell, nil)...))
	}
	return doc.NewBlockNode(doc.NodeTableRow, b.nextID("tr"), cells...)
}

// codeBlock flattens a code block into a single code-marked paragraph.
// The block schema has no dedicated code block type.
func (b *builder) codeBlock(n interface {
	ast.Node
	Lines() *text.Segments
}) *doc.Node {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(b.source))
	}
	content := strings.TrimRight(sb.String(), "\n")
	p := doc.NewBlockNode(doc.NodeParagraph, b.nextID("p"))
	if content != "" {
		p.Children = []*doc.Node{doc.NewTextNode(content, doc.Mark{Type: doc.MarkCode})}
	}
	return p
}

// inlines converts a block's inline children, carrying the active mark set
// down through emphasis and link nesting.
func (b *builder) inlines(parent ast.Node, marks []doc.Mark) []*doc.Node {
	var out []*doc.Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		out = b.inline(out, c, marks)
	}
	return coalesceText(out)
}

func (b *builder) inline(out []*doc.Node, n ast.Node, marks []doc.Mark) []*doc.Node {
	switch node := n.(type) {
	case *ast.Text:
		txt := string(node.Segment.Value(b.source))
		if txt != "" {
			out = append(out, doc.NewTextNode(txt, marks...))
		}
		if node.HardLineBreak() {
			out = append(out, &doc.Node{Type: doc.NodeHardBreak})
		} else if node.SoftLineBreak() {
			out = append(out, doc.NewTextNode(" ", marks...))
		}
	case *ast.String:
		if len(node.Value) > 0 {
			out = append(out, doc.NewTextNode(string(node.Value), marks...))
		}
	case *ast.Emphasis:
		mt := doc.MarkItalic
		if node.Level >= 2 {
			mt = doc.MarkBold
		}
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			out = b.inline(out, c, doc.AddMark(marks, doc.Mark{Type: mt}))
		}
	case *ast.CodeSpan:
		code := doc.AddMark(marks, doc.Mark{Type: doc.MarkCode})
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			out = b.inline(out, c, code)
		}
	case *ast.Link:
		link := doc.AddMark(marks, doc.Mark{
			Type:  doc.MarkLink,
			Attrs: map[string]string{"href": string(node.Destination)},
		})
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			out = b.inline(out, c, link)
		}
	case *ast.AutoLink:
		url := string(node.URL(b.source))
		out = append(out, doc.NewTextNode(url, doc.AddMark(marks, doc.Mark{
			Type:  doc.MarkLink,
			Attrs: map[string]string{"href": url},
		})...))
	case *ast.Image:
		img := &doc.Node{
			Type: doc.NodeImage,
			ID:   b.nextID("img"),
			Attrs: map[string]string{
				"src": string(node.Destination),
				"alt": inlineText(node, b.source),
			},
		}
		out = append(out, img)
	case *ast.RawHTML:
		// Raw HTML has no tree representation.
	default:
		// Unknown inline containers contribute their text content.
		if n.Type() == ast.TypeInline {
			if txt := inlineText(n, b.source); txt != "" {
				out = append(out, doc.NewTextNode(txt, marks...))
			}
		}
	}
	return out
}

// coalesceText merges adjacent text nodes that carry identical marks.
func coalesceText(nodes []*doc.Node) []*doc.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if len(out) > 0 && n.IsText() {
			last := out[len(out)-1]
			if last.IsText() && doc.SameMarks(last.Marks, n.Marks) {
				out[len(out)-1] = doc.NewTextNode(last.Text+n.Text, last.Marks...)
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(source))
		case *ast.String:
			sb.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// Render serializes a document tree back to markdown. Round-trips are
// lossy for nested formatting but stable for the block structure.
func Render(root *doc.Node) string {
	var sb strings.Builder
	renderBlocks(&sb, root.Children, "")
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func renderBlocks(sb *strings.Builder, blocks []*doc.Node, indent string) {
	for i, blk := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		renderBlock(sb, blk, indent)
	}
}

func renderBlock(sb *strings.Builder, n *doc.Node, indent string) {
	switch n.Type {
	case doc.NodeHeading:
		level, _ := strconv.Atoi(n.Attr("level"))
		if level < 1 {
			level = 1
		}
		sb.WriteString(indent + strings.Repeat("#", level) + " " + renderInlines(n.Children) + "\n")
	case doc.NodeParagraph:
		sb.WriteString(indent + renderInlines(n.Children) + "\n")
	case doc.NodeBlockquote:
		var inner strings.Builder
		renderBlocks(&inner, n.Children, "")
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			sb.WriteString(indent + "> " + line + "\n")
		}
	case doc.NodeBulletList, doc.NodeOrderedList:
		for i, item := range n.Children {
			marker := "- "
			if n.Type == doc.NodeOrderedList {
				marker = fmt.Sprintf("%d. ", i+1)
			}
			var inner strings.Builder
			renderBlocks(&inner, item.Children, "")
			lines := strings.Split(strings.TrimRight(inner.String(), "\n"), "\n")
			for j, line := range lines {
				if j == 0 {
					sb.WriteString(indent + marker + line + "\n")
				} else {
					sb.WriteString(indent + strings.Repeat(" ", len(marker)) + line + "\n")
				}
			}
		}
	case doc.NodeTable:
		for i, row := range n.Children {
			cells := make([]string, 0, len(row.Children))
			for _, cell := range row.Children {
				cells = append(cells, renderInlines(cell.Children))
			}
			sb.WriteString(indent + "| " + strings.Join(cells, " | ") + " |\n")
			if i == 0 {
				seps := make([]string, len(cells))
				for j := range seps {
					seps[j] = "---"
				}
				sb.WriteString(indent + "| " + strings.Join(seps, " | ") + " |\n")
			}
		}
	}
}

func renderInlines(nodes []*doc.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch {
		case n.IsText():
			sb.WriteString(wrapMarks(n.Text, n.Marks))
		case n.Type == doc.NodeImage:
			sb.WriteString("![" + n.Attr("alt") + "](" + n.Attr("src") + ")")
		case n.Type == doc.NodeHardBreak:
			sb.WriteString("\\\n")
		}
	}
	return sb.String()
}

func wrapMarks(text string, marks []doc.Mark) string {
	out := text
	for _, m := range doc.FormattingMarks(marks) {
		switch m.Type {
		case doc.MarkBold:
			out = "**" + out + "**"
		case doc.MarkItalic:
			out = "*" + out + "*"
		case doc.MarkCode:
			out = "`" + out + "`"
		case doc.MarkStrike:
			out = "~~" + out + "~~"
		case doc.MarkLink:
			out = "[" + out + "](" + m.Attrs["href"] + ")"
		}
	}
	return out
}
