package doc

import "sort"

// Schema describes the node and mark vocabulary a document supports.
// Engine components consult it before compiling steps that reference marks
// or node types by name.
type Schema struct {
	blockTypes map[NodeType]bool
	markTypes  map[MarkType]bool
}

// DefaultSchema returns the schema covering the full built-in vocabulary.
func DefaultSchema() *Schema {
	return &Schema{
		blockTypes: map[NodeType]bool{
			NodeParagraph:   true,
			NodeHeading:     true,
			NodeBlockquote:  true,
			NodeBulletList:  true,
			NodeOrderedList: true,
			NodeListItem:    true,
			NodeTable:       true,
			NodeTableRow:    true,
			NodeTableCell:   true,
		},
		markTypes: map[MarkType]bool{
			MarkBold:      true,
			MarkItalic:    true,
			MarkUnderline: true,
			MarkStrike:    true,
			MarkCode:      true,
			MarkLink:      true,
			MarkComment:   true,
			MarkInsertion: true,
			MarkDeletion:  true,
		},
	}
}

// HasBlockType reports whether the schema supports the block type.
func (s *Schema) HasBlockType(typ NodeType) bool {
	return s.blockTypes[typ]
}

// HasMarkType reports whether the schema supports the mark type.
func (s *Schema) HasMarkType(typ MarkType) bool {
	return s.markTypes[typ]
}

// MarkTypes returns the supported formatting mark names in sorted order.
func (s *Schema) MarkTypes() []string {
	out := make([]string, 0, len(s.markTypes))
	for t := range s.markTypes {
		if (Mark{Type: t}).IsMetadata() {
			continue
		}
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}

// BlockTypes returns the supported block type names in sorted order.
func (s *Schema) BlockTypes() []string {
	out := make([]string, 0, len(s.blockTypes))
	for t := range s.blockTypes {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}
