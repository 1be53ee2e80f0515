package doc

import "sort"

// MarkType identifies a formatting mark.
type MarkType string

// Formatting marks.
const (
	MarkBold      MarkType = "bold"
	MarkItalic    MarkType = "italic"
	MarkUnderline MarkType = "underline"
	MarkStrike    MarkType = "strike"
	MarkCode      MarkType = "code"
	MarkLink      MarkType = "link"
)

// Metadata marks. These annotate text for review surfaces and are filtered
// from reported formatting.
const (
	MarkComment   MarkType = "comment"
	MarkInsertion MarkType = "insertion"
	MarkDeletion  MarkType = "deletion"
)

// Mark is a formatting or metadata mark applied to a text run.
type Mark struct {
	Type  MarkType
	Attrs map[string]string
}

// NewMark creates an attribute-less mark.
func NewMark(typ MarkType) Mark {
	return Mark{Type: typ}
}

// IsMetadata reports whether the mark is a metadata mark rather than
// user-visible formatting.
func (m Mark) IsMetadata() bool {
	switch m.Type {
	case MarkComment, MarkInsertion, MarkDeletion:
		return true
	}
	return false
}

// Equal reports whether two marks have the same type and attributes.
func (m Mark) Equal(other Mark) bool {
	if m.Type != other.Type || len(m.Attrs) != len(other.Attrs) {
		return false
	}
	for k, v := range m.Attrs {
		if other.Attrs[k] != v {
			return false
		}
	}
	return true
}

// SameMarks reports whether two mark sets are equal, ignoring order.
func SameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for _, m := range a {
		if !containsMark(b, m) {
			return false
		}
	}
	return true
}

func containsMark(marks []Mark, m Mark) bool {
	for _, other := range marks {
		if m.Equal(other) {
			return true
		}
	}
	return false
}

// AddMark returns the mark set with m added, replacing any mark of the same
// type.
func AddMark(marks []Mark, m Mark) []Mark {
	out := RemoveMark(marks, m.Type)
	return append(out, m)
}

// RemoveMark returns the mark set without marks of the given type.
func RemoveMark(marks []Mark, typ MarkType) []Mark {
	var out []Mark
	for _, m := range marks {
		if m.Type != typ {
			out = append(out, m)
		}
	}
	return out
}

// HasMark reports whether the set contains a mark of the given type.
func HasMark(marks []Mark, typ MarkType) bool {
	for _, m := range marks {
		if m.Type == typ {
			return true
		}
	}
	return false
}

// FormattingMarks returns the mark set with metadata marks filtered out,
// sorted by type for stable reporting.
func FormattingMarks(marks []Mark) []Mark {
	var out []Mark
	for _, m := range marks {
		if !m.IsMetadata() {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
