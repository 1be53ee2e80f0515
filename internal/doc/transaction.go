package doc

// MapEntry records one text replacement for position mapping.
type MapEntry struct {
	From   int
	To     int
	NewLen int
}

// Mapping accumulates the position transforms of a transaction's applied
// steps. Positions captured against the transaction's base snapshot must be
// mapped through it before use.
type Mapping struct {
	entries []MapEntry
}

// Map transforms a position through all accumulated edits.
//
// Rules per edit:
//   - edit entirely before pos: shift by the edit's length delta
//   - edit entirely after pos: unchanged
//   - edit spanning pos: collapse to the edit boundary; assoc < 0 keeps the
//     position at the edit start, otherwise it moves past the new text
//
// An insertion exactly at pos follows the same assoc rule, so sequential
// insertions at one point land in applied order when assoc >= 0.
func (m *Mapping) Map(pos, assoc int) int {
	for _, e := range m.entries {
		switch {
		case e.To < pos || (e.To == pos && (e.To > e.From || assoc >= 0)):
			pos += e.NewLen - (e.To - e.From)
		case e.From >= pos:
			// unchanged
		default:
			if assoc < 0 {
				pos = e.From
			} else {
				pos = e.From + e.NewLen
			}
		}
	}
	return pos
}

// MapRange transforms a range, biasing the bounds inward so content inserted
// at the edges is excluded.
func (m *Mapping) MapRange(from, to int) (int, int) {
	nf := m.Map(from, 1)
	nt := m.Map(to, -1)
	if nt < nf {
		nt = nf
	}
	return nf, nt
}

func (m *Mapping) record(from, to, newLen int) {
	m.entries = append(m.entries, MapEntry{From: from, To: to, NewLen: newLen})
}

// Transaction stages an atomic set of document edits. It owns a working copy
// of the tree; the live document is untouched until Dispatch.
type Transaction struct {
	doc      *Doc
	base     uint64
	root     *Node
	snap     *Snapshot
	mapping  Mapping
	steps    int
	finished bool
}

// Mapping returns the accumulated position mapping.
func (tx *Transaction) Mapping() *Mapping { return &tx.mapping }

// Snapshot returns the transaction's current working state, reflecting all
// steps applied so far.
func (tx *Transaction) Snapshot() *Snapshot { return tx.snap }

// StepCount returns the number of applied steps.
func (tx *Transaction) StepCount() int { return tx.steps }

// HasChanges reports whether any step has been applied.
func (tx *Transaction) HasChanges() bool { return tx.steps > 0 }

// Replace substitutes [from, to) with text carrying the given marks. The
// range must lie within a single leaf block of the current working state.
// A collapsed range inserts; empty text deletes.
func (tx *Transaction) Replace(from, to int, text string, marks []Mark) error {
	if tx.finished {
		return ErrDispatched
	}
	if from < 0 || to < from {
		return ErrInvalidRange
	}
	if to > tx.snap.Len() {
		return ErrOffsetOutOfRange
	}
	span, ok := tx.snap.LeafAt(from, to)
	if !ok {
		return ErrCrossBlockEdit
	}
	replaceInline(span.Node, from-span.Start, to-span.Start, text, marks)
	tx.mapping.record(from, to, len([]rune(text)))
	return tx.rebuild()
}

// AddMark applies a mark to the text in [from, to) within a single leaf
// block. Atomic leaves and markers in the range are unaffected.
func (tx *Transaction) AddMark(from, to int, m Mark) error {
	return tx.markStep(from, to, func(marks []Mark) []Mark {
		return AddMark(marks, m)
	})
}

// RemoveMark removes marks of the given type from [from, to) within a single
// leaf block.
func (tx *Transaction) RemoveMark(from, to int, typ MarkType) error {
	return tx.markStep(from, to, func(marks []Mark) []Mark {
		return RemoveMark(marks, typ)
	})
}

func (tx *Transaction) markStep(from, to int, apply func([]Mark) []Mark) error {
	if tx.finished {
		return ErrDispatched
	}
	if from < 0 || to <= from {
		return ErrInvalidRange
	}
	if to > tx.snap.Len() {
		return ErrOffsetOutOfRange
	}
	span, ok := tx.snap.LeafAt(from, to)
	if !ok {
		return ErrCrossBlockEdit
	}
	markInline(span.Node, from-span.Start, to-span.Start, apply)
	return tx.rebuild()
}

func (tx *Transaction) rebuild() error {
	snap, err := NewSnapshot(tx.root)
	if err != nil {
		return err
	}
	tx.snap = snap
	tx.steps++
	return nil
}

// replaceInline rewrites a leaf block's inline content, substituting the
// local range [lf, lt) with a text node. Markers sitting exactly on the
// range bounds survive; markers strictly inside a deleted range are removed
// with the content.
func replaceInline(block *Node, lf, lt int, text string, marks []Mark) {
	var left, right []*Node
	off := 0
	for _, c := range block.Children {
		w := c.Width()
		s, e := off, off+w
		off = e
		switch {
		case e <= lf:
			left = append(left, c)
		case s >= lt:
			right = append(right, c)
		case c.IsText():
			runes := []rune(c.Text)
			if s < lf {
				left = append(left, c.withText(string(runes[:lf-s])))
			}
			if e > lt {
				right = append(right, c.withText(string(runes[lt-s:])))
			}
		}
	}
	children := left
	if text != "" {
		children = append(children, NewTextNode(text, marks...))
	}
	children = append(children, right...)
	block.Children = mergeInline(children)
}

// markInline splits text nodes at the local range bounds and rewrites the
// mark set of every covered text node.
func markInline(block *Node, lf, lt int, apply func([]Mark) []Mark) {
	var out []*Node
	off := 0
	for _, c := range block.Children {
		w := c.Width()
		s, e := off, off+w
		off = e
		if !c.IsText() || e <= lf || s >= lt {
			out = append(out, c)
			continue
		}
		runes := []rune(c.Text)
		cutFrom := max(lf, s) - s
		cutTo := min(lt, e) - s
		if cutFrom > 0 {
			out = append(out, c.withText(string(runes[:cutFrom])))
		}
		mid := c.withText(string(runes[cutFrom:cutTo]))
		mid.Marks = apply(mid.Marks)
		out = append(out, mid)
		if cutTo < len(runes) {
			out = append(out, c.withText(string(runes[cutTo:])))
		}
	}
	block.Children = mergeInline(out)
}

// mergeInline coalesces adjacent text nodes with identical mark sets and
// drops empty text nodes.
func mergeInline(children []*Node) []*Node {
	var out []*Node
	for _, c := range children {
		if c.IsText() && c.Text == "" {
			continue
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.IsText() && c.IsText() && SameMarks(last.Marks, c.Marks) {
				out[len(out)-1] = last.withText(last.Text + c.Text)
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
