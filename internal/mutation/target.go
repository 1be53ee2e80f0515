package mutation

import "github.com/wasimrehman05/superdoc-sub017/internal/doc"

// CompiledTarget is the fully-resolved, snapshot-absolute result of matching
// one step selector. It is a sealed sum of RangeTarget and SpanTarget; every
// consumer switches exhaustively over the two variants.
//
// One logical selector match always yields exactly one CompiledTarget, never
// one per fragment.
type CompiledTarget interface {
	compiledTarget()
}

// RangeTarget is a match confined to a single block. From and To are
// absolute snapshot positions.
type RangeTarget struct {
	BlockID string
	From    int
	To      int

	// Text is the flattened text the range covered at compile time.
	Text string

	// Marks are the formatting marks at the start of the range.
	Marks []doc.Mark

	// CapturedStyle is the coalesced run tiling of the range, captured at
	// compile time for format operations and receipts.
	CapturedStyle []Run
}

func (RangeTarget) compiledTarget() {}

// IsCollapsed reports whether the range has zero width.
func (t RangeTarget) IsCollapsed() bool { return t.From == t.To }

// SpanSegment is one block-confined piece of a cross-block match, in
// absolute snapshot positions.
type SpanSegment struct {
	BlockID string
	From    int
	To      int
}

// SpanTarget is one logical match that crosses block boundaries, collapsed
// into ordered per-block segments.
type SpanTarget struct {
	Segments []SpanSegment

	// Text is the flattened text the whole span covered at compile time,
	// block separators included.
	Text string

	// Marks are the formatting marks at the start of the span.
	Marks []doc.Mark
}

func (SpanTarget) compiledTarget() {}
