package mutation

import "strings"

// ChangeMode selects how mutations land in the document. The mode is
// uniform for a whole plan.
type ChangeMode string

const (
	// ChangeDirect applies edits destructively.
	ChangeDirect ChangeMode = "direct"

	// ChangeTracked records edits as tracked-change marks instead of
	// destructive writes.
	ChangeTracked ChangeMode = "tracked"
)

// Cardinality is a step's match-count requirement.
type Cardinality string

const (
	// ExpectOne requires exactly one match.
	ExpectOne Cardinality = "one"

	// ExpectSome requires at least one match.
	ExpectSome Cardinality = "some"

	// ExpectAny accepts any number of matches, including zero.
	ExpectAny Cardinality = "any"
)

// OffsetRange is a character range in a block's flattened text.
type OffsetRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// TextAddress addresses text by block identity plus a character range into
// the block's flattened text.
type TextAddress struct {
	BlockID string      `json:"blockId"`
	Range   OffsetRange `json:"range"`
}

// NodeAddress addresses a structural block node or a non-positional inline
// entity by stable identity.
type NodeAddress struct {
	NodeType   string `json:"nodeType,omitempty"`
	NodeID     string `json:"nodeId,omitempty"`
	EntityType string `json:"entityType,omitempty"`
	EntityID   string `json:"entityId,omitempty"`
}

// FindSpec selects targets by literal text search.
type FindSpec struct {
	Text string `json:"text"`

	// BlockID optionally scopes the search to one block.
	BlockID string `json:"blockId,omitempty"`
}

// Step is one declarative mutation or assert step. Exactly one selector may
// be supplied: a canonical Target or Node address, a Find spec, or the
// friendly locator fields (BlockID plus Offset, or BlockID plus Start/End).
type Step struct {
	ID string `json:"id,omitempty"`
	Op string `json:"op"`

	Target *TextAddress `json:"target,omitempty"`
	Node   *NodeAddress `json:"node,omitempty"`
	Find   *FindSpec    `json:"find,omitempty"`

	// Friendly locator fields.
	BlockID string `json:"blockId,omitempty"`
	Offset  *int   `json:"offset,omitempty"`
	Start   *int   `json:"start,omitempty"`
	End     *int   `json:"end,omitempty"`

	Expect Cardinality `json:"expect,omitempty"`

	// Operation payload.
	Text  string            `json:"text,omitempty"`
	Marks []string          `json:"marks,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`

	// Count is the expected value for assert.blockCount.
	Count *int `json:"count,omitempty"`
}

// IsAssert reports whether the step is an assert step.
func (s *Step) IsAssert() bool {
	return strings.HasPrefix(s.Op, "assert.")
}

// cardinality returns the step's requirement, defaulting to exactly one.
func (s *Step) cardinality() Cardinality {
	if s.Expect == "" {
		return ExpectOne
	}
	return s.Expect
}

// PlanRequest is the input of mutations.apply and mutations.preview.
type PlanRequest struct {
	Steps            []Step     `json:"steps"`
	ExpectedRevision string     `json:"expectedRevision,omitempty"`
	ChangeMode       ChangeMode `json:"changeMode,omitempty"`
}

// RevisionSpan records the revision transition of a committed plan.
type RevisionSpan struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// StepReceipt reports one executed step. Field order is the canonical
// serialization order.
type StepReceipt struct {
	ID         string `json:"id"`
	Op         string `json:"op"`
	Effect     string `json:"effect"`
	MatchCount int    `json:"matchCount"`
}

// PlanReceipt is the output of a committed plan.
type PlanReceipt struct {
	Revision RevisionSpan  `json:"revision"`
	Steps    []StepReceipt `json:"steps"`
	Success  bool          `json:"success"`
}

// PreviewOutput is the output of mutations.preview. Failures is omitted
// entirely on success, never an empty list.
type PreviewOutput struct {
	EvaluatedRevision string        `json:"evaluatedRevision"`
	Steps             []StepReceipt `json:"steps"`
	Valid             bool          `json:"valid"`
	Failures          []*Error      `json:"failures,omitempty"`
}
