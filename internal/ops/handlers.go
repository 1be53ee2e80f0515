package ops

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
	"github.com/wasimrehman05/superdoc-sub017/internal/doc/index"
	"github.com/wasimrehman05/superdoc-sub017/internal/mutation"
)

// GetTextResult is the document.getText payload.
type GetTextResult struct {
	Text     string `json:"text"`
	Revision string `json:"revision"`
}

// InfoCounts reports document content counts.
type InfoCounts struct {
	Words          int `json:"words"`
	Paragraphs     int `json:"paragraphs"`
	Tables         int `json:"tables"`
	Lists          int `json:"lists"`
	Comments       int `json:"comments"`
	TrackedChanges int `json:"trackedChanges"`
}

// InfoResult is the document.info payload.
type InfoResult struct {
	Revision string     `json:"revision"`
	Length   int        `json:"length"`
	Counts   InfoCounts `json:"counts"`
}

// CapabilitiesResult is the document.capabilities payload.
type CapabilitiesResult struct {
	Operations  []string        `json:"operations"`
	StepKinds   []string        `json:"stepKinds"`
	Marks       []string        `json:"marks"`
	ChangeModes []string        `json:"changeModes"`
	Limits      mutation.Limits `json:"limits"`
}

func handleGetText(t *Target, raw []byte) (any, error) {
	snap := t.Doc.Snapshot()
	revision := t.Engine.Tracker().Revision()

	blockID := gjson.GetBytes(raw, "blockId")
	if !blockID.Exists() || blockID.String() == "" {
		return &GetTextResult{Text: snap.Text(), Revision: revision}, nil
	}

	ix := index.Build(snap)
	cand, res := ix.Block(blockID.String())
	switch res {
	case index.LookupNotFound:
		return nil, &mutation.Error{
			Code:    mutation.CodeTargetNotFound,
			Message: "block not found",
			Details: map[string]any{"blockId": blockID.String()},
		}
	case index.LookupAmbiguous:
		return nil, &mutation.Error{
			Code:    mutation.CodeAmbiguousTarget,
			Message: "block id matches more than one block",
			Details: map[string]any{"blockId": blockID.String()},
		}
	}
	text, err := snap.TextBetween(cand.Pos, cand.End)
	if err != nil {
		return nil, err
	}
	return &GetTextResult{Text: text, Revision: revision}, nil
}

func handleInfo(t *Target, raw []byte) (any, error) {
	snap := t.Doc.Snapshot()
	info := &InfoResult{
		Revision: t.Engine.Tracker().Revision(),
		Length:   snap.Len(),
		Counts:   countContent(snap),
	}
	return info, nil
}

func handleCapabilities(t *Target, raw []byte) (any, error) {
	schema := t.Doc.Schema()
	marks := make([]string, 0, len(schema.MarkTypes()))
	for _, m := range schema.MarkTypes() {
		marks = append(marks, string(m))
	}
	modes := []string{string(mutation.ChangeDirect)}
	if schema.HasMarkType(doc.MarkInsertion) && schema.HasMarkType(doc.MarkDeletion) {
		modes = append(modes, string(mutation.ChangeTracked))
	}
	return &CapabilitiesResult{
		Operations:  sharedRegistry.Operations(),
		StepKinds:   t.Engine.Ops(),
		Marks:       marks,
		ChangeModes: modes,
		Limits:      t.Engine.Limits(),
	}, nil
}

func handleApply(t *Target, raw []byte) (any, error) {
	req, err := decodePlanRequest(raw)
	if err != nil {
		return nil, err
	}
	return t.Engine.Apply(*req)
}

func handlePreview(t *Target, raw []byte) (any, error) {
	req, err := decodePlanRequest(raw)
	if err != nil {
		return nil, err
	}
	return t.Engine.Preview(*req)
}

func decodePlanRequest(raw []byte) (*mutation.PlanRequest, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &mutation.Error{
			Code:    mutation.CodeInvalidInput,
			Phase:   mutation.PhaseCompile,
			Message: "request body is not valid JSON",
		}
	}
	steps := gjson.GetBytes(raw, "steps")
	if !steps.Exists() || !steps.IsArray() {
		return nil, &mutation.Error{
			Code:    mutation.CodeInvalidInput,
			Phase:   mutation.PhaseCompile,
			Message: "steps must be an array",
		}
	}
	var req mutation.PlanRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &mutation.Error{
			Code:    mutation.CodeInvalidInput,
			Phase:   mutation.PhaseCompile,
			Message: "malformed plan request: " + err.Error(),
		}
	}
	return &req, nil
}

// countContent walks the tree once and derives the info counts.
func countContent(snap *doc.Snapshot) InfoCounts {
	var c InfoCounts
	var walk func(n *doc.Node)
	walk = func(n *doc.Node) {
		switch n.Type {
		case doc.NodeParagraph:
			c.Paragraphs++
		case doc.NodeTable:
			c.Tables++
		case doc.NodeBulletList, doc.NodeOrderedList:
			c.Lists++
		case doc.NodeCommentRangeStart:
			c.Comments++
		}
		if n.IsText() {
			c.Words += countWords(n.Text)
			for _, m := range n.Marks {
				switch m.Type {
				case doc.MarkComment:
					c.Comments++
				case doc.MarkInsertion, doc.MarkDeletion:
					c.TrackedChanges++
				}
			}
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(snap.Root())
	return c
}

func countWords(text string) int {
	return len(strings.FieldsFunc(text, unicode.IsSpace))
}

// The operation table is static, so one shared instance serves every
// session.
var sharedRegistry *Registry

func init() {
	sharedRegistry = NewRegistry()
}

// Default returns the shared operation table.
func Default() *Registry {
	return sharedRegistry
}
