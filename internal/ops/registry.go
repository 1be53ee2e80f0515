package ops

import (
	"fmt"
	"sort"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
	"github.com/wasimrehman05/superdoc-sub017/internal/mutation"
)

// Target bundles the live session state an operation acts on.
type Target struct {
	Doc    *doc.Doc
	Engine *mutation.Engine
}

// HandlerFunc executes one operation against a target. The raw bytes are
// the request arguments as JSON.
type HandlerFunc func(t *Target, raw []byte) (any, error)

// Operation is one entry in the static operation table.
type Operation struct {
	// ID is the dotted operation id, e.g. "mutations.apply".
	ID string

	// ToolName is the external tool identifier, e.g. "superdoc_apply_mutations".
	ToolName string

	// Mutating reports whether the operation can change document state.
	Mutating bool

	Handler HandlerFunc
}

// Registry is the operation table. It is built once and never mutated.
type Registry struct {
	byID   map[string]*Operation
	byTool map[string]*Operation
	order  []string
}

// NewRegistry builds the operation table and verifies the tool-name map.
// A broken map is a build defect, so verification failure panics.
func NewRegistry() *Registry {
	r := &Registry{
		byID:   map[string]*Operation{},
		byTool: map[string]*Operation{},
	}
	for _, op := range []*Operation{
		{ID: "document.getText", ToolName: "superdoc_get_text", Handler: handleGetText},
		{ID: "document.info", ToolName: "superdoc_get_info", Handler: handleInfo},
		{ID: "document.capabilities", ToolName: "superdoc_get_capabilities", Handler: handleCapabilities},
		{ID: "mutations.apply", ToolName: "superdoc_apply_mutations", Mutating: true, Handler: handleApply},
		{ID: "mutations.preview", ToolName: "superdoc_preview_mutations", Handler: handlePreview},
	} {
		r.register(op)
	}
	if err := r.Verify(); err != nil {
		panic("ops: " + err.Error())
	}
	return r
}

func (r *Registry) register(op *Operation) {
	if _, dup := r.byID[op.ID]; dup {
		panic("ops: duplicate operation id " + op.ID)
	}
	r.byID[op.ID] = op
	r.order = append(r.order, op.ID)
	if op.ToolName != "" {
		if _, dup := r.byTool[op.ToolName]; dup {
			panic("ops: duplicate tool name " + op.ToolName)
		}
		r.byTool[op.ToolName] = op
	}
}

// Verify checks that every operation carries a tool name and every tool
// name resolves back to its operation.
func (r *Registry) Verify() error {
	for id, op := range r.byID {
		if op.ToolName == "" {
			return fmt.Errorf("operation %s has no tool name", id)
		}
		back, ok := r.byTool[op.ToolName]
		if !ok || back.ID != id {
			return fmt.Errorf("tool name %s does not map back to %s", op.ToolName, id)
		}
	}
	for name, op := range r.byTool {
		if r.byID[op.ID] == nil {
			return fmt.Errorf("tool name %s maps to unknown operation %s", name, op.ID)
		}
	}
	return nil
}

// Lookup returns the operation for an id.
func (r *Registry) Lookup(id string) (*Operation, bool) {
	op, ok := r.byID[id]
	return op, ok
}

// ResolveTool maps an external tool name to its operation id.
func (r *Registry) ResolveTool(name string) (string, bool) {
	op, ok := r.byTool[name]
	if !ok {
		return "", false
	}
	return op.ID, true
}

// ToolName maps an operation id to its external tool name.
func (r *Registry) ToolName(id string) (string, bool) {
	op, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return op.ToolName, true
}

// Operations returns the operation ids in registration order.
func (r *Registry) Operations() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ToolNames returns all registered tool names, sorted.
func (r *Registry) ToolNames() []string {
	out := make([]string, 0, len(r.byTool))
	for name := range r.byTool {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Dispatch runs the named operation against the target. Unknown operations
// report CAPABILITY_UNAVAILABLE so callers can distinguish a bad operation
// id from a failing plan.
func (r *Registry) Dispatch(t *Target, id string, raw []byte) (any, error) {
	op, ok := r.byID[id]
	if !ok {
		return nil, &mutation.Error{
			Code:    mutation.CodeCapabilityUnavailable,
			Message: "unknown operation",
			Details: map[string]any{"operation": id},
		}
	}
	return op.Handler(t, raw)
}

// Envelope is the wire shape of an operation failure.
type Envelope struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	StepID  string         `json:"stepId,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorEnvelope converts any operation error into the wire envelope.
// Untyped errors surface as INVALID_INPUT.
func ErrorEnvelope(err error) *Envelope {
	if te, ok := mutation.AsError(err); ok {
		return &Envelope{
			Code:    string(te.Code),
			Message: te.Message,
			StepID:  te.StepID,
			Details: te.Details,
		}
	}
	return &Envelope{
		Code:    string(mutation.CodeInvalidInput),
		Message: err.Error(),
	}
}
