package mutation

import (
	"strconv"
	"sync/atomic"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
)

// Tracker is the per-document-session revision counter used for optimistic
// concurrency. It subscribes once to the document's commit stream and
// advances exactly once per document-changing commit, regardless of origin.
// This is the engine's only concurrency gate; no locks are held across a
// plan.
type Tracker struct {
	current atomic.Uint64
}

// NewTracker creates a tracker for the document and registers its commit
// observer.
func NewTracker(d *doc.Doc) *Tracker {
	t := &Tracker{}
	t.current.Store(d.Revision())
	d.OnCommit(func(c doc.Commit) {
		t.current.Store(c.Revision)
	})
	return t
}

// Revision returns the current revision as an opaque string.
func (t *Tracker) Revision() string {
	return strconv.FormatUint(t.current.Load(), 10)
}

// CheckRevision is a no-op when expected is empty. Otherwise a mismatch
// against the live revision raises REVISION_MISMATCH carrying both values
// and a retry hint.
func (t *Tracker) CheckRevision(expected string) error {
	if expected == "" {
		return nil
	}
	current := t.Revision()
	if expected == current {
		return nil
	}
	return newError(CodeRevisionMismatch, PhaseCompile, "",
		"document changed since targets were resolved; re-resolve and retry the plan").
		withDetail("expectedRevision", expected).
		withDetail("currentRevision", current)
}
