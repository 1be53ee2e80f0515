package doc

import "sync"

// Commit describes one committed, document-changing transaction.
type Commit struct {
	// Revision is the document revision after the commit.
	Revision uint64

	// Steps is the number of steps the transaction applied.
	Steps int
}

// CommitFunc receives commit notifications.
type CommitFunc func(Commit)

// Doc is a live document instance: the current tree, a monotonic revision,
// and a commit notification stream. All methods are safe for concurrent use.
type Doc struct {
	mu       sync.RWMutex
	root     *Node
	snap     *Snapshot
	schema   *Schema
	revision uint64
	subs     []CommitFunc
}

// NewDoc creates a document from the given root. The revision starts at 0.
func NewDoc(root *Node) (*Doc, error) {
	snap, err := NewSnapshot(root)
	if err != nil {
		return nil, err
	}
	return &Doc{root: root, snap: snap, schema: DefaultSchema()}, nil
}

// Schema returns the document's schema.
func (d *Doc) Schema() *Schema {
	return d.schema
}

// Revision returns the current revision counter.
func (d *Doc) Revision() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// Snapshot returns the current immutable snapshot.
func (d *Doc) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// OnCommit registers a commit observer. Observers run synchronously, in
// registration order, after each document-changing dispatch.
func (d *Doc) OnCommit(fn CommitFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, fn)
}

// NewTransaction creates a transaction staged against the current state.
func (d *Doc) NewTransaction() *Transaction {
	d.mu.RLock()
	defer d.mu.RUnlock()
	root := d.root.Clone()
	// Clone preserves structure, so the snapshot rebuild cannot fail here.
	snap, _ := NewSnapshot(root)
	return &Transaction{doc: d, base: d.revision, root: root, snap: snap}
}

// Dispatch commits a transaction atomically. A transaction with no steps is
// a no-op: it neither advances the revision nor notifies observers. The
// revision advances exactly once per document-changing dispatch.
func (d *Doc) Dispatch(tx *Transaction) error {
	if tx.finished {
		return ErrDispatched
	}
	if tx.doc != d {
		return ErrStaleTransaction
	}

	d.mu.Lock()
	if tx.base != d.revision {
		d.mu.Unlock()
		return ErrStaleTransaction
	}
	tx.finished = true
	if !tx.HasChanges() {
		d.mu.Unlock()
		return nil
	}
	d.root = tx.root
	d.snap = tx.snap
	d.revision++
	commit := Commit{Revision: d.revision, Steps: tx.StepCount()}
	subs := append([]CommitFunc(nil), d.subs...)
	d.mu.Unlock()

	for _, fn := range subs {
		fn(commit)
	}
	return nil
}
