package doc

import "errors"

// Errors returned by document tree operations.
var (
	// ErrInvalidRange indicates an invalid range (end < start or negative).
	ErrInvalidRange = errors.New("doc: invalid range")

	// ErrOffsetOutOfRange indicates a position outside the document.
	ErrOffsetOutOfRange = errors.New("doc: offset out of range")

	// ErrCrossBlockEdit indicates a transaction step whose range is not
	// contained in a single leaf block.
	ErrCrossBlockEdit = errors.New("doc: edit range crosses block boundary")

	// ErrStaleTransaction indicates a transaction built against a revision
	// that is no longer current.
	ErrStaleTransaction = errors.New("doc: transaction is stale")

	// ErrDispatched indicates a transaction was used after dispatch.
	ErrDispatched = errors.New("doc: transaction already dispatched")

	// ErrNotDocument indicates a root node that is not a document node.
	ErrNotDocument = errors.New("doc: root must be a document node")
)
