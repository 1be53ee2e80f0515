// Package doc provides the in-memory rich-text document tree for SuperDoc.
//
// A document is a tree of block nodes (paragraphs, headings, list items,
// table cells) whose leaves carry inline content: styled text runs, atomic
// inline leaves (images, hard breaks), and zero-width range markers
// (bookmarks, comment ranges).
//
// # Position Model
//
// All absolute positions are character offsets into the document's flattened
// text: the text of each leaf block in traversal order, joined by a single
// separator character per block boundary. Atomic inline leaves contribute one
// placeholder character each; range markers contribute nothing.
//
// # Transactions
//
// Mutations are staged on a Transaction built from the current document
// state. Each applied step extends the transaction's Mapping so positions
// captured before earlier steps can be carried forward. Dispatch applies the
// whole transaction atomically, advances the revision exactly once, and
// notifies commit subscribers.
package doc
