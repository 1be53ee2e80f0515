// Package index builds a full-tree snapshot index of block nodes and inline
// entities for target resolution.
//
// The index is built in one traversal and owned by a single compile pass. It
// is never patched incrementally: any tree mutation invalidates it and a new
// index must be built from the new snapshot.
package index
