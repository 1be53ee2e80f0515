// Package ops defines the operation contract: the static table of
// operations a document session exposes, the tool-name map that external
// callers address them by, and the JSON dispatch path.
//
// Operations are registered once at startup and verified for bidirectional
// tool-name coverage. Dispatch takes raw JSON and returns either a result
// value or a typed error envelope.
package ops
