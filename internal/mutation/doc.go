// Package mutation implements the declarative mutation-plan engine.
//
// Callers submit an ordered list of selector-based steps. The engine
// resolves every step against one fixed snapshot of the document (true
// two-phase resolve-then-apply), validates the compiled targets, executes
// the steps on a single shared transaction, and dispatches that transaction
// exactly once. Optimistic concurrency is enforced by a per-session revision
// check at the start of each call; no locks are held across compile and
// execute.
//
// Preview runs the identical compile and execute path against an ephemeral
// transaction that is never dispatched, collecting failures instead of
// raising them.
package mutation
