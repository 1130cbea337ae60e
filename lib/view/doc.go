// Package view implements the relational view engine on top of the catalog
// model: user-controlled filtering and sorting of joined rows, the transient
// per-row edit state, the remote-backed actions, and the controller that
// composes all of it into the rows a rendering layer consumes.
//
// Data flows one direction per derivation pass:
//
//	raw collections -> Index -> JoinBooks -> Filter -> Sort -> rows
//
// The EditSession and the Coordinator sit beside that pipeline and trigger
// re-derivation either by invalidating collections (remote mutations) or by
// mutating the local projection (optimistic updates).
//
// Key Components:
//
//   - Filter: applies a FilterState (column -> raw user input) to a row
//     slice through declared per-column accessors. Match kinds are
//     case-insensitive substring, case-sensitive equality, numeric equality
//     and derived boolean. Active filters combine with logical AND; empty
//     inputs are no-ops. The input slice is never mutated and relative order
//     is preserved, which makes filtering idempotent.
//
//   - Sort: a total-order comparator factory keyed by column and direction.
//     A nil column is a stable passthrough. Direction flips the sign of the
//     three-way compare, not the input order, so ties keep their relative
//     order in both directions (the sort is stable).
//
//   - EditSession: the single-row create/edit state machine, independent of
//     the committed collections. At most one row across the whole view may
//     be in create or edit mode; attempts to open a second session are
//     refused without touching the current one.
//
//   - Coordinator: executes the mutating actions (reserve, borrow, delete,
//     save) against the data store, applies local optimistic updates where
//     the action's contract calls for them, and reports which collection
//     keys each action invalidates.
//
//   - Controller: the observable root. Owns the collection projections, the
//     filter/sort/category state and the edit session, re-derives the
//     pipeline for invalidated collections only, and exposes rows with a
//     structured identity (kind + id) plus per-row action availability.
package view
