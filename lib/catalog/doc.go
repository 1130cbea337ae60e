// Package catalog defines the entity model of the library catalog and the
// pure derivation helpers that operate on fetched collections.
//
// Collections arrive from the remote backend as documents in a normalized
// shape: every record carries an id, a kind, a flat attribute map and a map
// of named relationships referencing other records by id. The package decodes
// that wire shape into Entity values and projects them onto typed views
// (Book, Author, Reservation, Borrowing, Member) for the rest of the engine.
//
// Key Components:
//
//   - Entity / RelationRef: the generic wire model. RelationRef holds either
//     a single reference or an ordered list of references, matching the
//     to-one/to-many split of the backend payloads.
//
//   - Index: builds an id keyed lookup from a fetched collection in O(n).
//     Duplicate ids keep the last seen record; the fetch is de-duplicated
//     upstream, so overwrite semantics are deliberate rather than an error.
//
//   - JoinBooks: resolves every book's author reference against an author
//     index and derives the per-author book count. The two collections are
//     fetched independently and may arrive in either order, so an
//     unresolvable reference yields the Unknown sentinel author instead of an
//     error, and the aggregate is counted from the raw relationship ids so it
//     is correct even while the author fetch is still pending.
//
//   - Record types (BookRecord, AuthorRecord, ReservationRecord,
//     BorrowingRecord): the exact shapes emitted to the backend on mutation,
//     wrapped the way the backend expects them.
//
// Everything in this package is side-effect free. Derivations are recomputed
// whenever an input collection snapshot changes; nothing here is cached.
package catalog
