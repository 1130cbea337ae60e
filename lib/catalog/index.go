package catalog

// Identified is implemented by every entity and typed view that carries an id.
type Identified interface {
	EntityID() string
}

// Index builds a lookup keyed by entity id from a fetched collection.
// The operation is O(n) and keeps the last seen item on duplicate ids; the
// fetch is de-duplicated upstream, so duplicates get overwrite semantics
// rather than an error. The values reference the fetched items, not copies.
//
// An index is built fresh from each collection snapshot and discarded when
// the snapshot is invalidated or refetched; it is never mutated in place.
func Index[T Identified](items []T) map[string]T {
	index := make(map[string]T, len(items))
	for _, item := range items {
		index[item.EntityID()] = item
	}
	return index
}
