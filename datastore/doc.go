// Package datastore defines the contract between the view engine and the
// remote source of truth: named collections that can be fetched, invalidated
// and mutated. The engine depends only on the IDataStore interface, never on
// a specific transport.
//
// Implementations:
//
//   - HTTP store (httpstore): talks to the catalog backend over HTTP with
//     bearer authentication, retries and request metrics. Available in the
//     "github.com/shelfview/shelfview/datastore/httpstore" package.
//
//   - Cache store (cachestore): a decorator that caches collection snapshots
//     per (collection, params) key, serves repeat fetches from the snapshot
//     until the key is invalidated, and gates result application so that a
//     superseded in-flight fetch can never overwrite a newer snapshot.
//     Available in the "github.com/shelfview/shelfview/datastore/cachestore"
//     package.
package datastore
