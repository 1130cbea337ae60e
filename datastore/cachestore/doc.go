// Package cachestore wraps another IDataStore with a snapshot cache. Each
// (collection, params) pair maps to one snapshot; repeat fetches are served
// from the snapshot until Invalidate drops it. Fetches that were superseded by
// a later fetch or an invalidation are discarded on arrival, so a slow remote
// response can never overwrite a newer snapshot.
package cachestore
