package cachestore

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/shelfview/shelfview/datastore"
	"github.com/shelfview/shelfview/lib/catalog"
	"github.com/shelfview/shelfview/lib/logging"
)

var logger = logging.CreateLogger("datastore/cache")

// New wraps the given store with a snapshot cache.
func New(inner datastore.IDataStore) datastore.IDataStore {
	return &cacheStore{
		inner:   inner,
		entries: xsync.NewMapOf[string, *entry](),
	}
}

type cacheStore struct {
	inner   datastore.IDataStore
	entries *xsync.MapOf[string, *entry]
}

// entry is the cache slot of one (collection, params) key. latest identifies
// the fetch whose result is still allowed to populate the slot; results of
// any other fetch are dropped.
type entry struct {
	mu     sync.Mutex
	latest string
	loaded bool
	data   []catalog.Entity
}

// --------------------------------------------------------------------------
// Interface Methods (docu see datastore/interface.go)
// --------------------------------------------------------------------------

func (s *cacheStore) Fetch(collection string, params map[string]string) ([]catalog.Entity, error) {
	key := cacheKey(collection, params)
	e, _ := s.entries.LoadOrCompute(key, func() *entry { return &entry{} })

	e.mu.Lock()
	if e.loaded {
		data := e.data
		e.mu.Unlock()
		return data, nil
	}
	token := uuid.NewString()
	e.latest = token
	e.mu.Unlock()

	data, err := s.inner.Fetch(collection, params)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.latest != token {
		// A newer fetch or an invalidation superseded this one.
		logger.Debugf("Discarding superseded fetch of %s", key)
		if e.loaded {
			return e.data, nil
		}
		return data, err
	}
	if err != nil {
		return nil, err
	}
	e.loaded = true
	e.data = data
	return data, nil
}

func (s *cacheStore) Invalidate(collection string) {
	prefix := collection + "?"
	s.entries.Range(func(key string, e *entry) bool {
		if key == collection || strings.HasPrefix(key, prefix) {
			e.mu.Lock()
			e.latest = ""
			e.loaded = false
			e.data = nil
			e.mu.Unlock()
			s.entries.Delete(key)
		}
		return true
	})
	s.inner.Invalidate(collection)
}

func (s *cacheStore) Mutate(method, path string, body interface{}) error {
	return s.inner.Mutate(method, path, body)
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// cacheKey builds a deterministic key from the collection and its params.
func cacheKey(collection string, params map[string]string) string {
	if len(params) == 0 {
		return collection
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(collection)
	b.WriteByte('?')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}
