package report

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoEntries bounds the derived values kept per snapshot version
const DefaultMemoEntries = 64

// memo holds derived values for a single snapshot version. Any new version
// discards everything; nothing outlives the process. Within a version the
// least recently used entries are evicted once capacity is reached.
type memo struct {
	mu      sync.Mutex
	version uint64
	entries *lru.Cache[string, any]
}

func newMemo(capacity int) *memo {
	if capacity <= 0 {
		capacity = DefaultMemoEntries
	}
	entries, err := lru.New[string, any](capacity)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &memo{entries: entries}
}

func (m *memo) get(version uint64, key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.version != version {
		return nil, false
	}
	return m.entries.Get(key)
}

// advance makes version current, dropping entries of any other version.
// It reports whether the version changed.
func (m *memo) advance(version uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.version == version {
		return false
	}
	m.version = version
	m.entries.Purge()
	return true
}

// put stores v unless a later snapshot load has superseded version
func (m *memo) put(version uint64, key string, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.version != version {
		return
	}
	m.entries.Add(key, v)
}

func (m *memo) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries.Len()
}

// cached returns the memoised value for key under version, computing it on a
// miss. Values must be immutable once stored. Two callers may compute the
// same key concurrently; both results are equal and the last one wins.
func cached[T any](m *memo, version uint64, key string, compute func() (T, error)) (T, error) {
	if v, ok := m.get(version, key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	m.put(version, key, v)
	return v, nil
}
