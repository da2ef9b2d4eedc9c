// FILE: lixenwraith/layerconf/store.go
package layerconf

import (
	"cmp"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// entry keeps the key's original spelling next to its value
type entry struct {
	key   string
	value string
}

// Store is a case-insensitive key/value table that provider implementations embed.
// It supplies TryGet, ChildKeys, Set and OnReload; the embedding type adds Load.
//
// Reads are lock-free against an immutable map that writers replace atomically,
// so a provider reloading in the background never exposes a half-written state.
type Store struct {
	data   atomic.Pointer[map[string]entry] // normalized key -> entry
	mu     sync.Mutex                       // serializes writers
	reload Signal
}

// NewStore creates a Store holding data
func NewStore(data map[string]string) *Store {
	s := &Store{}
	s.data.Store(buildEntries(data))
	return s
}

func buildEntries(data map[string]string) *map[string]entry {
	m := make(map[string]entry, len(data))
	for k, v := range data {
		m[normalizeKey(k)] = entry{key: k, value: v}
	}
	return &m
}

func (s *Store) snapshot() map[string]entry {
	if p := s.data.Load(); p != nil {
		return *p
	}
	return nil
}

// TryGet returns the value stored under key
func (s *Store) TryGet(key string) (string, bool) {
	e, ok := s.snapshot()[normalizeKey(key)]
	return e.value, ok
}

// ChildKeys returns the distinct segments under parentPath, sorted case-insensitively.
// Among spellings of one segment ("Server", "server") the byte-wise smallest is reported.
func (s *Store) ChildKeys(parentPath string) []string {
	seen := make(map[string]string)
	for _, e := range s.snapshot() {
		if seg, ok := childSegment(e.key, parentPath); ok {
			n := normalizeKey(seg)
			if cur, dup := seen[n]; !dup || seg < cur {
				seen[n] = seg
			}
		}
	}

	keys := slices.Collect(maps.Values(seen))
	slices.SortFunc(keys, func(a, b string) int {
		return cmp.Or(
			strings.Compare(normalizeKey(a), normalizeKey(b)),
			strings.Compare(a, b),
		)
	})
	return keys
}

// Keys returns every stored key in its original spelling
func (s *Store) Keys() []string {
	snap := s.snapshot()
	keys := make([]string, 0, len(snap))
	for _, e := range snap {
		keys = append(keys, e.key)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of stored keys
func (s *Store) Len() int {
	return len(s.snapshot())
}

// Set stores a single value without firing the reload signal
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.snapshot()
	next := make(map[string]entry, len(old)+1)
	maps.Copy(next, old)
	next[normalizeKey(key)] = entry{key: key, value: value}
	s.data.Store(&next)
}

// Replace swaps in a new data set. When notify is true the reload signal fires afterwards.
func (s *Store) Replace(data map[string]string, notify bool) {
	s.mu.Lock()
	s.data.Store(buildEntries(data))
	s.mu.Unlock()

	if notify {
		s.reload.Notify()
	}
}

// OnReload registers fn for this store's reload signal
func (s *Store) OnReload(fn func()) (cancel func()) {
	return s.reload.Subscribe(fn)
}

// NotifyReload fires the reload signal without changing data
func (s *Store) NotifyReload() {
	s.reload.Notify()
}
