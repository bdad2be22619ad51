package descriptor

import (
	"reflect"
	"sync"
)

// Cache memoizes root descriptors per type. Each entry is built at most once
// per version; concurrent callers for the same key wait on the same build.
// Failed builds are cached too, so every caller sees the same error.
type Cache struct {
	entries sync.Map // reflect.Type -> *cacheEntry
}

type cacheEntry struct {
	once    sync.Once
	version uint64
	s       *Struct
	err     error
}

// Get returns the descriptor for t, building it with build when the cached
// entry is missing or older than version. built reports whether this call ran
// the build.
func (c *Cache) Get(t reflect.Type, version uint64, build func() (*Struct, error)) (s *Struct, built bool, err error) {
	for {
		v, _ := c.entries.LoadOrStore(t, &cacheEntry{version: version})
		e := v.(*cacheEntry)
		if e.version < version {
			c.entries.CompareAndSwap(t, e, &cacheEntry{version: version})
			continue
		}
		e.once.Do(func() {
			e.s, e.err = build()
			built = true
		})
		return e.s, built, e.err
	}
}

// Invalidate drops every entry.
func (c *Cache) Invalidate() {
	c.entries.Range(func(k, _ any) bool {
		c.entries.Delete(k)
		return true
	})
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
