package boundary

import (
	"sort"
	"strings"
	"sync"
)

const shellPrefix = "shell-"

// ShellCacheName is the cache holding the offline shell of version.
func ShellCacheName(version string) string {
	return shellPrefix + version
}

// Cache maps request paths to stored response bodies.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func (c *Cache) Put(path string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = append([]byte(nil), body...)
}

func (c *Cache) Match(path string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.entries[path]
	return b, ok
}

// CacheStorage holds the named caches of a registration.
type CacheStorage struct {
	mu     sync.Mutex
	caches map[string]*Cache
}

func NewCacheStorage() *CacheStorage {
	return &CacheStorage{caches: make(map[string]*Cache)}
}

// Open returns the cache called name, creating it if needed.
func (s *CacheStorage) Open(name string) *Cache {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.caches[name]
	if !ok {
		c = &Cache{entries: make(map[string][]byte)}
		s.caches[name] = c
	}
	return c
}

func (s *CacheStorage) Get(name string) (*Cache, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.caches[name]
	return c, ok
}

func (s *CacheStorage) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.caches[name]
	delete(s.caches, name)
	return ok
}

// Keys returns the cache names in order.
func (s *CacheStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.caches))
	for name := range s.caches {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// prune deletes shell caches of every version except keep.
func (s *CacheStorage) prune(keep string) []string {
	var removed []string
	for _, name := range s.Keys() {
		if strings.HasPrefix(name, shellPrefix) && name != keep {
			s.Delete(name)
			removed = append(removed, name)
		}
	}
	return removed
}
