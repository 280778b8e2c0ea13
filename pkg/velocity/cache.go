package velocity

import (
	"crypto/sha256"
	"sync"
	"sync/atomic"
)

// CompiledTemplateCache memoises compiled templates by the SHA-256 of their
// source. Entries are never evicted. It is safe for concurrent use.
type CompiledTemplateCache struct {
	mu      sync.RWMutex
	entries map[[32]byte]*Template
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// CacheStats is a snapshot of cache activity.
type CacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// NewCompiledTemplateCache creates an empty cache
func NewCompiledTemplateCache() *CompiledTemplateCache {
	return &CompiledTemplateCache{
		entries: make(map[[32]byte]*Template),
	}
}

// Compile returns the cached template for src, compiling and storing it on
// a miss. Failed compiles are not cached. When two callers miss on the
// same source concurrently, the first stored template is returned to both.
func (c *CompiledTemplateCache) Compile(src string) (*Template, error) {
	return c.compile(src, GetLogger())
}

// compile is Compile with the debug output sent to logger.
func (c *CompiledTemplateCache) compile(src string, logger *Logger) (*Template, error) {
	key := sha256.Sum256([]byte(src))

	if tmpl, ok := c.lookup(key); ok {
		return tmpl, nil
	}

	tmpl, err := compile(src, logger)
	if err != nil {
		return nil, err
	}

	c.misses.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}
	c.entries[key] = tmpl
	logger.WithField("entries", len(c.entries)).Debug("Cached template %x", key[:6])
	return tmpl, nil
}

func (c *CompiledTemplateCache) lookup(key [32]byte) (*Template, bool) {
	c.mu.RLock()
	tmpl, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	}
	return tmpl, ok
}

// Get returns the cached template for src without compiling.
func (c *CompiledTemplateCache) Get(src string) (*Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tmpl, ok := c.entries[sha256.Sum256([]byte(src))]
	return tmpl, ok
}

// Len returns the number of cached templates
func (c *CompiledTemplateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters
func (c *CompiledTemplateCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

// Clear removes all cached templates
func (c *CompiledTemplateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[[32]byte]*Template)
}
