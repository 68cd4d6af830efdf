package component

import "sync"

// ProgramCache stores compiled expression programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryProgramCache is a concurrency-safe in-memory ProgramCache.
type MemoryProgramCache struct {
	programs sync.Map
}

// NewMemoryProgramCache constructs an empty cache.
func NewMemoryProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{}
}

// Get implements ProgramCache.
func (c *MemoryProgramCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

// Set implements ProgramCache.
func (c *MemoryProgramCache) Set(key string, value any) {
	c.programs.Store(key, value)
}

// namespacedCache keeps programs compiled against one constructor's filters
// apart from others sharing the same cache.
type namespacedCache struct {
	cache  ProgramCache
	prefix string
}

func (c namespacedCache) Get(key string) (any, bool) {
	return c.cache.Get(c.prefix + key)
}

func (c namespacedCache) Set(key string, value any) {
	c.cache.Set(c.prefix+key, value)
}
