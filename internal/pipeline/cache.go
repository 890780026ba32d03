package pipeline

import "sync"

// Cache is the session-scoped memo table from pipeline keys to artifact
// cells. Entries are created lazily, never invalidated, and never evicted.
//
// Computation is at-most-once per key. Concurrent lookups of different keys
// proceed independently; a concurrent lookup of a key already being
// computed blocks until the first caller publishes the result. Lookups are
// reentrant on the computing goroutine because every nested lookup targets
// a strictly earlier key, so recursion terminates at the externally built
// zeroth artifact and no cycle is possible.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*cacheEntry
}

type cacheEntry struct {
	done chan struct{}
	cell *Cell
}

func NewCache() *Cache {
	return &Cache{entries: make(map[Key]*cacheEntry)}
}

// GetOrCompute returns the cell cached under key, computing and storing it
// first if absent. A panicking compute poisons the key, which is fine:
// every pipeline failure aborts the unit's compilation outright.
func (c *Cache) GetOrCompute(key Key, compute func() *Cell) *Cell {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		<-e.done
		return e.cell
	}
	e := &cacheEntry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	e.cell = compute()
	close(e.done)
	return e.cell
}

// Len reports how many keys have been demanded so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
