package source

import (
	"sync"
	"time"

	"github.com/houmingc/qutim/loopevent"
)

// IdleWindow is the minimum time a cache entry survives without being
// looked up or re-inserted.
const IdleWindow = 5 * time.Minute

// Cache maps canonical paths to open Sources. Each NewCache call
// returns an independent Cache; nothing here makes one process-wide. Entries age out after IdleWindow of inactivity; the Source
// itself survives eviction as long as something still holds a
// reference to it (see Source.Retain/Release).
//
// Every Source/Node operation this module performs runs on loop's
// thread, unsynchronized by design (see loopevent). The idle timer
// that ages out an entry fires on its own goroutine, so insert posts
// the actual eviction back onto loop rather than running it inline —
// the mutex here only protects the entries map itself, never a Source
// or its Node tree.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	loop    loopevent.EventLoop

	// idleWindow overrides IdleWindow when non-zero; set directly by
	// tests that can't afford to wait out the real window.
	idleWindow time.Duration
}

type cacheEntry struct {
	source *Source
	timer  *time.Timer
}

// NewCache returns a Cache whose idle-eviction callbacks are posted to
// loop instead of running on the timer's own goroutine.
func NewCache(loop loopevent.EventLoop) *Cache {
	return &Cache{entries: make(map[string]*cacheEntry), loop: loop}
}

func (c *Cache) window() time.Duration {
	if c.idleWindow != 0 {
		return c.idleWindow
	}
	return IdleWindow
}

func (c *Cache) lookup(path string) *Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok {
		return nil
	}
	e.timer.Reset(c.window())
	return e.source
}

func (c *Cache) insert(path string, s *Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[path]; ok {
		e.timer.Stop()
		e.source.Release()
	}
	s.Retain()
	e := &cacheEntry{source: s}
	e.timer = time.AfterFunc(c.window(), func() {
		c.loop.Post(loopevent.PriorityNormal, func() { c.evict(path) })
	})
	c.entries[path] = e
}

func (c *Cache) evict(path string) {
	c.mu.Lock()
	e, ok := c.entries[path]
	if ok {
		delete(c.entries, path)
	}
	c.mu.Unlock()
	if ok {
		e.source.Release()
	}
}

// Len reports the number of live cache entries; exported for tests.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
