package tracer

import (
	"sync"
	"time"

	"github.com/yairfalse/kartta/pkg/types"
)

// TraceCache memoizes fetched traces by correlation ID so repeated discovery
// runs within the TTL do not hammer the trace store. Empty traces are never
// cached; a failed fetch should be retried on the next run.
type TraceCache struct {
	mu    sync.RWMutex
	items map[string]cachedTrace
	ttl   time.Duration

	hits   int64
	misses int64
}

type cachedTrace struct {
	trace     types.Trace
	expiresAt time.Time
}

// NewTraceCache creates a cache with the given TTL. A non-positive TTL
// defaults to five minutes.
func NewTraceCache(ttl time.Duration) *TraceCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TraceCache{
		items: make(map[string]cachedTrace),
		ttl:   ttl,
	}
}

// Get returns the cached trace for a correlation ID if present and fresh.
func (c *TraceCache) Get(correlationID string) (types.Trace, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[correlationID]
	if !ok {
		c.misses++
		return types.Trace{}, false
	}
	if time.Now().After(item.expiresAt) {
		delete(c.items, correlationID)
		c.misses++
		return types.Trace{}, false
	}
	c.hits++
	return item.trace, true
}

// Put stores a trace. Empty traces are ignored.
func (c *TraceCache) Put(trace types.Trace) {
	if trace.IsEmpty() || trace.CorrelationID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[trace.CorrelationID] = cachedTrace{
		trace:     trace,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Size returns the number of cached traces, expired entries included until
// their next lookup.
func (c *TraceCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns hit and miss counts.
func (c *TraceCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
