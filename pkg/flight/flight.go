// Package flight coalesces concurrent identical requests onto a single
// in-flight computation and holds finished results for a TTL.
package flight

import (
	"sync"
	"time"
)

type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	finished map[K]entry[V]
	pending  map[K]*job[V]

	work func(K) (V, error)
	ttl  time.Duration
}

type entry[V any] struct {
	val      V
	deadline time.Time // zero => never expires
}

type job[V any] struct {
	val  V
	err  error
	done chan struct{}
}

// New builds a cache around work. ttl <= 0 keeps finished results forever.
func New[K comparable, V any](work func(K) (V, error), ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		finished: make(map[K]entry[V]),
		pending:  make(map[K]*job[V]),
		work:     work,
		ttl:      ttl,
	}
}

// Get returns the cached result for k, joins an in-flight computation, or
// starts one. Errors are not cached; a failed key recomputes on the next call.
func (c *Cache[K, V]) Get(k K) (V, error) {
	c.mu.Lock()

	if e, ok := c.finished[k]; ok {
		if e.deadline.IsZero() || time.Now().Before(e.deadline) {
			c.mu.Unlock()
			return e.val, nil
		}
		delete(c.finished, k)
	}

	if j, ok := c.pending[k]; ok {
		c.mu.Unlock()
		<-j.done
		return j.val, j.err
	}

	return c.run(k)
}

// Force recomputes k even when a finished result exists, still coalescing
// with any in-flight computation.
func (c *Cache[K, V]) Force(k K) (V, error) {
	c.mu.Lock()
	delete(c.finished, k)

	if j, ok := c.pending[k]; ok {
		c.mu.Unlock()
		<-j.done
		return j.val, j.err
	}

	return c.run(k)
}

// run starts the work for k. Caller holds the lock; run releases it while
// the work executes.
func (c *Cache[K, V]) run(k K) (V, error) {
	j := &job[V]{done: make(chan struct{})}
	c.pending[k] = j
	c.mu.Unlock()

	j.val, j.err = c.work(k)

	c.mu.Lock()
	delete(c.pending, k)
	if j.err == nil {
		e := entry[V]{val: j.val}
		if c.ttl > 0 {
			e.deadline = time.Now().Add(c.ttl)
		}
		c.finished[k] = e
	}
	c.mu.Unlock()

	close(j.done)
	return j.val, j.err
}
