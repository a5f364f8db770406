package flight

import (
	"errors"
	"sync"
	"time"
)

// ErrAbandoned is returned to callers that joined work which panicked.
var ErrAbandoned = errors.New("flight: work panicked")

// Cache coalesces concurrent work for the same key and keeps successful
// results until they expire. Errors are never cached.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	finished map[K]entry[V]
	pending  map[K]*job[V]

	work func(K) (V, error)
	ttl  time.Duration
	now  func() time.Time
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

// NewCache returns a cache holding results for an hour.
func NewCache[K comparable, V any](work func(K) (V, error)) *Cache[K, V] {
	return &Cache[K, V]{
		finished: make(map[K]entry[V]),
		pending:  make(map[K]*job[V]),
		work:     work,
		ttl:      time.Hour,
		now:      time.Now,
	}
}

// Expiry sets how long future results are kept. d <= 0 keeps them forever.
func (p *Cache[K, V]) Expiry(d time.Duration) {
	p.mu.Lock()
	p.ttl = d
	p.mu.Unlock()
}

// Get returns the cached value for k, joining or starting work on a miss.
func (p *Cache[K, V]) Get(k K) (V, error) {
	p.mu.Lock()
	if e, ok := p.finished[k]; ok {
		if e.deadline.IsZero() || p.now().Before(e.deadline) {
			p.mu.Unlock()
			return e.val, nil
		}
		delete(p.finished, k)
	}
	if j, ok := p.pending[k]; ok {
		p.mu.Unlock()
		<-j.done
		return j.val, j.err
	}
	j := p.start(k)
	p.mu.Unlock()

	return p.run(k, j)
}

// Force recomputes k even when a cached value exists. It still joins work
// already in flight for k.
func (p *Cache[K, V]) Force(k K) (V, error) {
	p.mu.Lock()
	if j, ok := p.pending[k]; ok {
		p.mu.Unlock()
		<-j.done
		return j.val, j.err
	}
	delete(p.finished, k)
	j := p.start(k)
	p.mu.Unlock()

	return p.run(k, j)
}

// start registers a job and drops expired results; p.mu must be held.
func (p *Cache[K, V]) start(k K) *job[V] {
	now := p.now()
	for key, e := range p.finished {
		if !e.deadline.IsZero() && !now.Before(e.deadline) {
			delete(p.finished, key)
		}
	}
	j := &job[V]{done: make(chan struct{})}
	p.pending[k] = j
	return j
}

// run performs the work for k. Waiters are always released, even when the
// work panics; the panic then continues in the caller that started it.
func (p *Cache[K, V]) run(k K, j *job[V]) (V, error) {
	completed := false
	defer func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if !completed {
			var zero V
			j.val, j.err = zero, ErrAbandoned
		} else if j.err == nil {
			e := entry[V]{val: j.val}
			if p.ttl > 0 {
				e.deadline = p.now().Add(p.ttl)
			}
			p.finished[k] = e
		}
		delete(p.pending, k)
		close(j.done)
	}()

	j.val, j.err = p.work(k)
	completed = true
	return j.val, j.err
}
