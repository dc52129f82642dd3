package events

import "sync"

// registry is the listener bookkeeping shared by CallbackEvent and ChannelEvent.
// L is the listener type, T the published value.
type registry[L any, T any] struct {
	mu        sync.RWMutex
	listeners map[uint64]L
	nextID    uint64

	replay  bool // Hand the last published value to new listeners
	last    T
	hasLast bool
}

func newRegistry[L any, T any](replay bool) *registry[L, T] {
	return &registry[L, T]{
		listeners: make(map[uint64]L),
		replay:    replay,
	}
}

// add stores l and returns its deregistration func, plus the value to replay if any
func (r *registry[L, T]) add(l L) (func(), T, bool) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	last, ok := r.last, r.replay && r.hasLast
	r.mu.Unlock()

	var once sync.Once
	unregister := func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
	return unregister, last, ok
}

// publish records v and returns the listeners to deliver it to.
// Delivery happens outside the lock so listeners may re-enter the event.
func (r *registry[L, T]) publish(v T) []L {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.replay {
		r.last = v
		r.hasLast = true
	}

	out := make([]L, 0, len(r.listeners))
	for _, l := range r.listeners {
		out = append(out, l)
	}
	return out
}

func (r *registry[L, T]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

func (r *registry[L, T]) lastValue() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.hasLast
}
