// Package observer implements an ordered registry of change listeners.
package observer

import "sync"

// Registry keeps listeners in registration order. Removal goes through the
// handle returned by Add, so the same function may be registered twice.
type Registry[T any] struct {
	listeners []entry[T]
	next      uint64
	mu        sync.Mutex
}

type entry[T any] struct {
	fn     func(T)
	handle uint64
}

// Add registers fn and returns a function that removes exactly this
// registration. Calling the returned function more than once is harmless.
func (r *Registry[T]) Add(fn func(T)) (remove func()) {
	r.mu.Lock()
	r.next++
	h := r.next
	r.listeners = append(r.listeners, entry[T]{handle: h, fn: fn})
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, e := range r.listeners {
			if e.handle == h {
				r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every listener with v, in registration order. Listeners are
// invoked outside the registry lock and may add or remove listeners.
func (r *Registry[T]) Notify(v T) {
	r.mu.Lock()
	snapshot := make([]func(T), len(r.listeners))
	for i, e := range r.listeners {
		snapshot[i] = e.fn
	}
	r.mu.Unlock()

	for _, fn := range snapshot {
		fn(v)
	}
}

// Len returns the number of registered listeners.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}
