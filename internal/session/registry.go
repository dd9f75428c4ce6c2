package session

import "sync"

// Observer receives the current identity, or nil when signed out. It is
// invoked once on subscribe with the current value and again on every change,
// always outside the registry lock.
type Observer func(*Identity)

// Registry tracks the current identity and notifies observers of changes.
//
// It restates the provider's lazily-initialized session singleton as explicit
// process state with an injectable lifecycle, so tests can substitute a fake
// provider and drive sign-in transitions directly.
type Registry struct {
	mu        sync.Mutex
	current   *Identity
	observers map[int]Observer
	nextID    int
}

// NewRegistry returns an empty registry with no signed-in identity.
func NewRegistry() *Registry {
	return &Registry{observers: make(map[int]Observer)}
}

// Current returns a copy of the signed-in identity, or nil when signed out.
func (r *Registry) Current() *Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneIdentity(r.current)
}

// Set records identity as the signed-in principal and notifies observers.
func (r *Registry) Set(identity Identity) {
	r.mu.Lock()
	r.current = &identity
	observers, value := r.snapshotLocked()
	r.mu.Unlock()

	for _, fn := range observers {
		fn(cloneIdentity(value))
	}
}

// Clear removes the signed-in principal and notifies observers with nil.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.current = nil
	observers, _ := r.snapshotLocked()
	r.mu.Unlock()

	for _, fn := range observers {
		fn(nil)
	}
}

// Observe registers fn and immediately invokes it with the current value.
// The returned unsubscribe releases the observer and is safe to call more
// than once.
func (r *Registry) Observe(fn Observer) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.observers[id] = fn
	value := cloneIdentity(r.current)
	r.mu.Unlock()

	fn(value)

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.observers, id)
			r.mu.Unlock()
		})
	}
}

// snapshotLocked copies the observer set so callbacks run without the lock.
func (r *Registry) snapshotLocked() ([]Observer, *Identity) {
	observers := make([]Observer, 0, len(r.observers))
	for _, fn := range r.observers {
		observers = append(observers, fn)
	}
	return observers, r.current
}

func cloneIdentity(identity *Identity) *Identity {
	if identity == nil {
		return nil
	}
	clone := *identity
	return &clone
}
