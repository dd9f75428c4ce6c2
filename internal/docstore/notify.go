package docstore

import "sync"

// Watchers is the in-process observer registry shared by store adapters.
// Adapters call Notify after each committed write.
type Watchers struct {
	mu     sync.Mutex
	nextID int
	byKey  map[watchKey]map[int]func(Document)
}

type watchKey struct {
	collection string
	id         string
}

// NewWatchers returns an empty registry.
func NewWatchers() *Watchers {
	return &Watchers{byKey: make(map[watchKey]map[int]func(Document))}
}

// Add registers fn for (collection, id) and returns an idempotent unsubscribe.
func (w *Watchers) Add(collection, id string, fn func(Document)) func() {
	key := watchKey{collection: collection, id: id}

	w.mu.Lock()
	watcherID := w.nextID
	w.nextID++
	if w.byKey[key] == nil {
		w.byKey[key] = make(map[int]func(Document))
	}
	w.byKey[key][watcherID] = fn
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			if watchers, ok := w.byKey[key]; ok {
				delete(watchers, watcherID)
				if len(watchers) == 0 {
					delete(w.byKey, key)
				}
			}
			w.mu.Unlock()
		})
	}
}

// Notify delivers doc to every watcher of (collection, id). Callbacks run
// outside the lock so a watcher may unsubscribe from within its callback.
func (w *Watchers) Notify(collection, id string, doc Document) {
	key := watchKey{collection: collection, id: id}

	w.mu.Lock()
	watchers := make([]func(Document), 0, len(w.byKey[key]))
	for _, fn := range w.byKey[key] {
		watchers = append(watchers, fn)
	}
	w.mu.Unlock()

	for _, fn := range watchers {
		fn(doc)
	}
}
