package onboarding

import (
	"context"
	"sync"
	"time"

	"github.com/kwanzahq/vendordesk/internal/docstore"
)

// DefaultPollInterval bounds worst-case approval detection latency when
// polling: a flip becomes visible within one interval.
const DefaultPollInterval = 3 * time.Second

// approvedField is the flag an external reviewer flips on the user profile
// document.
const approvedField = "approved"

// Watcher waits for the external approval flag on a profile document and
// fires a callback exactly once when it flips. Stop releases the underlying
// subscription or timer and is idempotent; a Stop after the callback fired,
// or a duplicate satisfaction observation, is a no-op.
type Watcher struct {
	once    sync.Once
	release func()
}

// Stop tears the watcher down without firing.
func (w *Watcher) Stop() {
	if w == nil {
		return
	}
	w.release()
}

// WatchApproval observes the profile document live and fires onApproved on
// the first update carrying approved=true. Preferred over polling: it has no
// latency floor and costs one notification per actual change.
//
// A notification may land before Observe returns the unsubscribe, so the
// subscription handle is guarded by its own lock: whichever of registration
// and teardown loses the race releases the subscription.
func WatchApproval(store docstore.Store, uid string, onApproved func()) *Watcher {
	w := &Watcher{}

	var mu sync.Mutex
	var unsubscribe func()
	var released bool

	releaseSub := func() {
		mu.Lock()
		released = true
		u := unsubscribe
		unsubscribe = nil
		mu.Unlock()
		if u != nil {
			u()
		}
	}

	w.release = func() {
		w.once.Do(func() {})
		releaseSub()
	}

	u := store.Observe(CollectionUsers, uid, func(doc docstore.Document) {
		if !doc.Bool(approvedField) {
			return
		}
		fired := false
		w.once.Do(func() { fired = true })
		if !fired {
			return
		}
		releaseSub()
		onApproved()
	})

	mu.Lock()
	if released {
		mu.Unlock()
		u()
		return w
	}
	unsubscribe = u
	mu.Unlock()
	return w
}

// WatchFunc is the approval-detection strategy a Machine uses after
// submission. WatchApproval is the right choice for stores whose Observe
// sees every writer; PollWatch covers stores whose notifications only
// reach in-process writers, where an external reviewer's flip would
// otherwise go unseen.
type WatchFunc func(store docstore.Store, uid string, onApproved func()) *Watcher

// PollWatch returns a WatchFunc that polls the profile document at the
// given interval. A non-positive interval means DefaultPollInterval.
func PollWatch(interval time.Duration) WatchFunc {
	return func(store docstore.Store, uid string, onApproved func()) *Watcher {
		return PollApproval(store, uid, interval, onApproved)
	}
}

// PollApproval reads the profile document every interval and fires
// onApproved once when approved=true is observed. Detection latency is
// bounded by one interval; the ticker stops the instant the condition is
// observed or the watcher is stopped.
func PollApproval(store docstore.Store, uid string, interval time.Duration, onApproved func()) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	w := &Watcher{}
	done := make(chan struct{})
	w.release = func() {
		w.once.Do(func() { close(done) })
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		check := func() bool {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			doc, err := store.Read(ctx, CollectionUsers, uid)
			cancel()
			if err != nil || !doc.Bool(approvedField) {
				return false
			}
			w.once.Do(func() {
				close(done)
				onApproved()
			})
			return true
		}

		if check() {
			return
		}
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if check() {
					return
				}
			}
		}
	}()
	return w
}
