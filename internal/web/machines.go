package web

import (
	"context"
	"sync"

	"github.com/kwanzahq/vendordesk/internal/docstore"
	"github.com/kwanzahq/vendordesk/internal/onboarding"
	"github.com/kwanzahq/vendordesk/internal/session"
)

// noticeBuffer collects stepper notices fired during a handler action so the
// handler can drain them into a flash cookie afterwards.
type noticeBuffer struct {
	mu      sync.Mutex
	pending []string
}

func (b *noticeBuffer) add(text string) {
	b.mu.Lock()
	b.pending = append(b.pending, text)
	b.mu.Unlock()
}

// drain returns and clears the pending notices.
func (b *noticeBuffer) drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	pending := b.pending
	b.pending = nil
	return pending
}

// machineHub keeps one onboarding machine per signed-in identity for the
// lifetime of the process. A machine mounts on first dashboard visit and
// resumes any submission state already in the store.
type machineHub struct {
	mu       sync.Mutex
	store    docstore.Store
	watch    onboarding.WatchFunc
	machines map[string]*onboarding.Machine
	notices  map[string]*noticeBuffer
}

func newMachineHub(store docstore.Store, watch onboarding.WatchFunc) *machineHub {
	return &machineHub{
		store:    store,
		watch:    watch,
		machines: make(map[string]*onboarding.Machine),
		notices:  make(map[string]*noticeBuffer),
	}
}

// acquire returns the machine for identity, creating and resuming it on
// first use.
func (h *machineHub) acquire(ctx context.Context, identity session.Identity) (*onboarding.Machine, *noticeBuffer) {
	h.mu.Lock()
	if m, ok := h.machines[identity.ID]; ok {
		buffer := h.notices[identity.ID]
		h.mu.Unlock()
		return m, buffer
	}

	buffer := &noticeBuffer{}
	m := onboarding.NewMachine(onboarding.MachineConfig{
		Identity: &identity,
		Store:    h.store,
		Notify:   buffer.add,
		Watch:    h.watch,
	})
	h.machines[identity.ID] = m
	h.notices[identity.ID] = buffer
	h.mu.Unlock()

	m.Resume(ctx)
	return m, buffer
}

// release closes and forgets the machine for identity, used at sign-out.
func (h *machineHub) release(identityID string) {
	h.mu.Lock()
	m := h.machines[identityID]
	delete(h.machines, identityID)
	delete(h.notices, identityID)
	h.mu.Unlock()
	if m != nil {
		m.Close()
	}
}

// closeAll stops every approval watcher, used at shutdown.
func (h *machineHub) closeAll() {
	h.mu.Lock()
	machines := make([]*onboarding.Machine, 0, len(h.machines))
	for _, m := range h.machines {
		machines = append(machines, m)
	}
	h.machines = make(map[string]*onboarding.Machine)
	h.notices = make(map[string]*noticeBuffer)
	h.mu.Unlock()

	for _, m := range machines {
		m.Close()
	}
}
