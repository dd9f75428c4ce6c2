package onboarding

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/kwanzahq/vendordesk/internal/docstore"
	"github.com/kwanzahq/vendordesk/internal/session"
)

// Step is the stepper position: editing one of the sections, or holding on
// the approval overlay. A tagged type rather than an index with a sentinel
// value, so the two cases can never be confused in comparisons.
type Step struct {
	awaiting bool
	index    int
}

// EditingStep returns the step for section index.
func EditingStep(index int) Step {
	return Step{index: index}
}

// AwaitingApprovalStep is the post-submission blocking state.
func AwaitingApprovalStep() Step {
	return Step{awaiting: true}
}

// Editing returns the section index when the step is an editing step.
func (s Step) Editing() (int, bool) {
	if s.awaiting {
		return 0, false
	}
	return s.index, true
}

// AwaitingApproval reports whether the step is the approval overlay.
func (s Step) AwaitingApproval() bool {
	return s.awaiting
}

// NoticeFunc surfaces a transient, non-blocking message to the user.
type NoticeFunc func(text string)

// Machine drives the onboarding stepper for one signed-in user.
//
// All methods are safe for the single UI-driven caller plus the watcher
// callback; a mutex guards state because approval can fire from a store
// notification.
type Machine struct {
	mu         sync.Mutex
	step       Step
	form       FormState
	identity   *session.Identity
	store      docstore.Store
	notify     NoticeFunc
	submitting bool
	watch      WatchFunc
	watcher    *Watcher
	onApproved func()
	approved   bool
}

// MachineConfig wires a Machine's collaborators.
type MachineConfig struct {
	// Identity is the signed-in principal, or nil when unauthenticated.
	Identity *session.Identity
	// Store receives the submission writes and serves the approval watch.
	Store docstore.Store
	// Notify surfaces validation and failure notices. Optional.
	Notify NoticeFunc
	// OnApproved runs exactly once when the external reviewer approves the
	// submitted profile. Optional.
	OnApproved func()
	// Watch selects the approval-detection strategy. Defaults to
	// WatchApproval; use PollWatch for stores whose notifications do not
	// cover out-of-process writes.
	Watch WatchFunc
}

// NewMachine mounts a stepper at the first section with a form pre-filled
// from the identity.
func NewMachine(cfg MachineConfig) *Machine {
	m := &Machine{
		step:       EditingStep(0),
		store:      cfg.Store,
		notify:     cfg.Notify,
		identity:   cfg.Identity,
		onApproved: cfg.OnApproved,
		watch:      cfg.Watch,
	}
	if m.notify == nil {
		m.notify = func(string) {}
	}
	if m.watch == nil {
		m.watch = WatchApproval
	}
	if cfg.Identity != nil {
		m.form = NewFormState(*cfg.Identity)
	} else {
		m.form = FormState{PaymentMethod: PaymentCard}
	}
	return m
}

// Step returns the current position.
func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// Form returns a copy of the current form record.
func (m *Machine) Form() FormState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

// UpdateForm applies fn to the form record. Ignored while awaiting approval.
func (m *Machine) UpdateForm(fn func(*FormState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step.AwaitingApproval() {
		return
	}
	fn(&m.form)
}

// Next validates the current section and advances to the following one.
// On validation failure the position is unchanged and a notice names the
// missing fields.
func (m *Machine) Next() {
	m.mu.Lock()
	index, editing := m.step.Editing()
	if !editing || index >= StepCount()-1 {
		m.mu.Unlock()
		return
	}
	missing := MissingFields(index, m.form)
	if len(missing) > 0 {
		m.mu.Unlock()
		m.notify(missingFieldsNotice(missing))
		return
	}
	m.step = EditingStep(index + 1)
	m.mu.Unlock()
}

// Previous moves back one section unconditionally. The form is shared across
// sections, so nothing is re-validated and nothing is lost.
func (m *Machine) Previous() {
	m.mu.Lock()
	defer m.mu.Unlock()
	index, editing := m.step.Editing()
	if !editing || index <= 0 {
		return
	}
	m.step = EditingStep(index - 1)
}

// Jump moves directly to section index. The step indicator is a navigation
// shortcut, not a validation checkpoint, so intervening sections are not
// validated. Out-of-range jumps and jumps while awaiting approval are
// ignored.
func (m *Machine) Jump(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step.AwaitingApproval() {
		return
	}
	if index < 0 || index >= StepCount() {
		return
	}
	m.step = EditingStep(index)
}

// Submit validates the final section and writes the denormalized record set.
// On success the machine holds on the approval overlay and begins watching
// the profile document. On failure the position is unchanged and the user
// may retry; every write is an idempotent overwrite, so a retry can never
// create duplicate records.
func (m *Machine) Submit(ctx context.Context) {
	m.mu.Lock()
	index, editing := m.step.Editing()
	if !editing || index != StepCount()-1 {
		m.mu.Unlock()
		return
	}
	if m.submitting {
		m.mu.Unlock()
		return
	}
	if m.identity == nil {
		m.mu.Unlock()
		m.notify("Not authenticated")
		return
	}
	missing := MissingFields(index, m.form)
	if len(missing) > 0 {
		m.mu.Unlock()
		m.notify(missingFieldsNotice(missing))
		return
	}
	m.submitting = true
	identity := *m.identity
	form := m.form
	m.mu.Unlock()

	err := submitAll(ctx, m.store, identity.ID, form)

	m.mu.Lock()
	m.submitting = false
	if err != nil {
		m.mu.Unlock()
		log.Printf("onboarding submission for %s: %v", identity.ID, err)
		m.notify("Submission failed")
		return
	}
	m.step = AwaitingApprovalStep()
	m.watcher = m.watch(m.store, identity.ID, m.fireApproved)
	m.mu.Unlock()

	m.notify("Registration submitted, awaiting approval")
}

// Approved reports whether the external reviewer approved the submission.
func (m *Machine) Approved() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.approved
}

// Resume restores post-submission state from the store, so a machine mounted
// after a restart does not re-run the stepper for a profile that is already
// submitted. A missing profile document leaves the machine at the first
// section.
func (m *Machine) Resume(ctx context.Context) {
	m.mu.Lock()
	if m.identity == nil {
		m.mu.Unlock()
		return
	}
	identity := *m.identity
	m.mu.Unlock()

	doc, err := m.store.Read(ctx, CollectionUsers, identity.ID)
	if err != nil {
		return
	}

	m.mu.Lock()
	m.step = AwaitingApprovalStep()
	if doc.Bool(approvedField) {
		m.approved = true
		m.mu.Unlock()
		return
	}
	m.watcher = m.watch(m.store, identity.ID, m.fireApproved)
	m.mu.Unlock()
}

// Close releases the approval watcher. Safe to call on every exit path.
func (m *Machine) Close() {
	m.mu.Lock()
	watcher := m.watcher
	m.watcher = nil
	m.mu.Unlock()
	if watcher != nil {
		watcher.Stop()
	}
}

// fireApproved leaves the approval overlay exactly once.
func (m *Machine) fireApproved() {
	m.mu.Lock()
	if m.approved {
		m.mu.Unlock()
		return
	}
	m.approved = true
	onApproved := m.onApproved
	m.mu.Unlock()

	if onApproved != nil {
		onApproved()
	}
}

func missingFieldsNotice(missing []string) string {
	return fmt.Sprintf("Required: %s", strings.Join(missing, ", "))
}
