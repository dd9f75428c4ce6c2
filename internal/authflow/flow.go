// Package authflow orchestrates the sign-up and sign-in forms over the
// session boundary: input preconditions, the busy latch against double
// submission, verification email dispatch, and the popup-to-redirect
// fallback for federated providers.
package authflow

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/kwanzahq/vendordesk/internal/errors"
	"github.com/kwanzahq/vendordesk/internal/session"
)

// Launcher runs one federated handshake strategy and returns the resulting
// identity. The popup strategy completes in place; the redirect strategy
// leaves and re-enters the application.
type Launcher func(ctx context.Context, providerID string) (session.Identity, error)

// NoticeFunc surfaces a transient message to the user.
type NoticeFunc func(text string)

// Flow drives the auth screens. One Flow serves one browser session; its
// busy latch refuses a second submission while the first is in flight
// rather than queueing it.
type Flow struct {
	mu   sync.Mutex
	busy bool

	svc      session.Service
	registry *session.Registry
	notify   NoticeFunc
	popup    Launcher
	redirect Launcher
}

// Config wires a Flow's collaborators.
type Config struct {
	// Service is the identity provider boundary.
	Service session.Service
	// Registry receives the signed-in identity on success. Optional: callers
	// that persist the session elsewhere (a cookie) may leave it nil.
	Registry *session.Registry
	// Notify surfaces notices. Optional.
	Notify NoticeFunc
	// Popup and Redirect are the federated handshake strategies. Both
	// default to Service.SignInWithProvider.
	Popup    Launcher
	Redirect Launcher
}

// New builds a Flow.
func New(cfg Config) *Flow {
	f := &Flow{
		svc:      cfg.Service,
		registry: cfg.Registry,
		notify:   cfg.Notify,
		popup:    cfg.Popup,
		redirect: cfg.Redirect,
	}
	if f.notify == nil {
		f.notify = func(string) {}
	}
	if f.popup == nil {
		f.popup = cfg.Service.SignInWithProvider
	}
	if f.redirect == nil {
		f.redirect = cfg.Service.SignInWithProvider
	}
	return f
}

// SignUp creates an email/password account, sends the verification email for
// the new unverified identity, and records the identity as signed in. On
// success the caller continues to the dashboard, where the verification gate
// takes over.
func (f *Flow) SignUp(ctx context.Context, name, email, password string) (session.Identity, error) {
	if err := f.begin(); err != nil {
		return session.Identity{}, err
	}
	defer f.end()

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return session.Identity{}, errors.New(errors.CodeAuthNameRequired, "name is required")
	}
	if email == "" {
		return session.Identity{}, errors.New(errors.CodeAuthEmailRequired, "email is required")
	}
	if password == "" {
		return session.Identity{}, errors.New(errors.CodeAuthPasswordRequired, "password is required")
	}

	identity, err := f.svc.CreateAccount(ctx, email, password, name)
	if err != nil {
		return session.Identity{}, err
	}

	f.sendVerification(ctx, identity)
	f.setSignedIn(identity)
	return identity, nil
}

// SignIn authenticates an existing email/password account and records the
// identity as signed in.
func (f *Flow) SignIn(ctx context.Context, email, password string) (session.Identity, error) {
	if err := f.begin(); err != nil {
		return session.Identity{}, err
	}
	defer f.end()

	email = strings.TrimSpace(email)
	if email == "" {
		return session.Identity{}, errors.New(errors.CodeAuthEmailRequired, "email is required")
	}
	if password == "" {
		return session.Identity{}, errors.New(errors.CodeAuthPasswordRequired, "password is required")
	}

	identity, err := f.svc.SignIn(ctx, email, password)
	if err != nil {
		return session.Identity{}, err
	}

	f.setSignedIn(identity)
	return identity, nil
}

// SignInWithProvider runs a federated sign-in. The popup strategy is tried
// first; when the environment cannot host a popup the redirect strategy
// takes over. A popup closed by the user is not an error: signedIn is false
// and err is nil, and the caller re-renders the form without a message.
func (f *Flow) SignInWithProvider(ctx context.Context, providerID string) (identity session.Identity, signedIn bool, err error) {
	if err := f.begin(); err != nil {
		return session.Identity{}, false, err
	}
	defer f.end()

	identity, err = f.popup(ctx, providerID)
	if err != nil && popupUnavailable(err) {
		identity, err = f.redirect(ctx, providerID)
	}
	if err != nil {
		if errors.IsCode(err, errors.CodeAuthPopupClosedByUser) {
			return session.Identity{}, false, nil
		}
		return session.Identity{}, false, err
	}

	f.sendVerification(ctx, identity)
	f.setSignedIn(identity)
	return identity, true, nil
}

// SignOut revokes the provider session for identityID and clears the
// registry. The registry is cleared even when revocation fails, so the local
// session never outlives the user's intent.
func (f *Flow) SignOut(ctx context.Context, identityID string) error {
	if f.registry != nil {
		f.registry.Clear()
	}
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return nil
	}
	return f.svc.SignOut(ctx, identityID)
}

func (f *Flow) setSignedIn(identity session.Identity) {
	if f.registry != nil {
		f.registry.Set(identity)
	}
}

// begin takes the busy latch.
func (f *Flow) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return errors.New(errors.CodeAuthRequestInFlight, "a request is already in flight")
	}
	f.busy = true
	return nil
}

func (f *Flow) end() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// sendVerification dispatches the verification email for an unverified
// identity. A dispatch failure does not fail the sign-in: the account exists
// and the dashboard gate offers a resend.
func (f *Flow) sendVerification(ctx context.Context, identity session.Identity) {
	if identity.EmailVerified {
		return
	}
	if err := f.svc.SendVerificationEmail(ctx, identity); err != nil {
		log.Printf("verification email for %s: %v", identity.ID, err)
		return
	}
	f.notify("Verification email sent")
}

// popupUnavailable reports whether the popup strategy failed for a reason
// the redirect strategy can recover from. Any other failure, including the
// user closing the popup, must not trigger a second handshake.
func popupUnavailable(err error) bool {
	switch errors.GetCode(err) {
	case errors.CodeAuthPopupBlocked,
		errors.CodeAuthPopupUnsupported,
		errors.CodeAuthPopupCancelled:
		return true
	}
	return false
}
