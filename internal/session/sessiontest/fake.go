// Package sessiontest provides a scriptable session.Service fake.
package sessiontest

import (
	"context"
	"sync"

	"github.com/kwanzahq/vendordesk/internal/session"
)

// Service is an in-memory session.Service for tests. Each verb delegates to
// the corresponding func field when set and falls back to a benign default
// otherwise. Calls are recorded for assertions.
type Service struct {
	mu sync.Mutex

	CreateAccountFn      func(ctx context.Context, email, password, displayName string) (session.Identity, error)
	SignInFn             func(ctx context.Context, email, password string) (session.Identity, error)
	SignInWithProviderFn func(ctx context.Context, providerID string) (session.Identity, error)
	SignOutFn            func(ctx context.Context, identityID string) error
	SendVerificationFn   func(ctx context.Context, identity session.Identity) error
	ReloadFn             func(ctx context.Context, identity session.Identity) (session.Identity, error)

	CreateAccountCalls int
	SignInCalls        int
	ProviderCalls      []string
	SignOutCalls       []string
	VerificationEmails []session.Identity
	ReloadCalls        int
}

var _ session.Service = (*Service)(nil)

// CreateAccount implements session.Service.
func (s *Service) CreateAccount(ctx context.Context, email, password, displayName string) (session.Identity, error) {
	s.mu.Lock()
	s.CreateAccountCalls++
	fn := s.CreateAccountFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, email, password, displayName)
	}
	return session.Identity{ID: "fake-id", Email: email, DisplayName: displayName}, nil
}

// SignIn implements session.Service.
func (s *Service) SignIn(ctx context.Context, email, password string) (session.Identity, error) {
	s.mu.Lock()
	s.SignInCalls++
	fn := s.SignInFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, email, password)
	}
	return session.Identity{ID: "fake-id", Email: email, EmailVerified: true}, nil
}

// SignInWithProvider implements session.Service.
func (s *Service) SignInWithProvider(ctx context.Context, providerID string) (session.Identity, error) {
	s.mu.Lock()
	s.ProviderCalls = append(s.ProviderCalls, providerID)
	fn := s.SignInWithProviderFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, providerID)
	}
	return session.Identity{ID: "fake-id", EmailVerified: true}, nil
}

// SignOut implements session.Service.
func (s *Service) SignOut(ctx context.Context, identityID string) error {
	s.mu.Lock()
	s.SignOutCalls = append(s.SignOutCalls, identityID)
	fn := s.SignOutFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, identityID)
	}
	return nil
}

// SendVerificationEmail implements session.Service.
func (s *Service) SendVerificationEmail(ctx context.Context, identity session.Identity) error {
	s.mu.Lock()
	s.VerificationEmails = append(s.VerificationEmails, identity)
	fn := s.SendVerificationFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, identity)
	}
	return nil
}

// Reload implements session.Service.
func (s *Service) Reload(ctx context.Context, identity session.Identity) (session.Identity, error) {
	s.mu.Lock()
	s.ReloadCalls++
	fn := s.ReloadFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, identity)
	}
	return identity, nil
}
