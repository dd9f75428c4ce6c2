package session

import (
	"context"
	"strings"
	"time"
)

// Identity is the authenticated principal owned by the identity provider.
// The application never mutates it directly; display name is set at account
// creation and the verified flag refreshes through Reload.
type Identity struct {
	ID            string
	Email         string
	DisplayName   string
	EmailVerified bool
	CreatedAt     time.Time
}

// FirstName returns the leading token of the display name, used to pre-fill
// onboarding forms.
func (i Identity) FirstName() string {
	name := strings.TrimSpace(i.DisplayName)
	first, _, _ := strings.Cut(name, " ")
	return first
}

// Initials derives the avatar initials shown on the dashboard header: the
// first letter of each display-name token, or the first letter of the email
// when no display name is set. Letters are taken rune-wise, so multibyte
// names keep valid UTF-8.
func (i Identity) Initials() string {
	name := strings.TrimSpace(i.DisplayName)
	if name == "" {
		return strings.ToUpper(firstRune(i.Email))
	}
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(firstRune(part)))
	}
	return b.String()
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// Service exposes the identity-provider verbs consumed by the application.
type Service interface {
	// CreateAccount registers a new email/password account with an optional
	// display name and returns the resulting identity.
	CreateAccount(ctx context.Context, email, password, displayName string) (Identity, error)

	// SignIn authenticates an existing email/password account.
	SignIn(ctx context.Context, email, password string) (Identity, error)

	// SignInWithProvider completes a federated sign-in for the given provider
	// id (for example "google" or "apple").
	SignInWithProvider(ctx context.Context, providerID string) (Identity, error)

	// SignOut revokes the provider session for the identity.
	SignOut(ctx context.Context, identityID string) error

	// SendVerificationEmail dispatches a verification link to the identity's
	// email address.
	SendVerificationEmail(ctx context.Context, identity Identity) error

	// Reload refreshes the identity from the provider's source of truth,
	// picking up an externally flipped verified flag.
	Reload(ctx context.Context, identity Identity) (Identity, error)
}
