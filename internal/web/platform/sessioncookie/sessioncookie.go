// Package sessioncookie centralizes web session cookie behavior. The cookie
// value is a signed token carrying the identity snapshot, so a request can be
// attributed without a server-side session table.
package sessioncookie

import (
	"crypto/ed25519"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kwanzahq/vendordesk/internal/session"
	"github.com/kwanzahq/vendordesk/internal/web/platform/requestmeta"
)

// Name is the canonical web session cookie name.
const Name = "vd_session"

// defaultTTL bounds how long a session token stays valid without a refresh.
const defaultTTL = 7 * 24 * time.Hour

// Codec signs and verifies session tokens.
type Codec struct {
	key ed25519.PrivateKey
	ttl time.Duration
	now func() time.Time
}

// claims is the token payload. The verified flag is a snapshot from sign-in
// time; the dashboard gate re-checks against the provider before trusting it.
type claims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	DisplayName   string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

// NewCodec builds a Codec signing with key.
func NewCodec(key ed25519.PrivateKey) *Codec {
	return &Codec{key: key, ttl: defaultTTL, now: time.Now}
}

// WithTTL overrides the token lifetime.
func (c *Codec) WithTTL(ttl time.Duration) *Codec {
	if ttl > 0 {
		c.ttl = ttl
	}
	return c
}

// WithClock overrides the clock, used by tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	if now != nil {
		c.now = now
	}
	return c
}

// Issue returns a signed session token for the identity.
func (c *Codec) Issue(identity session.Identity) (string, error) {
	issued := c.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(c.ttl)),
		},
		Email:         identity.Email,
		DisplayName:   identity.DisplayName,
		EmailVerified: identity.EmailVerified,
	})
	return token.SignedString(c.key)
}

// Verify parses a session token and returns the identity snapshot it carries.
func (c *Codec) Verify(raw string) (session.Identity, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return session.Identity{}, false
	}
	var parsed claims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(token *jwt.Token) (any, error) {
		return c.key.Public(), nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }),
	)
	if err != nil || strings.TrimSpace(parsed.Subject) == "" {
		return session.Identity{}, false
	}
	return session.Identity{
		ID:            parsed.Subject,
		Email:         parsed.Email,
		DisplayName:   parsed.DisplayName,
		EmailVerified: parsed.EmailVerified,
	}, true
}

// Read returns the trimmed session cookie value when present.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(Name)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

// Write sets the session cookie for the current request context.
func Write(w http.ResponseWriter, r *http.Request, token string) {
	WriteWithPolicy(w, r, token, requestmeta.SchemePolicy{})
}

// WriteWithPolicy sets the session cookie for the current request context.
func WriteWithPolicy(w http.ResponseWriter, r *http.Request, token string, policy requestmeta.SchemePolicy) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    strings.TrimSpace(token),
		Path:     "/",
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPSWithPolicy(r, policy),
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie for the current request context.
func Clear(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
