// Package identitykit implements the session boundary against an
// identity-toolkit style REST API keyed by the project API key.
package identitykit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/kwanzahq/vendordesk/internal/errors"
	"github.com/kwanzahq/vendordesk/internal/platform/config"
	"github.com/kwanzahq/vendordesk/internal/session"
)

// defaultBaseURL is the hosted identity endpoint.
const defaultBaseURL = "https://identitytoolkit.googleapis.com"

// defaultRequestTimeout caps a single provider round trip.
const defaultRequestTimeout = 10 * time.Second

// ProviderConfig describes a federated sign-in provider.
type ProviderConfig struct {
	IdpID            string
	Scopes           []string
	CustomParameters map[string]string
}

// CredentialSource supplies the federated credential that completes a
// provider handshake (the popup or redirect result). Injected so tests and
// alternate front-ends can substitute their own handshake.
type CredentialSource func(ctx context.Context, provider ProviderConfig) (string, error)

// Client talks to the identity provider's account endpoints.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	providers  map[string]ProviderConfig
	credential CredentialSource
	tokens     *tokenCache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider endpoint, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithCredentialSource sets the federated credential handshake.
func WithCredentialSource(source CredentialSource) Option {
	return func(c *Client) { c.credential = source }
}

// New builds a client from provider configuration.
func New(cfg config.Provider, opts ...Option) *Client {
	c := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		providers:  defaultProviders(),
		tokens:     newTokenCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// defaultProviders enumerates the supported federated providers. Apple
// requests email and name scopes with an English locale, mirroring the
// product's sign-in screen configuration.
func defaultProviders() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		"google": {
			IdpID:  "google.com",
			Scopes: []string{"email", "profile"},
		},
		"apple": {
			IdpID:            "apple.com",
			Scopes:           []string{"email", "name"},
			CustomParameters: map[string]string{"locale": "en"},
		},
	}
}

var _ session.Service = (*Client)(nil)

// CreateAccount registers an email/password account and applies the display
// name in a follow-up profile update when one is given.
func (c *Client) CreateAccount(ctx context.Context, email, password, displayName string) (session.Identity, error) {
	var resp struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
		IDToken string `json:"idToken"`
	}
	err := c.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return session.Identity{}, err
	}

	displayName = strings.TrimSpace(displayName)
	if displayName != "" {
		err := c.post(ctx, "accounts:update", map[string]any{
			"idToken":           resp.IDToken,
			"displayName":       displayName,
			"returnSecureToken": false,
		}, &struct{}{})
		if err != nil {
			return session.Identity{}, err
		}
	}

	c.tokens.put(resp.LocalID, resp.IDToken)
	return session.Identity{
		ID:          resp.LocalID,
		Email:       resp.Email,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// SignIn authenticates an existing email/password account.
func (c *Client) SignIn(ctx context.Context, email, password string) (session.Identity, error) {
	var resp struct {
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		IDToken     string `json:"idToken"`
	}
	err := c.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return session.Identity{}, err
	}

	c.tokens.put(resp.LocalID, resp.IDToken)
	identity := session.Identity{
		ID:          resp.LocalID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
	}
	return c.Reload(ctx, identity)
}

// SignInWithProvider completes a federated sign-in. The credential source
// supplies the provider handshake result; the toolkit exchanges it for an
// account.
func (c *Client) SignInWithProvider(ctx context.Context, providerID string) (session.Identity, error) {
	provider, ok := c.providers[providerID]
	if !ok {
		return session.Identity{}, apperrors.New(apperrors.CodeAuthUnknownProvider, fmt.Sprintf("unknown provider %q", providerID))
	}
	if c.credential == nil {
		return session.Identity{}, apperrors.New(apperrors.CodeAuthProviderUnavailable, "no federated credential source configured")
	}

	credential, err := c.credential(ctx, provider)
	if err != nil {
		return session.Identity{}, err
	}

	var resp struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		DisplayName   string `json:"displayName"`
		EmailVerified bool   `json:"emailVerified"`
		IsNewUser     bool   `json:"isNewUser"`
		IDToken       string `json:"idToken"`
	}
	err = c.post(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":          credential + "&providerId=" + provider.IdpID,
		"requestUri":        "http://localhost",
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return session.Identity{}, err
	}

	c.tokens.put(resp.LocalID, resp.IDToken)
	return session.Identity{
		ID:            resp.LocalID,
		Email:         resp.Email,
		DisplayName:   resp.DisplayName,
		EmailVerified: resp.EmailVerified,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// SignOut drops the cached provider token for the identity.
func (c *Client) SignOut(ctx context.Context, identityID string) error {
	c.tokens.drop(identityID)
	return nil
}

// SendVerificationEmail dispatches a VERIFY_EMAIL oob code to the identity.
func (c *Client) SendVerificationEmail(ctx context.Context, identity session.Identity) error {
	token, ok := c.tokens.get(identity.ID)
	if !ok {
		return apperrors.New(apperrors.CodeAuthNotAuthenticated, "no provider token for identity")
	}
	return c.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "VERIFY_EMAIL",
		"idToken":     token,
	}, &struct{}{})
}

// Reload refreshes the identity from the provider's source of truth.
func (c *Client) Reload(ctx context.Context, identity session.Identity) (session.Identity, error) {
	token, ok := c.tokens.get(identity.ID)
	if !ok {
		return session.Identity{}, apperrors.New(apperrors.CodeAuthNotAuthenticated, "no provider token for identity")
	}

	var resp struct {
		Users []struct {
			LocalID       string `json:"localId"`
			Email         string `json:"email"`
			DisplayName   string `json:"displayName"`
			EmailVerified bool   `json:"emailVerified"`
			CreatedAt     string `json:"createdAt"`
		} `json:"users"`
	}
	err := c.post(ctx, "accounts:lookup", map[string]any{"idToken": token}, &resp)
	if err != nil {
		return session.Identity{}, err
	}
	if len(resp.Users) == 0 {
		return session.Identity{}, apperrors.New(apperrors.CodeNotFound, "account not found")
	}

	account := resp.Users[0]
	createdAt := identity.CreatedAt
	if millis, err := strconv.ParseInt(account.CreatedAt, 10, 64); err == nil {
		createdAt = time.UnixMilli(millis).UTC()
	}
	return session.Identity{
		ID:            account.LocalID,
		Email:         account.Email,
		DisplayName:   account.DisplayName,
		EmailVerified: account.EmailVerified,
		CreatedAt:     createdAt,
	}, nil
}

// post issues one keyed toolkit request and decodes the response into out.
func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", endpoint, err)
	}

	requestURL := fmt.Sprintf("%s/v1/%s?key=%s", c.baseURL, endpoint, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeAuthProviderUnavailable, "identity provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeProviderError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// decodeProviderError maps toolkit error messages onto domain codes.
func decodeProviderError(resp *http.Response) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return apperrors.New(apperrors.CodeAuthProviderUnavailable, fmt.Sprintf("identity provider returned status %d", resp.StatusCode))
	}

	message := payload.Error.Message
	switch {
	case message == "EMAIL_EXISTS":
		return apperrors.New(apperrors.CodeAuthEmailExists, "an account with this email already exists")
	case message == "EMAIL_NOT_FOUND", message == "INVALID_PASSWORD", strings.HasPrefix(message, "INVALID_LOGIN_CREDENTIALS"):
		return apperrors.New(apperrors.CodeAuthInvalidCredentials, "invalid email or password")
	case strings.HasPrefix(message, "TOO_MANY_ATTEMPTS"):
		return apperrors.New(apperrors.CodeAuthProviderUnavailable, "too many attempts, try again later")
	default:
		return apperrors.New(apperrors.CodeAuthProviderUnavailable, fmt.Sprintf("identity provider error: %s", message))
	}
}
