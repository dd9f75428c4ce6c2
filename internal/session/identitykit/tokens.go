package identitykit

import "sync"

// tokenCache holds provider id tokens per identity so verification email and
// reload calls can authenticate without re-prompting the user.
type tokenCache struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newTokenCache() *tokenCache {
	return &tokenCache{tokens: make(map[string]string)}
}

func (c *tokenCache) put(identityID, token string) {
	if identityID == "" || token == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[identityID] = token
}

func (c *tokenCache) get(identityID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	token, ok := c.tokens[identityID]
	return token, ok
}

func (c *tokenCache) drop(identityID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, identityID)
}
