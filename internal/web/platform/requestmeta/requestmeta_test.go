package requestmeta

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"
)

func TestIsHTTPS(t *testing.T) {
	t.Parallel()

	plain := httptest.NewRequest("GET", "http://example.test/", nil)
	if IsHTTPS(plain) {
		t.Fatal("plain request reported as HTTPS")
	}

	secure := httptest.NewRequest("GET", "http://example.test/", nil)
	secure.TLS = &tls.ConnectionState{}
	if !IsHTTPS(secure) {
		t.Fatal("TLS request not reported as HTTPS")
	}
}

func TestForwardedProtoRequiresOptIn(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "http://example.test/", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	if IsHTTPS(r) {
		t.Fatal("forwarded proto honored without opt-in")
	}
	if !IsHTTPSWithPolicy(r, SchemePolicy{TrustForwardedProto: true}) {
		t.Fatal("forwarded proto ignored with opt-in")
	}

	r.Header.Set("X-Forwarded-Proto", "http")
	secure := r.Clone(r.Context())
	secure.TLS = &tls.ConnectionState{}
	if IsHTTPSWithPolicy(secure, SchemePolicy{TrustForwardedProto: true}) {
		t.Fatal("trusted forwarded proto should override TLS state")
	}
}
