package web

import (
	"crypto/ed25519"
	"encoding/base64"
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "localhost:8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "localhost:8080")
	}
	if cfg.StorePath != "vendordesk.db" {
		t.Fatalf("StorePath = %q, want %q", cfg.StorePath, "vendordesk.db")
	}
	if cfg.SessionKey != "" {
		t.Fatalf("SessionKey = %q, want empty", cfg.SessionKey)
	}
}

func TestParseConfigOverrideHTTPAddr(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", "127.0.0.1:9002"}, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9002" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "127.0.0.1:9002")
	}
}

func TestParseConfigEnvFallback(t *testing.T) {
	t.Parallel()

	lookup := func(key string) (string, bool) {
		switch key {
		case "VENDORDESK_WEB_HTTP_ADDR":
			return "0.0.0.0:8088", true
		case "VENDORDESK_WEB_STORE_PATH":
			return "/data/vendordesk.db", true
		}
		return "", false
	}

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, lookup)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "0.0.0.0:8088" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "0.0.0.0:8088")
	}
	if cfg.StorePath != "/data/vendordesk.db" {
		t.Fatalf("StorePath = %q, want %q", cfg.StorePath, "/data/vendordesk.db")
	}
}

func TestParseConfigFlagBeatsEnv(t *testing.T) {
	t.Parallel()

	lookup := func(key string) (string, bool) {
		if key == "VENDORDESK_WEB_HTTP_ADDR" {
			return "0.0.0.0:8088", true
		}
		return "", false
	}

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", "127.0.0.1:9002"}, lookup)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9002" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "127.0.0.1:9002")
	}
}

func TestParseConfigEnvBlankFallsThrough(t *testing.T) {
	t.Parallel()

	lookup := func(key string) (string, bool) {
		return "   ", true
	}

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, lookup)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "localhost:8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "localhost:8080")
	}
}

func TestSessionKeyFromSeed(t *testing.T) {
	t.Parallel()

	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	key, err := sessionKey(base64.StdEncoding.EncodeToString(seed))
	if err != nil {
		t.Fatalf("sessionKey() error = %v", err)
	}
	want := ed25519.NewKeyFromSeed(seed)
	if !key.Equal(want) {
		t.Fatal("expected the key derived from the seed")
	}
}

func TestSessionKeyGeneratesWhenEmpty(t *testing.T) {
	t.Parallel()

	key, err := sessionKey("")
	if err != nil {
		t.Fatalf("sessionKey() error = %v", err)
	}
	if len(key) != ed25519.PrivateKeySize {
		t.Fatalf("key length = %d, want %d", len(key), ed25519.PrivateKeySize)
	}
}

func TestSessionKeyRejectsBadSeed(t *testing.T) {
	t.Parallel()

	if _, err := sessionKey("not base64!!"); err == nil {
		t.Fatal("expected a decode error")
	}
	if _, err := sessionKey(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Fatal("expected a seed length error")
	}
}
