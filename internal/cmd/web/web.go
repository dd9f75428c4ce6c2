// Package web wires configuration for the onboarding portal web server.
package web

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/kwanzahq/vendordesk/internal/docstore/sqlite"
	"github.com/kwanzahq/vendordesk/internal/onboarding"
	"github.com/kwanzahq/vendordesk/internal/platform/config"
	"github.com/kwanzahq/vendordesk/internal/platform/otel"
	"github.com/kwanzahq/vendordesk/internal/session/identitykit"
	"github.com/kwanzahq/vendordesk/internal/web"
	"github.com/kwanzahq/vendordesk/internal/web/platform/sessioncookie"
)

const (
	defaultHTTPAddr  = "localhost:8080"
	defaultStorePath = "vendordesk.db"
)

// Config holds the web command configuration.
type Config struct {
	HTTPAddr   string
	StorePath  string
	SessionKey string
}

// EnvLookup returns the value for a key when present.
type EnvLookup func(string) (string, bool)

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string, lookup EnvLookup) (Config, error) {
	cfg := Config{
		HTTPAddr:   envOrDefault(lookup, []string{"VENDORDESK_WEB_HTTP_ADDR"}, defaultHTTPAddr),
		StorePath:  envOrDefault(lookup, []string{"VENDORDESK_WEB_STORE_PATH"}, defaultStorePath),
		SessionKey: envOrDefault(lookup, []string{"VENDORDESK_WEB_SESSION_KEY"}, ""),
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "document store file path")
	fs.StringVar(&cfg.SessionKey, "session-key", cfg.SessionKey, "base64 ed25519 seed for session cookies")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Run starts the onboarding portal server.
func Run(ctx context.Context, cfg Config) error {
	otelShutdown, err := otel.Setup(ctx, "web")
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	provider, err := config.LoadProvider()
	if err != nil {
		return fmt.Errorf("load provider config: %w", err)
	}

	store, err := sqlite.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	defer store.Close()

	key, err := sessionKey(cfg.SessionKey)
	if err != nil {
		return fmt.Errorf("session key: %w", err)
	}

	handler := web.NewHandler(web.HandlerConfig{
		Service: identitykit.New(provider),
		Codec:   sessioncookie.NewCodec(key),
		Store:   store,
		// The sqlite store only notifies in-process writers, and approval
		// comes from an external reviewer, so detection must poll.
		Watch: onboarding.PollWatch(onboarding.DefaultPollInterval),
	})

	server, err := web.NewServer(web.Config{
		HTTPAddr: cfg.HTTPAddr,
		Handler:  handler,
	})
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve web: %w", err)
	}
	return nil
}

// sessionKey derives the cookie signing key from a base64 ed25519 seed. With
// no seed configured a fresh key is generated, which invalidates existing
// sessions on restart.
func sessionKey(seed string) (ed25519.PrivateKey, error) {
	trimmed := strings.TrimSpace(seed)
	if trimmed == "" {
		log.Print("no session key configured; sessions will not survive a restart")
		_, key, err := ed25519.GenerateKey(rand.Reader)
		return key, err
	}
	raw, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(raw))
	}
	return ed25519.NewKeyFromSeed(raw), nil
}

func envOrDefault(lookup EnvLookup, keys []string, fallback string) string {
	for _, key := range keys {
		if lookup == nil {
			break
		}
		value, ok := lookup(key)
		if ok {
			trimmed := strings.TrimSpace(value)
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return fallback
}
