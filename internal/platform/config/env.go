package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Provider holds the identity and document-store connection parameters.
// Values are loaded once at process start and never mutated afterwards.
type Provider struct {
	APIKey            string `env:"VENDORDESK_API_KEY"`
	AuthDomain        string `env:"VENDORDESK_AUTH_DOMAIN"`
	ProjectID         string `env:"VENDORDESK_PROJECT_ID"`
	StorageBucket     string `env:"VENDORDESK_STORAGE_BUCKET"`
	MessagingSenderID string `env:"VENDORDESK_MESSAGING_SENDER_ID"`
	AppID             string `env:"VENDORDESK_APP_ID"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadProvider parses and validates provider configuration from the environment.
func LoadProvider() (Provider, error) {
	var cfg Provider
	if err := ParseEnv(&cfg); err != nil {
		return Provider{}, err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Provider{}, fmt.Errorf("VENDORDESK_API_KEY is required")
	}
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return Provider{}, fmt.Errorf("VENDORDESK_PROJECT_ID is required")
	}
	return cfg, nil
}
