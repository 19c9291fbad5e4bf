package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Secrets are connection settings read from the environment rather than the config file
type Secrets struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	NATSURL     string `envconfig:"NATS_URL" default:"nats://127.0.0.1:4222"`
}

// LoadSecrets reads Secrets from the environment after loading .env.<env> and .env
// when present. godotenv never overrides variables that are already set, so the
// env-specific file wins over .env and the real environment wins over both.
func LoadSecrets(env string) (*Secrets, error) {
	files := []string{".env"}
	if env != "" {
		files = append([]string{".env." + env}, files...)
	}
	for _, f := range files {
		// A missing file is not an error
		_ = godotenv.Load(f)
	}

	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &s, nil
}
