// Package config loads service configuration from the environment, with a
// best-effort .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"driftblinks/driftmkt"
)

// Config is every knob the service recognizes. Only ENDPOINT is required;
// everything else has a safe default or disables its feature when absent.
type Config struct {
	Env           driftmkt.Env
	RPCEndpoint   string
	BucketURL     string
	PosthogAPIKey string
	HeliusRPCURL  string
	HostURL       string
	Port          int
	LogLevel      string
}

// Load reads the environment. A missing PostHog key is not an error: it only
// disables analytics capture.
func Load() (*Config, error) {
	_ = godotenv.Load() // best-effort

	cfg := &Config{
		Env:           driftmkt.ParseEnv(os.Getenv("ENV")),
		RPCEndpoint:   os.Getenv("ENDPOINT"),
		BucketURL:     os.Getenv("BUCKET"),
		PosthogAPIKey: os.Getenv("POSTHOG_API_KEY"),
		HeliusRPCURL:  os.Getenv("HELIUS_RPC_URL"),
		HostURL:       os.Getenv("URL"),
		Port:          3000,
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}

	if portEnv := os.Getenv("PORT"); portEnv != "" {
		port, err := strconv.Atoi(portEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT env var: %w", err)
		}
		cfg.Port = port
	}

	if cfg.RPCEndpoint == "" {
		return nil, fmt.Errorf("ENDPOINT env var is required")
	}
	if cfg.HostURL == "" {
		cfg.HostURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	return cfg, nil
}
