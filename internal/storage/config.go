// Manages server configuration stored in server_config.json.

package storage

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ServerConfig stores all server-wide configuration.
// Loaded from server_config.json, created with defaults if missing.
type ServerConfig struct {
	// JWTSecret is the secret used to sign JWT tokens.
	// Auto-generated if empty on first load.
	JWTSecret []byte `json:"jwt_secret"`

	// RateLimits defines rate limiting configuration.
	RateLimits RateLimits `json:"rate_limits"`
}

// RateLimits defines rate limiting configuration (requests per minute).
type RateLimits struct {
	// AuthRatePerMin limits authentication attempts (login, register).
	// 0 means unlimited.
	AuthRatePerMin int `json:"auth_rate_per_min"`
}

// Validate checks that rate limit values are non-negative.
func (r *RateLimits) Validate() error {
	if r.AuthRatePerMin < 0 {
		return errors.New("auth_rate_per_min must be non-negative")
	}
	return nil
}

// DefaultRateLimits returns the default rate limits.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		AuthRatePerMin: 10,
	}
}

// LoadServerConfig loads server_config.json from dataDir, creating it with
// defaults (including a fresh random JWT secret) if it does not exist. A
// config with an empty secret gets one generated and written back.
func LoadServerConfig(dataDir string) (*ServerConfig, error) {
	path := filepath.Join(dataDir, "server_config.json")
	cfg := &ServerConfig{RateLimits: DefaultRateLimits()}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run, fall through to secret generation and save.
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.RateLimits.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate limits in %s: %w", path, err)
	}

	if len(cfg.JWTSecret) == 0 {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		cfg.JWTSecret = secret
		if err := saveServerConfig(path, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func saveServerConfig(path string, cfg *ServerConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal server config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
