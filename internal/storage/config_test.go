package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadServerConfigGeneratesSecret(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadServerConfig(dir)
	if err != nil {
		t.Fatalf("LoadServerConfig failed: %v", err)
	}
	if len(cfg.JWTSecret) != 32 {
		t.Errorf("Expected a 32-byte generated secret, got %d bytes", len(cfg.JWTSecret))
	}
	if cfg.RateLimits.AuthRatePerMin != DefaultRateLimits().AuthRatePerMin {
		t.Errorf("Expected default rate limits, got %+v", cfg.RateLimits)
	}

	// The generated secret is persisted: a second load returns the same one.
	again, err := LoadServerConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if string(again.JWTSecret) != string(cfg.JWTSecret) {
		t.Error("Secret must be stable across loads")
	}
}

func TestLoadServerConfigRejectsNegativeRateLimit(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal(map[string]any{
		"rate_limits": map[string]int{"auth_rate_per_min": -1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "server_config.json"), data, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadServerConfig(dir); err == nil {
		t.Error("Expected negative rate limit to be rejected")
	}
}
