package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Bridge.System != "main_system" {
		t.Errorf("expected default system tag, got %q", cfg.Bridge.System)
	}
	if cfg.Bridge.TokenTTL != 60*time.Second {
		t.Errorf("expected 60s token TTL, got %v", cfg.Bridge.TokenTTL)
	}
	if cfg.Board.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h session TTL, got %v", cfg.Board.SessionTTL)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
bridge:
  secret: topsecret
  system: staging_portal
  token_ttl: 30s
  board_url: https://board.example.com
board:
  dev_mode: true
portal:
  users:
    - username: alice
      user_id: EXT00001
      email: alice@example.com
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Bridge.Secret != "topsecret" {
		t.Errorf("expected secret from file, got %q", cfg.Bridge.Secret)
	}
	if cfg.Bridge.System != "staging_portal" {
		t.Errorf("expected system override, got %q", cfg.Bridge.System)
	}
	if cfg.Bridge.TokenTTL != 30*time.Second {
		t.Errorf("expected 30s TTL, got %v", cfg.Bridge.TokenTTL)
	}
	if len(cfg.Portal.Users) != 1 || cfg.Portal.Users[0].UserID != "EXT00001" {
		t.Errorf("unexpected portal users: %+v", cfg.Portal.Users)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_BRIDGE_SECRET", "from-env")
	path := writeConfig(t, `
bridge:
  secret: ${TEST_BRIDGE_SECRET}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bridge.Secret != "from-env" {
		t.Errorf("expected env-expanded secret, got %q", cfg.Bridge.Secret)
	}
}

func TestLoad_SecretFromEnvFallback(t *testing.T) {
	t.Setenv("EXTERNAL_AUTH_SECRET", "env-secret")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bridge.Secret != "env-secret" {
		t.Errorf("expected EXTERNAL_AUTH_SECRET fallback, got %q", cfg.Bridge.Secret)
	}
}

func TestValidateBridge_EmptySecret(t *testing.T) {
	cfg := defaults()
	cfg.Bridge.Secret = ""

	if err := cfg.ValidateBridge(); err == nil {
		t.Fatal("expected error for empty bridge secret")
	}
}

func TestValidateBridge_OK(t *testing.T) {
	cfg := defaults()
	cfg.Bridge.Secret = "shared"

	if err := cfg.ValidateBridge(); err != nil {
		t.Fatalf("ValidateBridge: %v", err)
	}
}

func TestLoad_MissingUserID(t *testing.T) {
	path := writeConfig(t, `
portal:
  users:
    - username: alice
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for user without user_id")
	}
}
