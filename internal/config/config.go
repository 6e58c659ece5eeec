package config

import (
	"fmt"
	"time"
)

// Config represents the application configuration shared by the portal,
// the board, and the CLI
type Config struct {
	Bridge  BridgeConfig  `yaml:"bridge"`
	Portal  PortalConfig  `yaml:"portal"`
	Board   BoardConfig   `yaml:"board"`
	Logging LoggingConfig `yaml:"logging"`
}

// BridgeConfig holds the cross-system handoff settings. Secret and
// BoardURL must be provisioned identically on both sides, out-of-band;
// the secret is never transmitted.
type BridgeConfig struct {
	Secret   string        `yaml:"secret"`                      // shared HMAC secret (use ${EXTERNAL_AUTH_SECRET})
	System   string        `yaml:"system" default:"main_system"` // issuing system tag stamped into claims
	TokenTTL time.Duration `yaml:"token_ttl" default:"60s"`
	BoardURL string        `yaml:"board_url" default:"http://localhost:3000"`
}

// PortalConfig holds the issuing-side service configuration
type PortalConfig struct {
	Listen        string       `yaml:"listen" default:":8080"`
	SessionSecret string       `yaml:"session_secret"` // cookie store key, base64 (32 bytes for AES-256)
	Users         []PortalUser `yaml:"users"`
}

// PortalUser is a local user of the issuing system. Password hashes are
// bcrypt; plaintext passwords never appear in config.
type PortalUser struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	UserID       string `yaml:"user_id"` // stable external identifier carried into claims
	Email        string `yaml:"email"`
	FullName     string `yaml:"full_name"`
}

// BoardConfig holds the consuming-side service configuration
type BoardConfig struct {
	Listen     string         `yaml:"listen" default:":3000"`
	SessionTTL time.Duration  `yaml:"session_ttl" default:"24h"`
	RedisURL   string         `yaml:"redis_url"` // empty means in-memory sessions
	DevMode    bool           `yaml:"dev_mode"`  // in-memory accounts, no postgres
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	Database string `yaml:"database" default:"crossgate"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode" default:"disable"`
}

// LoggingConfig holds structured logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"text"` // text, json
}

// ConnectionString returns the PostgreSQL connection string
func (p *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// ValidateBridge checks the handoff settings both services depend on.
// An empty secret must keep a service from starting: signing or
// verifying with an empty key is worse than refusing traffic.
func (c *Config) ValidateBridge() error {
	if c.Bridge.Secret == "" {
		return fmt.Errorf("bridge.secret is required (set EXTERNAL_AUTH_SECRET)")
	}
	if c.Bridge.BoardURL == "" {
		return fmt.Errorf("bridge.board_url is required")
	}
	if c.Bridge.TokenTTL <= 0 {
		return fmt.Errorf("bridge.token_ttl must be positive")
	}
	return nil
}
