package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// DefaultConfigPaths defines the default locations to search for configuration files
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./configs/config.yaml",
	"./configs/config.yml",
	"/etc/crossgate/config.yaml",
	"/etc/crossgate/config.yml",
}

// Load loads the configuration from the specified file or default locations
func Load(configPath string) (*Config, error) {
	config := defaults()

	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" && fileExists(configPath) {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// The secret can always come straight from the environment,
	// matching how the original deployments provisioned it.
	if config.Bridge.Secret == "" {
		config.Bridge.Secret = os.Getenv("EXTERNAL_AUTH_SECRET")
	}
	if v := os.Getenv("BOARD_URL"); v != "" {
		config.Bridge.BoardURL = v
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		Bridge: BridgeConfig{
			System:   "main_system",
			TokenTTL: 60 * time.Second,
			BoardURL: "http://localhost:3000",
		},
		Portal: PortalConfig{
			Listen: ":8080",
		},
		Board: BoardConfig{
			Listen:     ":3000",
			SessionTTL: 24 * time.Hour,
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "crossgate",
				User:     "postgres",
				SSLMode:  "disable",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// findConfigFile searches for a configuration file in default locations
func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}

// validate performs basic validation on the configuration. Bridge
// settings are validated separately by ValidateBridge, since the CLI's
// read-only commands can run without a secret.
func validate(config *Config) error {
	if !config.Board.DevMode && config.Board.Postgres.Host == "" {
		return fmt.Errorf("board.postgres.host is required")
	}
	if config.Board.Postgres.Database == "" {
		return fmt.Errorf("board.postgres.database is required")
	}
	if config.Bridge.System == "" {
		return fmt.Errorf("bridge.system is required")
	}

	for i, u := range config.Portal.Users {
		if u.Username == "" || u.UserID == "" {
			return fmt.Errorf("portal.users[%d]: username and user_id are required", i)
		}
	}

	return nil
}
