package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultServerConfig
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("database.url", "sqlite://./xyronq.db")

	// Bind environment variables with XQ_ prefix
	v.SetEnvPrefix("XQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &ServerConfig{
		Host:           v.GetString("server.host"),
		Port:           v.GetInt("server.port"),
		RequestTimeout: v.GetDuration("server.request_timeout"),
		DatabaseURL:    v.GetString("database.url"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range, timeout and database URL scheme.
func validateConfig(cfg *ServerConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database url is required")
	}
	if !strings.HasPrefix(cfg.DatabaseURL, "sqlite://") && !strings.HasPrefix(cfg.DatabaseURL, "postgres://") {
		return fmt.Errorf("database url must use the sqlite:// or postgres:// scheme, got %q", cfg.DatabaseURL)
	}
	return nil
}
