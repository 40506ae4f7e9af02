// Package config provides configuration management for the XyronQ service.
package config

import (
	"time"
)

// ServerConfig holds configuration for the HTTP configuration API.
type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	DatabaseURL    string
}

// DefaultServerConfig returns configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		RequestTimeout: 30 * time.Second,
		DatabaseURL:    "sqlite://./xyronq.db",
	}
}
