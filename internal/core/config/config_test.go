package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %v, want 0.0.0.0", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %v, want 8080", cfg.Port)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.DatabaseURL != "sqlite://./xyronq.db" {
		t.Errorf("DatabaseURL = %v, want sqlite://./xyronq.db", cfg.DatabaseURL)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}
	want := DefaultServerConfig()
	if *cfg != *want {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`server:
  host: 127.0.0.1
  port: 9090
  request_timeout: 5s
database:
  url: postgres://localhost:5432/xyronq
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %v, want 127.0.0.1", cfg.Host)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %v, want 9090", cfg.Port)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if cfg.DatabaseURL != "postgres://localhost:5432/xyronq" {
		t.Errorf("DatabaseURL = %v, want postgres url", cfg.DatabaseURL)
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	os.Setenv("XQ_SERVER_PORT", "7070")
	defer os.Unsetenv("XQ_SERVER_PORT")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("Port = %v, want 7070 from environment", cfg.Port)
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "port out of range",
			content: `server:
  port: 99999
`,
		},
		{
			name: "zero timeout",
			content: `server:
  request_timeout: 0s
`,
		},
		{
			name: "unknown database scheme",
			content: `database:
  url: mysql://localhost/xyronq
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("LoadConfig() error = nil, want validation error")
			}
		})
	}
}
