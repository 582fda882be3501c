package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.OutputDir != "." {
		t.Errorf("expected default output dir \".\", got %q", cfg.OutputDir)
	}
	if cfg.Connections != 4 {
		t.Errorf("expected default connections 4, got %d", cfg.Connections)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("expected unlimited rate by default, got %d", cfg.RateLimit)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
output_dir: /tmp/downloads
connections: 8
user_agent: snatch-test
headers:
  Authorization: Bearer token
proxy:
  url: http://proxy.local:8080
  username: alice
rate_limit: 5M
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.OutputDir != "/tmp/downloads" {
		t.Errorf("expected output dir /tmp/downloads, got %q", cfg.OutputDir)
	}
	if cfg.Connections != 8 {
		t.Errorf("expected connections 8, got %d", cfg.Connections)
	}
	if cfg.UserAgent != "snatch-test" {
		t.Errorf("expected user agent snatch-test, got %q", cfg.UserAgent)
	}
	if cfg.Headers["Authorization"] != "Bearer token" {
		t.Errorf("expected Authorization header, got %v", cfg.Headers)
	}
	if cfg.Proxy.URL != "http://proxy.local:8080" {
		t.Errorf("expected proxy url, got %q", cfg.Proxy.URL)
	}
	if cfg.Proxy.Username != "alice" {
		t.Errorf("expected proxy username alice, got %q", cfg.Proxy.Username)
	}
	if cfg.RateLimit != 5*1024*1024 {
		t.Errorf("expected rate limit 5MiB, got %d", cfg.RateLimit)
	}
}

func TestLoadFromYAMLPartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("connections: 2\n"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Connections != 2 {
		t.Errorf("expected connections 2, got %d", cfg.Connections)
	}
	if cfg.OutputDir != "." {
		t.Errorf("expected default output dir preserved, got %q", cfg.OutputDir)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SNATCH_OUTPUT_DIR", "/data")
	t.Setenv("SNATCH_CONNECTIONS", "16")
	t.Setenv("SNATCH_RATE_LIMIT", "1G")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.OutputDir != "/data" {
		t.Errorf("expected output dir /data, got %q", cfg.OutputDir)
	}
	if cfg.Connections != 16 {
		t.Errorf("expected connections 16, got %d", cfg.Connections)
	}
	if cfg.RateLimit != 1024*1024*1024 {
		t.Errorf("expected rate limit 1GiB, got %d", cfg.RateLimit)
	}
}

func TestLoadFromEnvInvalid(t *testing.T) {
	t.Setenv("SNATCH_CONNECTIONS", "many")
	cfg := Default()
	if err := cfg.LoadFromEnv(); err == nil {
		t.Error("expected error for non-numeric SNATCH_CONNECTIONS")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Default(), wantErr: false},
		{name: "zero connections", cfg: Config{Connections: 0}, wantErr: true},
		{name: "negative rate limit", cfg: Config{Connections: 4, RateLimit: -1}, wantErr: true},
		{name: "proxy set", cfg: Config{Connections: 4, Proxy: ProxyConfig{URL: "http://proxy:3128"}}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadYAMLFileNotFound(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("connections: [not: a number"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestClientConfigMapping(t *testing.T) {
	cfg := Config{
		UserAgent: "snatch-test",
		Headers:   map[string]string{"X-Token": "abc"},
		Proxy:     ProxyConfig{URL: "http://proxy:3128", Username: "u", Password: "p"},
	}
	clientCfg := cfg.ClientConfig()
	if clientCfg.UserAgent != "snatch-test" {
		t.Errorf("UserAgent = %q", clientCfg.UserAgent)
	}
	if clientCfg.Headers["X-Token"] != "abc" {
		t.Errorf("Headers = %v", clientCfg.Headers)
	}
	if clientCfg.ProxyURL != "http://proxy:3128" || clientCfg.ProxyUsername != "u" || clientCfg.ProxyPassword != "p" {
		t.Errorf("proxy mapping = %+v", clientCfg)
	}
}
