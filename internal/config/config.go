package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tanq16/snatch/internal/engine"
	"github.com/tanq16/snatch/internal/utils"
	"gopkg.in/yaml.v3"
)

// Config holds the user-tunable settings for the snatch CLI. Values merge in
// order: defaults, config file, environment, then flags.
type Config struct {
	OutputDir   string            `yaml:"output_dir"`
	Connections int               `yaml:"connections"`
	UserAgent   string            `yaml:"user_agent"`
	Headers     map[string]string `yaml:"headers"`
	Proxy       ProxyConfig       `yaml:"proxy"`
	RateLimit   int64             `yaml:"-"`
}

// ProxyConfig routes requests through an HTTP proxy, optionally with basic
// auth.
type ProxyConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		OutputDir:   ".",
		Connections: engine.DefaultConnections,
	}
}

// yamlConfig mirrors Config for unmarshaling; rate_limit takes a human size
// string like "5M".
type yamlConfig struct {
	OutputDir   string            `yaml:"output_dir"`
	Connections int               `yaml:"connections"`
	UserAgent   string            `yaml:"user_agent"`
	Headers     map[string]string `yaml:"headers"`
	Proxy       ProxyConfig       `yaml:"proxy"`
	RateLimit   string            `yaml:"rate_limit"`
}

// DefaultPath is where LoadDefault looks for a config file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "snatch", "config.yaml")
}

// LoadFromFile loads configuration from a YAML file, layered over defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()
	if yc.OutputDir != "" {
		cfg.OutputDir = yc.OutputDir
	}
	if yc.Connections != 0 {
		cfg.Connections = yc.Connections
	}
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	if len(yc.Headers) > 0 {
		cfg.Headers = yc.Headers
	}
	cfg.Proxy = yc.Proxy
	if yc.RateLimit != "" {
		limit, err := utils.ParseSize(yc.RateLimit)
		if err != nil {
			return Config{}, fmt.Errorf("parse rate_limit: %w", err)
		}
		cfg.RateLimit = limit
	}
	return cfg, nil
}

// LoadDefault reads the config file at DefaultPath. A missing file is not an
// error; the defaults stand.
func LoadDefault() (Config, error) {
	path := DefaultPath()
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return LoadFromFile(path)
}

// LoadFromEnv overlays SNATCH_-prefixed environment variables.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("SNATCH_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("SNATCH_CONNECTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SNATCH_CONNECTIONS: %w", err)
		}
		c.Connections = n
	}
	if v := os.Getenv("SNATCH_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("SNATCH_PROXY"); v != "" {
		c.Proxy.URL = v
	}
	if v := os.Getenv("SNATCH_RATE_LIMIT"); v != "" {
		limit, err := utils.ParseSize(v)
		if err != nil {
			return fmt.Errorf("parse SNATCH_RATE_LIMIT: %w", err)
		}
		c.RateLimit = limit
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Connections <= 0 {
		return errors.New("config: connections must be positive")
	}
	if c.RateLimit < 0 {
		return errors.New("config: rate limit must be non-negative")
	}
	if c.Proxy.URL != "" {
		if _, err := url.Parse(c.Proxy.URL); err != nil {
			return fmt.Errorf("config: proxy url: %w", err)
		}
	}
	return nil
}

// ClientConfig maps the request-shaping settings onto an HTTP client config.
func (c Config) ClientConfig() utils.HTTPClientConfig {
	return utils.HTTPClientConfig{
		UserAgent:     c.UserAgent,
		Headers:       c.Headers,
		ProxyURL:      c.Proxy.URL,
		ProxyUsername: c.Proxy.Username,
		ProxyPassword: c.Proxy.Password,
	}
}
