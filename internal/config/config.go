package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level comanda configuration file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig controls the HTTP server behavior.
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	CORSOrigins     []string `yaml:"cors_origins"`
	RateLimit       int      `yaml:"rate_limit"`
	RateWindow      string   `yaml:"rate_window"`
	TokenRateLimit  int      `yaml:"token_rate_limit"`
}

// AuthConfig controls token issuance. The two secrets are deliberately
// separate: session and order tokens live in different trust domains and
// must not share a signing key.
type AuthConfig struct {
	SessionSecret    string `yaml:"session_secret"`
	OrderSecret      string `yaml:"order_secret"`
	SessionTTL       string `yaml:"session_ttl"`
	RefreshTTL       string `yaml:"refresh_ttl"`
	OrderTokenWindow string `yaml:"order_token_window"`
}

// DatabaseConfig selects the backing store. Driver is "sqlite" (DSN is a
// data directory, empty for in-memory), "postgres", or "mysql".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// WhatsAppConfig configures the Twilio WhatsApp notification channel.
// Credentials are usually supplied via ${ENV} references in the file.
type WhatsAppConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"`
	To         string `yaml:"to"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses a YAML configuration file. Environment variables
// referenced as ${VAR_NAME} in the file are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Default returns a Config pre-filled with production defaults. Secrets are
// intentionally empty; the serve command refuses to run without them unless
// dev mode is on.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ShutdownTimeout: "30s",
			CORSOrigins:     []string{"*"},
			RateLimit:       50,
			RateWindow:      "15m",
			TokenRateLimit:  10,
		},
		Auth: AuthConfig{
			SessionTTL:       "1h",
			RefreshTTL:       "24h",
			OrderTokenWindow: "10s",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Duration parses one of the config's duration strings, falling back to
// def when the field is empty or malformed.
func Duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
