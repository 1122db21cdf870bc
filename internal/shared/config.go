package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Groq     GroqConfig     `toml:"groq"`
	OAuth    OAuthConfig    `toml:"oauth"`
	Database DatabaseConfig `toml:"database"`
}

// BackendConfig contains settings for the Persona backend API.
type BackendConfig struct {
	BaseURL string `toml:"base_url"`
}

// GroqConfig contains settings for the Groq API used to validate capability keys.
type GroqConfig struct {
	BaseURL string `toml:"base_url"`
}

// OAuthConfig contains settings for the Google OAuth flow.
//
// The redirect host/port must match the redirect URI registered for the
// backend's OAuth client.
type OAuthConfig struct {
	AuthURL      string `toml:"auth_url"`
	RedirectHost string `toml:"redirect_host"`
	RedirectPort int    `toml:"redirect_port"`
}

// DatabaseConfig contains database connection settings for the session store.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RedirectURL returns the OAuth callback address the loopback server listens on.
func (c OAuthConfig) RedirectURL() string {
	return fmt.Sprintf("http://%s:%d/oauth2callback", c.RedirectHost, c.RedirectPort)
}

// ListenAddr returns the host:port the loopback callback server binds to.
func (c OAuthConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.RedirectHost, c.RedirectPort)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
