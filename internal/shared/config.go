package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	DefaultAuthorizationEndpoint = "https://accounts.spotify.com/authorize"
	DefaultTokenEndpoint         = "https://accounts.spotify.com/api/token"
	DefaultAPIEndpoint           = "https://api.spotify.com"
	DefaultRedirectTimeout       = 5 * time.Minute
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Auth  AuthConfig  `toml:"auth"`
	API   APIConfig   `toml:"api"`
	Agent AgentConfig `toml:"agent"`
}

// AuthConfig holds the OAuth2 client registration. It is loaded once and never mutated.
type AuthConfig struct {
	ClientID              string        `toml:"client_id"`
	RedirectURI           string        `toml:"redirect_uri"`
	AuthorizationEndpoint string        `toml:"authorization_endpoint"`
	TokenEndpoint         string        `toml:"token_endpoint"`
	RedirectTimeout       time.Duration `toml:"redirect_timeout"`
}

// APIConfig contains the resource API origin.
type APIConfig struct {
	Endpoint string `toml:"endpoint"`
}

// AgentConfig describes the external Spotify Connect process run by the playback agent.
type AgentConfig struct {
	Command    string            `toml:"command"`
	Args       []string          `toml:"args"`
	Env        map[string]string `toml:"env"`
	DeviceName string            `toml:"device_name"`
	LogFile    string            `toml:"log_file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Optional keys fall back to the provider defaults; client_id and redirect_uri are required.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfig, err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes TOML data on top of the built-in defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	config := Config{
		Auth: AuthConfig{
			AuthorizationEndpoint: DefaultAuthorizationEndpoint,
			TokenEndpoint:         DefaultTokenEndpoint,
			RedirectTimeout:       DefaultRedirectTimeout,
		},
		API:   APIConfig{Endpoint: DefaultAPIEndpoint},
		Agent: AgentConfig{DeviceName: "sptty"},
	}

	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks required fields and URL shapes.
func (c *Config) Validate() error {
	if c.Auth.ClientID == "" {
		return fmt.Errorf("%w: auth.client_id is required", ErrConfig)
	}
	if c.Auth.RedirectURI == "" {
		return fmt.Errorf("%w: auth.redirect_uri is required", ErrConfig)
	}

	u, err := url.Parse(c.Auth.RedirectURI)
	if err != nil || u.Scheme != "http" || u.Hostname() == "" {
		return fmt.Errorf("%w: auth.redirect_uri must be a loopback http URL, got %q", ErrConfig, c.Auth.RedirectURI)
	}

	if c.Auth.RedirectTimeout < 0 {
		return fmt.Errorf("%w: auth.redirect_timeout must not be negative", ErrConfig)
	}

	return nil
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := EnsureDir(path, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, exampleConf, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
