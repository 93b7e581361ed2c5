package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Auth.ClientID != "your_spotify_client_id" {
			t.Errorf("expected client_id your_spotify_client_id, got %s", config.Auth.ClientID)
		}

		if config.Auth.RedirectURI != "http://127.0.0.1:4381/callback" {
			t.Errorf("expected loopback redirect URI, got %s", config.Auth.RedirectURI)
		}

		if config.Auth.RedirectTimeout != 5*time.Minute {
			t.Errorf("expected redirect timeout 5m, got %v", config.Auth.RedirectTimeout)
		}

		if config.API.Endpoint != DefaultAPIEndpoint {
			t.Errorf("expected api endpoint %s, got %s", DefaultAPIEndpoint, config.API.Endpoint)
		}
	})

	t.Run("Default Agent Keeps Token Out Of Args", func(t *testing.T) {
		agent := DefaultConfig().Agent

		for _, arg := range agent.Args {
			if strings.Contains(arg, "SPTTY_ACCESS_TOKEN") {
				t.Errorf("expected no token reference in args, got %q", arg)
			}
		}

		if got := agent.Env["LIBRESPOT_ACCESS_TOKEN"]; got != "${SPTTY_ACCESS_TOKEN}" {
			t.Errorf("expected token passed through env, got %q", got)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "nested", "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Auth.TokenEndpoint != DefaultConfig().Auth.TokenEndpoint {
			t.Errorf("created config token endpoint doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("Applies Endpoint Defaults", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			testConfig := `[auth]
client_id = "abc"
redirect_uri = "http://127.0.0.1:4381/callback"
`
			if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			config, err := LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}

			if config.Auth.ClientID != "abc" {
				t.Errorf("expected client_id abc, got %s", config.Auth.ClientID)
			}
			if config.Auth.AuthorizationEndpoint != DefaultAuthorizationEndpoint {
				t.Errorf("expected default authorization endpoint, got %s", config.Auth.AuthorizationEndpoint)
			}
			if config.Auth.TokenEndpoint != DefaultTokenEndpoint {
				t.Errorf("expected default token endpoint, got %s", config.Auth.TokenEndpoint)
			}
			if config.Auth.RedirectTimeout != DefaultRedirectTimeout {
				t.Errorf("expected default redirect timeout, got %v", config.Auth.RedirectTimeout)
			}
			if config.API.Endpoint != DefaultAPIEndpoint {
				t.Errorf("expected default api endpoint, got %s", config.API.Endpoint)
			}
		})

		t.Run("Overrides Endpoints", func(t *testing.T) {
			config, err := ParseConfig([]byte(`[auth]
client_id = "abc"
redirect_uri = "http://localhost:9000/cb"
authorization_endpoint = "http://127.0.0.1:1/authorize"
token_endpoint = "http://127.0.0.1:1/token"
redirect_timeout = "0s"
`))
			if err != nil {
				t.Fatalf("failed to parse config: %v", err)
			}
			if config.Auth.TokenEndpoint != "http://127.0.0.1:1/token" {
				t.Errorf("expected custom token endpoint, got %s", config.Auth.TokenEndpoint)
			}
			if config.Auth.RedirectTimeout != 0 {
				t.Errorf("expected redirect timeout to be disabled, got %v", config.Auth.RedirectTimeout)
			}
		})

		t.Run("Missing File", func(t *testing.T) {
			_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
			if !errors.Is(err, ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		tc := []struct {
			name string
			data string
		}{
			{name: "malformed toml", data: `[auth`},
			{name: "missing client_id", data: "[auth]\nredirect_uri = \"http://127.0.0.1:4381/callback\"\n"},
			{name: "missing redirect_uri", data: "[auth]\nclient_id = \"abc\"\n"},
			{name: "non-http redirect_uri", data: "[auth]\nclient_id = \"abc\"\nredirect_uri = \"https://example.com/cb\"\n"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ParseConfig([]byte(tt.data))
				if !errors.Is(err, ErrConfig) {
					t.Errorf("expected ErrConfig, got %v", err)
				}
			})
		}
	})
}

func TestPaths(t *testing.T) {
	t.Run("ConfigDir Honors Env", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(ConfigDirEnv, dir)

		if got := ConfigPath(); got != filepath.Join(dir, "config.toml") {
			t.Errorf("expected config path under %s, got %s", dir, got)
		}
	})

	t.Run("TokenCachePath", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("XDG_CACHE_HOME", dir)

		if got := TokenCachePath(); got != filepath.Join(dir, "sptty", "token") {
			t.Errorf("expected %s/sptty/token, got %s", dir, got)
		}
	})
}

func TestOpenBrowser(t *testing.T) {
	original := openURL
	t.Cleanup(func() { openURL = original })

	var opened string
	openURL = func(u string) error {
		opened = u
		return nil
	}

	if err := OpenBrowser("https://example.com"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if opened != "https://example.com" {
		t.Errorf("expected URL to be opened, got %q", opened)
	}

	openURL = func(string) error { return errors.New("no display") }
	if err := OpenBrowser("https://example.com"); err == nil {
		t.Error("expected error when the browser cannot be opened")
	}
}
