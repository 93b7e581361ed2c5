package shared

import (
	"os"
	"path/filepath"
)

const (
	appDirName        = "sptty"
	defaultConfigFile = "config.toml"
	defaultTokenFile  = "token"
	defaultAgentLog   = "agent.log"

	// ConfigDirEnv overrides the directory holding config.toml.
	ConfigDirEnv = "SPTTY_CONFIG_DIR"
)

// ConfigDir returns the directory holding config.toml.
func ConfigDir() string {
	if env := os.Getenv(ConfigDirEnv); env != "" {
		return env
	}
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, appDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "."+appDirName)
}

// ConfigPath returns the default config file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), defaultConfigFile)
}

// CacheDir returns the per-user cache directory for sptty.
func CacheDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, appDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "."+appDirName, "cache")
}

// TokenCachePath returns the fixed location of the cached access token record.
func TokenCachePath() string {
	return filepath.Join(CacheDir(), defaultTokenFile)
}

// AgentLogPath returns the default log file of the playback agent.
func AgentLogPath() string {
	return filepath.Join(CacheDir(), defaultAgentLog)
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(path), perm)
}

// SystemdUserDir returns the directory systemd searches for user units.
func SystemdUserDir() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "systemd", "user")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "systemd", "user")
}
