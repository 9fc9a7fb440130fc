// Package paths resolves the actstream configuration and data directories.
//
// Each directory is taken from the first non-empty source in a precedence
// chain and always returned as an absolute path.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppDirName is the directory name used under platform base directories.
const AppDirName = "actstream"

// CWD-relative directory names.
const (
	DefaultConfigDirName = ".actstream"
	DefaultDataDirName   = ".actstream-db"
)

// ConfigFileName is the configuration file inside the config directory.
const ConfigFileName = "config.yaml"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "ACTSTREAM_CONFIG_DIR"
	EnvDataDir   = "ACTSTREAM_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir describes where a directory lives on Linux: the XDG variable that
// overrides it and the path under $HOME used when the variable is unset.
type xdgDir struct {
	env      string
	fallback []string
}

var (
	xdgConfig = xdgDir{env: "XDG_CONFIG_HOME", fallback: []string{".config"}}
	xdgData   = xdgDir{env: "XDG_DATA_HOME", fallback: []string{".local", "share"}}
)

// platformDefault returns the actstream directory under the platform base
// directory. macOS and Windows keep config and data together under
// os.UserConfigDir.
func platformDefault(xdg xdgDir) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppDirName), nil
	}
	if base := os.Getenv(xdg.env); base != "" {
		return filepath.Join(base, AppDirName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, xdg.fallback...)
	return filepath.Join(append(parts, AppDirName)...), nil
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/actstream (fallback ~/.config/actstream)
// macOS:   ~/Library/Application Support/actstream
// Windows: %APPDATA%/actstream
func DefaultConfigDir() (string, error) {
	return platformDefault(xdgConfig)
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/actstream (fallback ~/.local/share/actstream)
// macOS and Windows: same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	return platformDefault(xdgData)
}

// firstAbs returns the first non-empty candidate as an absolute path.
func firstAbs(candidates ...string) (string, bool, error) {
	for _, c := range candidates {
		if c != "" {
			abs, err := filepath.Abs(c)
			return abs, true, err
		}
	}
	return "", false, nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > ACTSTREAM_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if dir, ok, err := firstAbs(flag, os.Getenv(EnvConfigDir)); ok {
		return dir, err
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > ACTSTREAM_DATA_DIR env > $(CWD)/.actstream-db.
//
// With no override each working directory keeps its own action store.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if dir, ok, err := firstAbs(flag, configYAMLValue, os.Getenv(EnvDataDir)); ok {
		return dir, err
	}
	return filepath.Abs(DefaultDataDirName)
}

// ConfigFile returns the path of the configuration file in configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}
