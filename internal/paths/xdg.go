// Package paths resolves the cibootstrap user config directory following XDG conventions.
package paths

import (
	"path/filepath"
	"runtime"
)

// Dirs holds the resolved directory paths for cibootstrap.
type Dirs struct {
	ConfigDir string
}

// Env is the interface for environment variable lookups.
// Implementations must return "" for unset variables.
type Env interface {
	Get(key string) string
}

// ResolveDirs computes the config directory based on environment variables
// and platform defaults.
//
// Resolution order for config directory:
//  1. CIBOOTSTRAP_CONFIG_DIR env var (if set)
//  2. macOS: ~/Library/Preferences/cibootstrap
//  3. XDG_CONFIG_HOME/cibootstrap (if set)
//  4. ~/.config/cibootstrap
//
// The homeDir parameter must be an absolute path to the user's home directory.
// This function does not touch the filesystem.
// ~ inside env vars is treated as literal (not expanded).
func ResolveDirs(env Env, homeDir string) Dirs {
	return ResolveDirsWithOS(env, homeDir, IsDarwin())
}

// IsDarwin returns true if the current OS is macOS.
func IsDarwin() bool {
	return runtime.GOOS == "darwin"
}

// ResolveDirsWithOS is like ResolveDirs but accepts an explicit OS flag for testing.
func ResolveDirsWithOS(env Env, homeDir string, isDarwin bool) Dirs {
	return Dirs{ConfigDir: resolveConfigDir(env, homeDir, isDarwin)}
}

func resolveConfigDir(env Env, homeDir string, isDarwin bool) string {
	if v := env.Get("CIBOOTSTRAP_CONFIG_DIR"); v != "" {
		return v
	}
	if isDarwin {
		return filepath.Join(homeDir, "Library", "Preferences", "cibootstrap")
	}
	if v := env.Get("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "cibootstrap")
	}
	return filepath.Join(homeDir, ".config", "cibootstrap")
}
