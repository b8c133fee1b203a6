// Package paths provides XDG-compliant path resolution for ninjawatch.
//
// Resolution order:
// 1. NINJAWATCH_HOME (portable root) → $NINJAWATCH_HOME/{config,state}
// 2. XDG env vars → $XDG_*_HOME/ninjawatch
// 3. Platform defaults → ~/.config/ninjawatch, ~/.local/state/ninjawatch
package paths

import (
	"os"
	"path/filepath"
)

const appName = "ninjawatch"

// homeOr resolves one XDG base directory.
func homeOr(sub, xdgVar string, fallback ...string) string {
	if home := os.Getenv("NINJAWATCH_HOME"); home != "" {
		return filepath.Join(home, sub)
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(append([]string{homeDir}, append(fallback, appName)...)...)
	}
	return ""
}

// ConfigDir returns the ninjawatch configuration directory.
// Used for the global ninjawatch.yml layer.
func ConfigDir() string {
	return homeOr("config", "XDG_CONFIG_HOME", ".config")
}

// StateDir returns the ninjawatch state directory.
// Used for the default log file location.
func StateDir() string {
	return homeOr("state", "XDG_STATE_HOME", ".local", "state")
}

// GlobalConfigFile returns the path of the global config layer, or "" if no
// home directory can be determined.
func GlobalConfigFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "ninjawatch.yml")
}
