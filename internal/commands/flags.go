package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/foliops/folio/internal/core/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	StateDir   string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "folio", "config.yaml")
}

// DefaultStateDir returns the default state directory (logs, crash
// reports) using the system's state directory.
// On macOS: ~/Library/Application Support/folio
// On Linux: $XDG_STATE_HOME/folio (defaults to ~/.local/state/folio)
func DefaultStateDir() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "folio")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "folio")
	}

	return filepath.Join(home, ".local", "state", "folio")
}
