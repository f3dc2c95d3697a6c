package profile

import (
	"os"
	"path/filepath"
)

// baseDirOverride is set by tests; empty means ~/.vtrack.
var baseDirOverride string

// BaseDir returns ~/.vtrack, or $VTRACK_HOME when set.
func BaseDir() string {
	if baseDirOverride != "" {
		return baseDirOverride
	}
	if env := os.Getenv("VTRACK_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".vtrack")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// ControlSocketPath returns the daemon control socket for a profile.
func ControlSocketPath(name string) string {
	return filepath.Join(Dir(name), "control.sock")
}

// LockPath returns the lock file path for a profile.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// DBPath returns the backend database path.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "vtrack.db")
}

// AuthPath returns the persisted login file used by the clients.
func AuthPath(name string) string {
	return filepath.Join(Dir(name), "auth.json")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// DaemonLogPath returns the vtrackd log file path.
func DaemonLogPath(name string) string {
	return filepath.Join(LogDir(name), "vtrackd.log")
}

// ClientLogPath returns the log file path of the terminal client.
func ClientLogPath(name string) string {
	return filepath.Join(LogDir(name), "vtrack.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the profile directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
