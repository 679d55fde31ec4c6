package util

import (
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// PathExists reports whether something exists at path.
func PathExists(path string) (fs.FileInfo, bool) {
	fi, err := os.Stat(path)
	return fi, !os.IsNotExist(err)
}

// SplitPathForViper splits path into directory, base name without
// extension, and extension without the dot, the pieces viper wants for
// AddConfigPath, SetConfigName and SetConfigType.
func SplitPathForViper(path string) (string, string, string) {
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	return filepath.Dir(path), strings.TrimSuffix(filename, ext), strings.TrimPrefix(ext, ".")
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to make directory %s: %w", dir, err)
	}
	return nil
}

// GetCurrentUsername returns the login name of the current user, falling
// back to $USER.
func GetCurrentUsername() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

// DefaultCachePath is where snapshots are stored when no --cache is given.
func DefaultCachePath() string {
	return filepath.Join(os.TempDir(), GetCurrentUsername(), "hs300", "snapshots.db")
}

// DefaultSecretsPath is where saved WiFi passwords are kept.
func DefaultSecretsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "hs300", "secrets.json")
}
