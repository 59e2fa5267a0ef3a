package logging

import (
	"path/filepath"
)

// LogDir returns the log directory under the given storage directory.
func LogDir(storageDir string) string {
	return filepath.Join(storageDir, "logs")
}

// LogPath returns the log file path under the given storage directory.
func LogPath(storageDir string) string {
	return filepath.Join(LogDir(storageDir), "ragdex.log")
}
