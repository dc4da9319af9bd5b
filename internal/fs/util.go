// Adapted from https://github.com/vercel/turborepo (cli/internal/fs)
package fs

import (
	"os"
	"path/filepath"
)

// FileExists returns true if path exists and is a regular file (or a symlink to one).
func FileExists(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && !info.IsDir()
}

// PathExists returns true if anything at all exists at path.
func PathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDirectory returns true if path exists and is a directory.
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDir creates the parent directory of path if it does not already exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, DirPermissions)
}
