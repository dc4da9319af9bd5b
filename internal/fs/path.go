// Adapted from https://github.com/vercel/turborepo (cli/internal/fs/path.go)
// Copyright Vercel, Inc. contributors. SPDX-License-Identifier: MPL-2.0
package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirPermissions are the default permissions this package uses when creating directories.
const DirPermissions = os.FileMode(0755)

// AbsolutePath represents a platform-dependent absolute path on the filesystem,
// and is used to enforce correct path manipulation throughout the hub.
type AbsolutePath string

// CheckedToAbsolutePath returns s as an AbsolutePath, failing if it is not absolute.
func CheckedToAbsolutePath(s string) (AbsolutePath, error) {
	if filepath.IsAbs(s) {
		return AbsolutePath(s), nil
	}
	return "", fmt.Errorf("%v is not an absolute path", s)
}

// UnsafeToAbsolutePath wraps s as an AbsolutePath without checking it is absolute.
// Callers must have validated s some other way, e.g. by joining against a base
// directory that is itself known-absolute.
func UnsafeToAbsolutePath(s string) AbsolutePath {
	return AbsolutePath(s)
}

func (ap AbsolutePath) ToString() string {
	return ap.asString()
}

func (ap AbsolutePath) asString() string {
	return string(ap)
}

// Join appends path elements onto this AbsolutePath.
func (ap AbsolutePath) Join(args ...string) AbsolutePath {
	return AbsolutePath(filepath.Join(ap.asString(), filepath.Join(args...)))
}

// JoinPOSIXPath appends a relative path in posix format ('/' separator) to
// this absolute path, by first converting the input to a platform-dependent path.
func (ap AbsolutePath) JoinPOSIXPath(posixPath string) AbsolutePath {
	return ap.Join(filepath.FromSlash(posixPath))
}

func (ap AbsolutePath) Dir() AbsolutePath {
	return AbsolutePath(filepath.Dir(ap.asString()))
}

func (ap AbsolutePath) MkdirAll() error {
	return os.MkdirAll(ap.asString(), DirPermissions)
}

func (ap AbsolutePath) Remove() error {
	return os.Remove(ap.asString())
}

// RemoveAll recursively removes this path and everything under it.
func (ap AbsolutePath) RemoveAll() error {
	return os.RemoveAll(ap.asString())
}

// Rename moves this path to the given destination; on the same filesystem
// this is atomic.
func (ap AbsolutePath) Rename(to AbsolutePath) error {
	return os.Rename(ap.asString(), to.asString())
}

func (ap AbsolutePath) Open() (*os.File, error) {
	return os.Open(ap.asString())
}

// OpenFile is the AbsolutePath implementation of os.OpenFile
func (ap AbsolutePath) OpenFile(flag int, mode fs.FileMode) (*os.File, error) {
	return os.OpenFile(ap.asString(), flag, mode)
}

func (ap AbsolutePath) ReadFile() ([]byte, error) {
	return os.ReadFile(ap.asString())
}

// WriteFile is the AbsolutePath implementation of os.WriteFile
func (ap AbsolutePath) WriteFile(bytes []byte, mode fs.FileMode) error {
	return os.WriteFile(ap.asString(), bytes, mode)
}

func (ap AbsolutePath) FileExists() bool {
	return FileExists(ap.asString())
}

func (ap AbsolutePath) PathExists() bool {
	return PathExists(ap.asString())
}

func (ap AbsolutePath) EnsureDir() error {
	return EnsureDir(ap.asString())
}

// Lstat is the AbsolutePath implementation of os.Lstat
func (ap AbsolutePath) Lstat() (fs.FileInfo, error) {
	return os.Lstat(ap.asString())
}

// Readlink reads a link at this path, and returns the AbsolutePath for the target
func (ap AbsolutePath) Readlink() (AbsolutePath, error) {
	dest, err := os.Readlink(ap.asString())
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(dest) {
		return AbsolutePath(dest), nil
	}
	// We know the starting point, so if it's a relative path we can join.
	return ap.Dir().Join(dest), nil
}

// SymlinkTo creates a symlink at this path pointing at target.
func (ap AbsolutePath) SymlinkTo(target string) error {
	return os.Symlink(target, ap.asString())
}

// IsDirectory is the AbsolutePath implementation of fs.IsDirectory
func (ap AbsolutePath) IsDirectory() bool {
	return IsDirectory(ap.asString())
}

// RelativePathString returns the relative path from this AbsolutePath to another
// AbsolutePath as a string.
func (ap AbsolutePath) RelativePathString(to AbsolutePath) (string, error) {
	return filepath.Rel(ap.asString(), to.asString())
}
