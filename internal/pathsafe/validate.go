// Package pathsafe implements C1, the path validator: the single gate every
// client-supplied path component passes through before it is joined to a
// server-controlled base directory. Ported from original_source's
// file.rs::path_is_valid.
package pathsafe

import (
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/yazhouio/extension-hub/internal/fs"
	"github.com/yazhouio/extension-hub/internal/huberr"
)

// Validate enforces that p, split on the platform separator, is exactly one
// normal path component: not empty, not ".", not "..", not absolute, and not
// a root/drive designator. Any other shape is rejected as InvalidPath.
func Validate(p string) error {
	if p == "" {
		return huberr.InvalidPath(p)
	}
	// A leading separator (or, on Windows, a drive letter) makes this an
	// absolute path rather than a single relative component.
	if filepath.IsAbs(p) {
		return huberr.InvalidPath(p)
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	if strings.Contains(clean, "/") {
		return huberr.InvalidPath(p)
	}
	switch clean {
	case ".", "..", "":
		return huberr.InvalidPath(p)
	}
	if clean != filepath.ToSlash(p) {
		// Clean() collapsed something (e.g. a trailing slash, "./foo", a
		// repeated separator) — the caller did not hand us a normal name.
		return huberr.InvalidPath(p)
	}
	return nil
}

// JoinComponent validates name as a single path component and joins it onto
// base, returning the resulting absolute path. The securejoin resolution is
// defense in depth on top of Validate: even if a future caller skips
// Validate, the joined path can never resolve outside base.
func JoinComponent(base fs.AbsolutePath, name string) (fs.AbsolutePath, error) {
	if err := Validate(name); err != nil {
		return "", err
	}
	resolved, err := securejoin.SecureJoin(base.ToString(), name)
	if err != nil {
		return "", huberr.InvalidPath(name)
	}
	return fs.UnsafeToAbsolutePath(resolved), nil
}
