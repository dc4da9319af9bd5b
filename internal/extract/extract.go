// Package extract implements C4, the archive extractor: decompresses and
// unpacks a stored archive into a target subdirectory under a managed root,
// with controlled overwrite and path-traversal-safe entry resolution.
// Grounded on the teacher's tar/gzip handling in cache_http.go's retrieve(),
// generalized from "restore a cache artifact" to "unpack an arbitrary
// uploaded archive" — which is why, unlike the teacher, every entry path is
// re-validated before it touches the filesystem (spec.md §9's open
// question on tar entry sanitisation, resolved here as MUST-reject).
package extract

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path"
	"strings"

	"github.com/yazhouio/extension-hub/internal/fs"
	"github.com/yazhouio/extension-hub/internal/huberr"
	"github.com/yazhouio/extension-hub/internal/pathsafe"
	"github.com/yazhouio/extension-hub/internal/store"
	"github.com/yazhouio/extension-hub/internal/treeindex"
)

// Extractor is C4: it pulls archive bytes from a Store and unpacks them
// under baseDir, recording the result in a tree Index.
type Extractor struct {
	baseDir fs.AbsolutePath
	store   *store.Store
	index   *treeindex.Index
}

// New constructs an Extractor rooted at baseDir.
func New(baseDir fs.AbsolutePath, s *store.Store, idx *treeindex.Index) *Extractor {
	return &Extractor{baseDir: baseDir, store: s, index: idx}
}

// Extract unpacks the archive stored under hash into baseDir/targetDir.
//
//  1. targetDir passes the C1 path validator.
//  2. If the destination exists and overwrite is false, DirHasExist.
//  3. The stored archive is opened (TarNotExist if absent).
//  4. If the destination exists and overwrite is true, it is removed first.
//  5. Every tar entry is streamed out through gzip+tar; entries whose
//     resolved destination would escape targetDir are rejected wholesale
//     (InvalidPath) rather than silently skipped or written outside.
//  6. On success, the tree index records (hash, targetDir).
//
// Failure at any step leaves whatever partial state step 5 had written: an
// overwrite=true caller accepts this; an overwrite=false caller is
// protected by step 2 never having let extraction begin.
func (e *Extractor) Extract(hash, targetDir string, overwrite bool) error {
	if err := pathsafe.Validate(targetDir); err != nil {
		return err
	}
	dest := e.baseDir.Join(targetDir)

	exists := dest.PathExists()
	if exists && !overwrite {
		return huberr.DirHasExist(targetDir)
	}

	archive, err := e.store.Open(hash)
	if err != nil {
		return err
	}
	defer archive.Close()

	if exists && overwrite {
		if err := dest.RemoveAll(); err != nil {
			return huberr.IOError(err)
		}
	}

	if err := unpack(archive, dest); err != nil {
		return err
	}

	e.index.Record(hash, targetDir)
	return nil
}

func unpack(r io.Reader, dest fs.AbsolutePath) error {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return huberr.IOError(err)
	}
	defer gzr.Close()

	if err := dest.MkdirAll(); err != nil {
		return huberr.IOError(err)
	}

	tr := tar.NewReader(gzr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return huberr.IOError(err)
		}

		relPath, err := resolveEntryPath(hdr.Name)
		if err != nil {
			return err
		}
		entry := dest.JoinPOSIXPath(relPath)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := entry.MkdirAll(); err != nil {
				return huberr.IOError(err)
			}
		case tar.TypeReg, tar.TypeRegA:
			if err := entry.EnsureDir(); err != nil {
				return huberr.IOError(err)
			}
			if err := writeRegularFile(tr, entry, os.FileMode(hdr.Mode)); err != nil {
				return huberr.IOError(err)
			}
		case tar.TypeSymlink:
			if err := entry.EnsureDir(); err != nil {
				return huberr.IOError(err)
			}
			// The link target is resolved the same way a second time so a
			// symlink can't be used to point outside dest either.
			if _, err := resolveEntryPath(hdr.Linkname); err != nil {
				return err
			}
			entry.Remove()
			if err := entry.SymlinkTo(hdr.Linkname); err != nil {
				return huberr.IOError(err)
			}
		default:
			// Unhandled entry type (device nodes, fifos, ...): skip silently,
			// matching the teacher's "Unhandled file type" log-and-continue.
		}
	}
}

// resolveEntryPath normalises a tar entry's name (or link target) to a
// posix-style relative path and rejects it outright if it is absolute or
// would climb above the extraction root, instead of silently clamping it —
// the hardening spec.md §9 calls for but the source archive it was
// distilled from does not do.
func resolveEntryPath(name string) (string, error) {
	if name == "" {
		return "", huberr.InvalidPath(name)
	}
	slashed := filepathToSlash(name)
	if path.IsAbs(slashed) {
		return "", huberr.InvalidPath(name)
	}
	clean := path.Clean(slashed)
	if clean == ".." || strings.HasPrefix(clean, "../") || clean == "." {
		return "", huberr.InvalidPath(name)
	}
	return clean, nil
}

func filepathToSlash(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

func writeRegularFile(r io.Reader, dest fs.AbsolutePath, mode os.FileMode) error {
	if mode == 0 {
		mode = 0644
	}
	f, err := dest.OpenFile(os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}
