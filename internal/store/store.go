// Package store implements C2, the content-addressed archive store: it
// persists archive bytes under <hash>.tar.gz in a dedicated directory and
// tracks which hashes are present in memory. Grounded on the teacher's
// cache_fs.go/cache_http.go (temp-file-then-rename promotion pattern) and
// original_source's tar_map.
package store

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/zeebo/blake3"

	"github.com/yazhouio/extension-hub/internal/fs"
	"github.com/yazhouio/extension-hub/internal/huberr"
)

const archiveSuffix = ".tar.gz"

// Store is the hash-verified, de-duplicating archive store (C2).
// known holds the set of hashes currently believed present; membership there
// is necessary but not sufficient — Has() always re-checks the disk, per
// invariant I1.
type Store struct {
	tarDir fs.AbsolutePath
	known  *xsync.MapOf[string, struct{}]
}

// New constructs a Store rooted at tarDir. tarDir is created lazily on first
// Ingest, matching the original's "creating tar_dir if missing" behavior.
func New(tarDir fs.AbsolutePath) *Store {
	return &Store{
		tarDir: tarDir,
		known:  xsync.NewMapOf[string, struct{}](),
	}
}

func (s *Store) pathFor(hash string) fs.AbsolutePath {
	return s.tarDir.Join(hash + archiveSuffix)
}

func (s *Store) tmpPathFor(hash string) fs.AbsolutePath {
	return s.tarDir.Join("__tmp__", hash+archiveSuffix)
}

// Has reports whether hash is a known, currently-present archive. The disk
// check is mandatory: it guards against out-of-band deletion of the file
// underneath an in-memory entry.
func (s *Store) Has(hash string) bool {
	if _, ok := s.known.Load(hash); !ok {
		return false
	}
	return s.pathFor(hash).FileExists()
}

// Ingest verifies that bytes hashes to hash (BLAKE3) and, if so, persists it
// under tarDir/<hash>.tar.gz, inserting hash into the known set. Ingest is
// idempotent: if the canonical file already exists the write is skipped, but
// the set insertion still happens.
func (s *Store) Ingest(hash string, r io.Reader) error {
	if err := s.tarDir.MkdirAll(); err != nil {
		return huberr.IOError(err)
	}
	tmp := s.tmpPathFor(hash)
	if err := tmp.EnsureDir(); err != nil {
		return huberr.IOError(err)
	}

	f, err := tmp.OpenFile(os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return huberr.IOError(err)
	}
	hasher := blake3.New()
	if _, err := io.Copy(f, io.TeeReader(r, hasher)); err != nil {
		f.Close()
		tmp.Remove()
		return huberr.IOError(err)
	}
	if err := f.Close(); err != nil {
		tmp.Remove()
		return huberr.IOError(err)
	}

	digest := hex.EncodeToString(hasher.Sum(nil))
	if digest != hash {
		tmp.Remove()
		return huberr.HashNotMatch(hash, digest)
	}

	return s.promote(hash, tmp)
}

// promote atomically renames a verified temp file into its canonical
// location and records hash as known. Concurrent promotions of the same
// hash race harmlessly: both write the same temp name (tmpPathFor is keyed
// only on hash), but since the bytes are byte-identical (same hash) by the
// time either reaches here, either rename winning leaves I1 holding.
func (s *Store) promote(hash string, tmpPath fs.AbsolutePath) error {
	target := s.pathFor(hash)
	if !target.FileExists() {
		if err := target.EnsureDir(); err != nil {
			return huberr.IOError(err)
		}
		if err := tmpPath.Rename(target); err != nil {
			return huberr.IOError(err)
		}
	} else {
		// Already present: the write is a no-op, but the set insertion below
		// still must happen, per the idempotent-ingest contract.
		tmpPath.Remove()
	}
	s.known.Store(hash, struct{}{})
	return nil
}

// Open returns a readable stream of the stored archive for hash.
func (s *Store) Open(hash string) (io.ReadCloser, error) {
	if !s.Has(hash) {
		return nil, huberr.TarNotExist(hash)
	}
	f, err := s.pathFor(hash).Open()
	if err != nil {
		return nil, huberr.TarNotExist(hash)
	}
	return f, nil
}

// Path returns the on-disk path of the stored archive for hash, for callers
// (the bulk download handler) that want to stream it without loading it into
// memory.
func (s *Store) Path(hash string) (fs.AbsolutePath, error) {
	if !s.Has(hash) {
		return "", huberr.TarNotExist(hash)
	}
	return s.pathFor(hash), nil
}
