// Package treeindex implements C5, the extracted-tree index: for each
// archive hash, remembers which target directories have been materialised
// at least once. Grounded on original_source's item_dir_map
// (DashMap<String, DashSet<String>>).
package treeindex

import "github.com/puzpuzpuz/xsync/v3"

// Index is a concurrent hash -> set-of-target-dir-names map.
type Index struct {
	byHash *xsync.MapOf[string, *xsync.MapOf[string, struct{}]]
}

// New constructs an empty Index.
func New() *Index {
	return &Index{byHash: xsync.NewMapOf[string, *xsync.MapOf[string, struct{}]]()}
}

// Record marks dir as materialised from hash. Idempotent.
func (idx *Index) Record(hash, dir string) {
	dirs, _ := idx.byHash.LoadOrCompute(hash, func() *xsync.MapOf[string, struct{}] {
		return xsync.NewMapOf[string, struct{}]()
	})
	dirs.Store(dir, struct{}{})
}

// Contains reports whether dir has been recorded as extracted from hash.
func (idx *Index) Contains(hash, dir string) bool {
	dirs, ok := idx.byHash.Load(hash)
	if !ok {
		return false
	}
	_, ok = dirs.Load(dir)
	return ok
}
