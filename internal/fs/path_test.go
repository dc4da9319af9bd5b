package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAndReadWriteFile(t *testing.T) {
	base := UnsafeToAbsolutePath(t.TempDir())
	target := base.Join("a", "b.txt")
	require.NoError(t, target.EnsureDir())
	require.NoError(t, target.WriteFile([]byte("hi"), 0644))

	contents, err := target.ReadFile()
	require.NoError(t, err)
	assert.Equal(t, "hi", string(contents))
	assert.True(t, target.FileExists())
}

func TestRename(t *testing.T) {
	base := UnsafeToAbsolutePath(t.TempDir())
	src := base.Join("src.txt")
	dst := base.Join("dst.txt")
	require.NoError(t, src.WriteFile([]byte("x"), 0644))
	require.NoError(t, src.Rename(dst))
	assert.False(t, src.FileExists())
	assert.True(t, dst.FileExists())
}

func TestIsDirectory(t *testing.T) {
	base := UnsafeToAbsolutePath(t.TempDir())
	assert.True(t, base.IsDirectory())
	file := base.Join("f.txt")
	require.NoError(t, file.WriteFile([]byte("x"), 0644))
	assert.False(t, file.IsDirectory())
}

func TestSymlinkTo(t *testing.T) {
	base := UnsafeToAbsolutePath(t.TempDir())
	target := base.Join("target.txt")
	require.NoError(t, target.WriteFile([]byte("x"), 0644))
	link := base.Join("link.txt")
	require.NoError(t, link.SymlinkTo("target.txt"))

	resolved, err := link.Readlink()
	require.NoError(t, err)
	assert.Equal(t, target.ToString(), resolved.ToString())
}

func TestCheckedToAbsolutePath_RejectsRelative(t *testing.T) {
	_, err := CheckedToAbsolutePath("relative/path")
	require.Error(t, err)
}
