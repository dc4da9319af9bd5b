package replace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yazhouio/extension-hub/internal/fs"
	"github.com/yazhouio/extension-hub/internal/huberr"
)

func TestReplace_OnlyMatchingSuffix(t *testing.T) {
	base := fs.UnsafeToAbsolutePath(t.TempDir())
	require.NoError(t, base.Join("plug").MkdirAll())
	require.NoError(t, base.Join("plug", "a.js").WriteFile([]byte("log(x)"), 0644))
	require.NoError(t, base.Join("plug", "a.txt").WriteFile([]byte("log(x)"), 0644))

	r := New(base, 2)
	err := r.Replace(Request{
		SourceDir: "plug",
		OldText:   "log",
		NewText:   "warn",
		Suffixes:  []string{"js"},
	})
	require.NoError(t, err)

	jsContents, err := base.Join("plug", "a.js").ReadFile()
	require.NoError(t, err)
	assert.Equal(t, "warn(x)", string(jsContents))

	txtContents, err := base.Join("plug", "a.txt").ReadFile()
	require.NoError(t, err)
	assert.Equal(t, "log(x)", string(txtContents))
}

func TestReplace_SkipsFilesWithoutMatch(t *testing.T) {
	base := fs.UnsafeToAbsolutePath(t.TempDir())
	require.NoError(t, base.Join("plug").MkdirAll())
	require.NoError(t, base.Join("plug", "a.js").WriteFile([]byte("nothing to see"), 0644))

	r := New(base, 2)
	err := r.Replace(Request{
		SourceDir: "plug",
		OldText:   "log",
		NewText:   "warn",
		Suffixes:  []string{"js"},
	})
	require.NoError(t, err)

	contents, err := base.Join("plug", "a.js").ReadFile()
	require.NoError(t, err)
	assert.Equal(t, "nothing to see", string(contents))
}

func TestReplace_MissingDir(t *testing.T) {
	base := fs.UnsafeToAbsolutePath(t.TempDir())
	r := New(base, 2)
	err := r.Replace(Request{SourceDir: "nope", OldText: "a", NewText: "b", Suffixes: []string{"txt"}})
	require.Error(t, err)
	var hubErr *huberr.HubError
	require.ErrorAs(t, err, &hubErr)
	assert.Equal(t, huberr.CodeDirNotExist, hubErr.Code)
}

func TestReplace_InvalidTargetDir(t *testing.T) {
	base := fs.UnsafeToAbsolutePath(t.TempDir())
	r := New(base, 2)
	err := r.Replace(Request{SourceDir: "../escape", OldText: "a", NewText: "b", Suffixes: []string{"txt"}})
	require.Error(t, err)
	var hubErr *huberr.HubError
	require.ErrorAs(t, err, &hubErr)
	assert.Equal(t, huberr.CodeInvalidPath, hubErr.Code)
}
