package store

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/yazhouio/extension-hub/internal/fs"
	"github.com/yazhouio/extension-hub/internal/huberr"
)

func hashOf(t *testing.T, data []byte) string {
	t.Helper()
	h := blake3.New()
	_, err := h.Write(data)
	require.NoError(t, err)
	return hex.EncodeToString(h.Sum(nil))
}

func TestIngestAndHas(t *testing.T) {
	dir := fs.UnsafeToAbsolutePath(t.TempDir())
	s := New(dir)

	data := []byte("HELLO\n")
	hash := hashOf(t, data)

	require.False(t, s.Has(hash))

	err := s.Ingest(hash, strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.True(t, s.Has(hash))

	path, err := s.Path(hash)
	require.NoError(t, err)
	assert.True(t, path.FileExists())

	contents, err := path.ReadFile()
	require.NoError(t, err)
	assert.Equal(t, data, contents)
}

func TestIngest_HashMismatch(t *testing.T) {
	dir := fs.UnsafeToAbsolutePath(t.TempDir())
	s := New(dir)

	data := []byte("HELLO\n")
	wrongHash := hashOf(t, []byte("GOODBYE\n"))

	err := s.Ingest(wrongHash, strings.NewReader(string(data)))
	require.Error(t, err)
	var hubErr *huberr.HubError
	require.ErrorAs(t, err, &hubErr)
	assert.Equal(t, huberr.CodeHashNotMatch, hubErr.Code)
	assert.False(t, s.Has(wrongHash))
}

func TestIngest_Idempotent(t *testing.T) {
	dir := fs.UnsafeToAbsolutePath(t.TempDir())
	s := New(dir)

	data := []byte("same bytes twice")
	hash := hashOf(t, data)

	require.NoError(t, s.Ingest(hash, strings.NewReader(string(data))))
	require.NoError(t, s.Ingest(hash, strings.NewReader(string(data))))
	assert.True(t, s.Has(hash))
}

func TestHas_FalseWhenFileDeletedOutOfBand(t *testing.T) {
	dir := fs.UnsafeToAbsolutePath(t.TempDir())
	s := New(dir)

	data := []byte("will be deleted")
	hash := hashOf(t, data)
	require.NoError(t, s.Ingest(hash, strings.NewReader(string(data))))

	path, err := s.Path(hash)
	require.NoError(t, err)
	require.NoError(t, path.Remove())

	assert.False(t, s.Has(hash))
}

func TestOpen_MissingHash(t *testing.T) {
	dir := fs.UnsafeToAbsolutePath(t.TempDir())
	s := New(dir)

	_, err := s.Open("0000000000000000000000000000000000000000000000000000000000000000")
	require.Error(t, err)
	var hubErr *huberr.HubError
	require.ErrorAs(t, err, &hubErr)
	assert.Equal(t, huberr.CodeTarNotExist, hubErr.Code)
}
