package hub

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/yazhouio/extension-hub/internal/fs"
	"github.com/yazhouio/extension-hub/internal/huberr"
	"github.com/yazhouio/extension-hub/internal/metrics"
	"github.com/yazhouio/extension-hub/internal/store"
	"github.com/yazhouio/extension-hub/internal/tokens"
)

func newHub(t *testing.T) *Hub {
	t.Helper()
	base := fs.UnsafeToAbsolutePath(t.TempDir())
	tarDir := fs.UnsafeToAbsolutePath(t.TempDir())
	s := store.New(tarDir)
	tr := tokens.New(30*time.Second, 30*time.Minute)
	rec := metrics.New(prometheus.NewRegistry())
	return New(base, s, tr, rec, nil)
}

func archiveOf(t *testing.T, entries map[string]string) (data []byte, hash string) {
	t.Helper()
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)
	for name, contents := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name, Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(contents)),
		}))
		_, err := tw.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())

	h := blake3.New()
	_, err := h.Write(buf.Bytes())
	require.NoError(t, err)
	return buf.Bytes(), hex.EncodeToString(h.Sum(nil))
}

func TestCheckTar_UnknownHash(t *testing.T) {
	h := newHub(t)
	_, err := h.CheckTar(CheckTarRequest{TarHash: "deadbeef", FilePath: "plug"})
	require.Error(t, err)
	var hubErr *huberr.HubError
	require.ErrorAs(t, err, &hubErr)
	assert.Equal(t, huberr.CodeTarNotExist, hubErr.Code)
}

func TestCheckTar_AfterUnTar(t *testing.T) {
	h := newHub(t)
	data, hash := archiveOf(t, map[string]string{"a.txt": "hello"})
	require.NoError(t, h.Store().Ingest(hash, bytes.NewReader(data)))

	_, err := h.UnTar(UnTarRequest{TarHash: hash, TargetDir: "plug", Overwrite: true})
	require.NoError(t, err)

	_, err = h.CheckTar(CheckTarRequest{TarHash: hash, FilePath: "plug"})
	require.NoError(t, err)
}

func TestUploadThenDownloadTokenRoundTrip(t *testing.T) {
	h := newHub(t)
	resp, err := h.UploadTar(UploadTarRequest{TarHash: "anyhash"})
	require.NoError(t, err)
	assert.Len(t, resp.UploadURL, 64)

	ticket, err := h.Tokens().TakeUpload(resp.UploadURL)
	require.NoError(t, err)
	assert.Equal(t, "anyhash", ticket.Hash)

	dl, err := h.DownloadTar(DownloadTarRequest{TarHash: "anyhash"})
	require.NoError(t, err)
	assert.Len(t, dl.DownloadURL, 64)
}

func TestUploadTar_WithPostExtractChain(t *testing.T) {
	h := newHub(t)
	resp, err := h.UploadTar(UploadTarRequest{
		TarHash: "anyhash",
		UnTar:   &UnTarRequest{TargetDir: "plug", Overwrite: true},
	})
	require.NoError(t, err)

	ticket, err := h.Tokens().TakeUpload(resp.UploadURL)
	require.NoError(t, err)
	require.NotNil(t, ticket.PostExtract)
	assert.Equal(t, "plug", ticket.PostExtract.TargetDir)
	assert.True(t, ticket.PostExtract.Overwrite)
}

func TestUnTar_PathTraversalRejected(t *testing.T) {
	h := newHub(t)
	data, hash := archiveOf(t, map[string]string{"a.txt": "hello"})
	require.NoError(t, h.Store().Ingest(hash, bytes.NewReader(data)))

	_, err := h.UnTar(UnTarRequest{TarHash: hash, TargetDir: "../escape", Overwrite: true})
	require.Error(t, err)
	var hubErr *huberr.HubError
	require.ErrorAs(t, err, &hubErr)
	assert.Equal(t, huberr.CodeInvalidPath, hubErr.Code)
}

func TestReplaceText(t *testing.T) {
	h := newHub(t)
	base := h.baseDir
	require.NoError(t, base.Join("plug").MkdirAll())
	require.NoError(t, base.Join("plug", "a.js").WriteFile([]byte("log(x)"), 0644))
	require.NoError(t, base.Join("plug", "a.txt").WriteFile([]byte("log(x)"), 0644))

	_, err := h.ReplaceText(ReplaceTextRequest{
		TargetDir: "plug",
		OldText:   "log",
		NewText:   "warn",
		Suffix:    []string{"js"},
	})
	require.NoError(t, err)

	js, err := base.Join("plug", "a.js").ReadFile()
	require.NoError(t, err)
	assert.Equal(t, "warn(x)", string(js))

	txt, err := base.Join("plug", "a.txt").ReadFile()
	require.NoError(t, err)
	assert.Equal(t, "log(x)", string(txt))
}

func TestClearDirAndClearTarDir_AlwaysSucceed(t *testing.T) {
	h := newHub(t)
	_, err := h.ClearDir()
	require.NoError(t, err)
	_, err = h.ClearTarDir()
	require.NoError(t, err)
}
