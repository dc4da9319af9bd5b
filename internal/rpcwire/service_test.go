package rpcwire

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/yazhouio/extension-hub/internal/fs"
	"github.com/yazhouio/extension-hub/internal/hub"
	"github.com/yazhouio/extension-hub/internal/huberr"
	"github.com/yazhouio/extension-hub/internal/store"
	"github.com/yazhouio/extension-hub/internal/tokens"
)

func dialInProcess(t *testing.T) (ExtensionHubClient, func()) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)

	base := fs.UnsafeToAbsolutePath(t.TempDir())
	tarDir := fs.UnsafeToAbsolutePath(t.TempDir())
	h := hub.New(base, store.New(tarDir), tokens.New(30*time.Second, 30*time.Minute), nil, nil)

	srv := grpc.NewServer()
	RegisterExtensionHubServer(srv, NewServer(h))
	go srv.Serve(lis)

	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	)
	require.NoError(t, err)

	client := NewExtensionHubClient(conn)
	return client, func() { conn.Close(); srv.Stop() }
}

func TestCheckTar_OverGRPC_ReturnsNotFound(t *testing.T) {
	client, closeFn := dialInProcess(t)
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.CheckTar(ctx, &hub.CheckTarRequest{TarHash: "unknown", FilePath: "plug"})
	require.Error(t, err)
}

func TestCheckTar_OverGRPC_ErrorCodeRoundTrips(t *testing.T) {
	client, closeFn := dialInProcess(t)
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.CheckTar(ctx, &hub.CheckTarRequest{TarHash: "unknown", FilePath: "plug"})
	require.Error(t, err)

	code, ok := DecodeCode(err)
	require.True(t, ok, "expected an ErrorInfo detail carrying the 4-byte code")
	require.Equal(t, huberr.CodeTarNotExist, code)
}

func TestUploadTar_OverGRPC_ReturnsToken(t *testing.T) {
	client, closeFn := dialInProcess(t)
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.UploadTar(ctx, &hub.UploadTarRequest{TarHash: "somehash"})
	require.NoError(t, err)
	require.Len(t, resp.UploadURL, 64)
}

func TestClearDir_OverGRPC_Succeeds(t *testing.T) {
	client, closeFn := dialInProcess(t)
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.ClearDir(ctx, &Empty{})
	require.NoError(t, err)
}
