package rpcwire

import (
	"context"

	"google.golang.org/grpc"

	"github.com/yazhouio/extension-hub/internal/hub"
)

// ExtensionHubClient is the client-side stub protoc-gen-go-grpc would have
// generated alongside ExtensionHubServer.
type ExtensionHubClient interface {
	CheckTar(ctx context.Context, req *hub.CheckTarRequest, opts ...grpc.CallOption) (*hub.CheckTarResponse, error)
	UploadTar(ctx context.Context, req *hub.UploadTarRequest, opts ...grpc.CallOption) (*hub.UploadTarResponse, error)
	DownloadTar(ctx context.Context, req *hub.DownloadTarRequest, opts ...grpc.CallOption) (*hub.DownloadTarResponse, error)
	UnTar(ctx context.Context, req *hub.UnTarRequest, opts ...grpc.CallOption) (*hub.UnTarResponse, error)
	ReplaceText(ctx context.Context, req *hub.ReplaceTextRequest, opts ...grpc.CallOption) (*hub.ReplaceTextResponse, error)
	ClearDir(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*hub.ClearDirResponse, error)
	ClearTarDir(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*hub.ClearTarDirResponse, error)
}

type extensionHubClient struct {
	cc grpc.ClientConnInterface
}

// NewExtensionHubClient wraps a dialed connection (which must negotiate the
// "json" content-subtype this package's codec registers) as an
// ExtensionHubClient.
func NewExtensionHubClient(cc grpc.ClientConnInterface) ExtensionHubClient {
	return &extensionHubClient{cc: cc}
}

func (c *extensionHubClient) CheckTar(ctx context.Context, req *hub.CheckTarRequest, opts ...grpc.CallOption) (*hub.CheckTarResponse, error) {
	out := new(hub.CheckTarResponse)
	if err := c.cc.Invoke(ctx, "/extensionhub.ExtensionHub/CheckTar", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *extensionHubClient) UploadTar(ctx context.Context, req *hub.UploadTarRequest, opts ...grpc.CallOption) (*hub.UploadTarResponse, error) {
	out := new(hub.UploadTarResponse)
	if err := c.cc.Invoke(ctx, "/extensionhub.ExtensionHub/UploadTar", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *extensionHubClient) DownloadTar(ctx context.Context, req *hub.DownloadTarRequest, opts ...grpc.CallOption) (*hub.DownloadTarResponse, error) {
	out := new(hub.DownloadTarResponse)
	if err := c.cc.Invoke(ctx, "/extensionhub.ExtensionHub/DownloadTar", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *extensionHubClient) UnTar(ctx context.Context, req *hub.UnTarRequest, opts ...grpc.CallOption) (*hub.UnTarResponse, error) {
	out := new(hub.UnTarResponse)
	if err := c.cc.Invoke(ctx, "/extensionhub.ExtensionHub/UnTar", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *extensionHubClient) ReplaceText(ctx context.Context, req *hub.ReplaceTextRequest, opts ...grpc.CallOption) (*hub.ReplaceTextResponse, error) {
	out := new(hub.ReplaceTextResponse)
	if err := c.cc.Invoke(ctx, "/extensionhub.ExtensionHub/ReplaceText", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *extensionHubClient) ClearDir(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*hub.ClearDirResponse, error) {
	out := new(hub.ClearDirResponse)
	if err := c.cc.Invoke(ctx, "/extensionhub.ExtensionHub/ClearDir", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *extensionHubClient) ClearTarDir(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*hub.ClearTarDirResponse, error) {
	out := new(hub.ClearTarDirResponse)
	if err := c.cc.Invoke(ctx, "/extensionhub.ExtensionHub/ClearTarDir", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
