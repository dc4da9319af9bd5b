package rpcwire

import (
	"context"
	"encoding/hex"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yazhouio/extension-hub/internal/hub"
	"github.com/yazhouio/extension-hub/internal/huberr"
)

// errorInfoDomain names this service in the ErrorInfo details message,
// the way errdetails.ErrorInfo.Domain is conventionally a reverse-DNS-ish
// service identifier.
const errorInfoDomain = "extensionhub.io"

// codeMetadataKey is the ErrorInfo.Metadata key the 4-byte wire code is
// stored under, hex-encoded so it survives as a valid proto3 string.
const codeMetadataKey = "code"

// Empty is the request message for the reserved, argument-less RPCs.
type Empty struct{}

// ExtensionHubServer is the method set the control-plane ServiceDesc
// dispatches to. It is the hand-authored equivalent of what
// protoc-gen-go-grpc would generate from a .proto describing spec.md §8's
// RPC surface; Server below adapts a *hub.Hub to satisfy it.
type ExtensionHubServer interface {
	CheckTar(ctx context.Context, req *hub.CheckTarRequest) (*hub.CheckTarResponse, error)
	UploadTar(ctx context.Context, req *hub.UploadTarRequest) (*hub.UploadTarResponse, error)
	DownloadTar(ctx context.Context, req *hub.DownloadTarRequest) (*hub.DownloadTarResponse, error)
	UnTar(ctx context.Context, req *hub.UnTarRequest) (*hub.UnTarResponse, error)
	ReplaceText(ctx context.Context, req *hub.ReplaceTextRequest) (*hub.ReplaceTextResponse, error)
	ClearDir(ctx context.Context, req *Empty) (*hub.ClearDirResponse, error)
	ClearTarDir(ctx context.Context, req *Empty) (*hub.ClearTarDirResponse, error)
}

// UnimplementedExtensionHubServer embeds into a Server implementation so
// that adding a method to ExtensionHubServer later doesn't break existing
// implementations at compile time — mirrors the teacher's
// UnimplementedTurboServer pattern.
type UnimplementedExtensionHubServer struct{}

func (UnimplementedExtensionHubServer) CheckTar(context.Context, *hub.CheckTarRequest) (*hub.CheckTarResponse, error) {
	return nil, huberr.UnsupportedApi("CheckTar")
}
func (UnimplementedExtensionHubServer) UploadTar(context.Context, *hub.UploadTarRequest) (*hub.UploadTarResponse, error) {
	return nil, huberr.UnsupportedApi("UploadTar")
}
func (UnimplementedExtensionHubServer) DownloadTar(context.Context, *hub.DownloadTarRequest) (*hub.DownloadTarResponse, error) {
	return nil, huberr.UnsupportedApi("DownloadTar")
}
func (UnimplementedExtensionHubServer) UnTar(context.Context, *hub.UnTarRequest) (*hub.UnTarResponse, error) {
	return nil, huberr.UnsupportedApi("UnTar")
}
func (UnimplementedExtensionHubServer) ReplaceText(context.Context, *hub.ReplaceTextRequest) (*hub.ReplaceTextResponse, error) {
	return nil, huberr.UnsupportedApi("ReplaceText")
}
func (UnimplementedExtensionHubServer) ClearDir(context.Context, *Empty) (*hub.ClearDirResponse, error) {
	return nil, huberr.UnsupportedApi("ClearDir")
}
func (UnimplementedExtensionHubServer) ClearTarDir(context.Context, *Empty) (*hub.ClearTarDirResponse, error) {
	return nil, huberr.UnsupportedApi("ClearTarDir")
}

// Server adapts a *hub.Hub — which has no opinion about transport — to
// ExtensionHubServer. None of the hub's operations actually block on ctx
// today, but the parameter stays in every method so a future one (a slow
// store backend, say) can start honoring cancellation without a signature
// change up here.
type Server struct {
	UnimplementedExtensionHubServer
	Hub *hub.Hub
}

// NewServer wraps h for registration against a grpc.Server.
func NewServer(h *hub.Hub) *Server {
	return &Server{Hub: h}
}

func (s *Server) CheckTar(_ context.Context, req *hub.CheckTarRequest) (*hub.CheckTarResponse, error) {
	resp, err := s.Hub.CheckTar(*req)
	return &resp, toStatus(err)
}

func (s *Server) UploadTar(_ context.Context, req *hub.UploadTarRequest) (*hub.UploadTarResponse, error) {
	resp, err := s.Hub.UploadTar(*req)
	return &resp, toStatus(err)
}

func (s *Server) DownloadTar(_ context.Context, req *hub.DownloadTarRequest) (*hub.DownloadTarResponse, error) {
	resp, err := s.Hub.DownloadTar(*req)
	return &resp, toStatus(err)
}

func (s *Server) UnTar(_ context.Context, req *hub.UnTarRequest) (*hub.UnTarResponse, error) {
	resp, err := s.Hub.UnTar(*req)
	return &resp, toStatus(err)
}

func (s *Server) ReplaceText(_ context.Context, req *hub.ReplaceTextRequest) (*hub.ReplaceTextResponse, error) {
	resp, err := s.Hub.ReplaceText(*req)
	return &resp, toStatus(err)
}

func (s *Server) ClearDir(context.Context, *Empty) (*hub.ClearDirResponse, error) {
	resp, err := s.Hub.ClearDir()
	return &resp, toStatus(err)
}

func (s *Server) ClearTarDir(context.Context, *Empty) (*hub.ClearTarDirResponse, error) {
	resp, err := s.Hub.ClearTarDir()
	return &resp, toStatus(err)
}

// toStatus translates a *huberr.HubError into a grpc status. spec.md §6
// requires every error response carry both the human-readable message and
// the opaque 4-byte big-endian error code, the latter in a details channel
// separate from the message text — so the message stays human-readable and
// the code rides along as an errdetails.ErrorInfo detail, hex-encoded under
// codeMetadataKey since proto3 string fields must be valid UTF-8. DecodeCode
// is the client-side counterpart that recovers it. nil stays nil.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	hubErr, ok := err.(*huberr.HubError)
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}
	st := status.New(grpcCodeFor(hubErr.Code), hubErr.Message)
	codeBytes := hubErr.Code.Bytes()
	withDetails, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: "HUB_ERROR_CODE",
		Domain: errorInfoDomain,
		Metadata: map[string]string{
			codeMetadataKey: hex.EncodeToString(codeBytes[:]),
		},
	})
	if detailErr != nil {
		// Details are an enrichment, not load-bearing for the status itself;
		// fall back to the code-less status rather than fail the RPC over it.
		return st.Err()
	}
	return withDetails.Err()
}

// DecodeCode recovers the huberr.Code spec.md §6 requires be carried in a
// gRPC status's details channel. It returns false if err isn't a gRPC
// status, carries no ErrorInfo detail, or that detail's code metadata isn't
// a valid 4-byte hex string.
func DecodeCode(err error) (huberr.Code, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return 0, false
	}
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok {
			continue
		}
		raw, decErr := hex.DecodeString(info.Metadata[codeMetadataKey])
		if decErr != nil || len(raw) != 4 {
			continue
		}
		var b [4]byte
		copy(b[:], raw)
		return huberr.CodeFromBytes(b), true
	}
	return 0, false
}

func grpcCodeFor(code huberr.Code) codes.Code {
	switch code {
	case huberr.CodeTarNotExist, huberr.CodeFileNotExist, huberr.CodeDirNotExist, huberr.CodeResourceNotFound:
		return codes.NotFound
	case huberr.CodeDirHasExist:
		return codes.AlreadyExists
	case huberr.CodeInvalidPath, huberr.CodeHashNotMatch, huberr.CodeConfigureError:
		return codes.InvalidArgument
	case huberr.CodeUnsupportedApi:
		return codes.Unimplemented
	case huberr.CodeProstDecodeError, huberr.CodeProstEncodeError, huberr.CodeMalformedApiResponse, huberr.CodeUnSupportedErrorCode:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// --- hand-authored ServiceDesc, the shape protoc-gen-go-grpc would emit ---

func _ExtensionHub_CheckTar_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(hub.CheckTarRequest)
	if err := dec(in); err != nil {
		return nil, toStatus(huberr.DecodeError(err))
	}
	if interceptor == nil {
		return srv.(ExtensionHubServer).CheckTar(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/extensionhub.ExtensionHub/CheckTar"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ExtensionHubServer).CheckTar(ctx, req.(*hub.CheckTarRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ExtensionHub_UploadTar_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(hub.UploadTarRequest)
	if err := dec(in); err != nil {
		return nil, toStatus(huberr.DecodeError(err))
	}
	if interceptor == nil {
		return srv.(ExtensionHubServer).UploadTar(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/extensionhub.ExtensionHub/UploadTar"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ExtensionHubServer).UploadTar(ctx, req.(*hub.UploadTarRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ExtensionHub_DownloadTar_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(hub.DownloadTarRequest)
	if err := dec(in); err != nil {
		return nil, toStatus(huberr.DecodeError(err))
	}
	if interceptor == nil {
		return srv.(ExtensionHubServer).DownloadTar(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/extensionhub.ExtensionHub/DownloadTar"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ExtensionHubServer).DownloadTar(ctx, req.(*hub.DownloadTarRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ExtensionHub_UnTar_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(hub.UnTarRequest)
	if err := dec(in); err != nil {
		return nil, toStatus(huberr.DecodeError(err))
	}
	if interceptor == nil {
		return srv.(ExtensionHubServer).UnTar(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/extensionhub.ExtensionHub/UnTar"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ExtensionHubServer).UnTar(ctx, req.(*hub.UnTarRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ExtensionHub_ReplaceText_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(hub.ReplaceTextRequest)
	if err := dec(in); err != nil {
		return nil, toStatus(huberr.DecodeError(err))
	}
	if interceptor == nil {
		return srv.(ExtensionHubServer).ReplaceText(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/extensionhub.ExtensionHub/ReplaceText"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ExtensionHubServer).ReplaceText(ctx, req.(*hub.ReplaceTextRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ExtensionHub_ClearDir_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, toStatus(huberr.DecodeError(err))
	}
	if interceptor == nil {
		return srv.(ExtensionHubServer).ClearDir(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/extensionhub.ExtensionHub/ClearDir"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ExtensionHubServer).ClearDir(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _ExtensionHub_ClearTarDir_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, toStatus(huberr.DecodeError(err))
	}
	if interceptor == nil {
		return srv.(ExtensionHubServer).ClearTarDir(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/extensionhub.ExtensionHub/ClearTarDir"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ExtensionHubServer).ClearTarDir(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// ExtensionHub_ServiceDesc is the ServiceDesc a .proto-driven codegen run
// would have produced; grpc.NewServer doesn't care how it was written, only
// that the shape matches.
var ExtensionHub_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "extensionhub.ExtensionHub",
	HandlerType: (*ExtensionHubServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckTar", Handler: _ExtensionHub_CheckTar_Handler},
		{MethodName: "UploadTar", Handler: _ExtensionHub_UploadTar_Handler},
		{MethodName: "DownloadTar", Handler: _ExtensionHub_DownloadTar_Handler},
		{MethodName: "UnTar", Handler: _ExtensionHub_UnTar_Handler},
		{MethodName: "ReplaceText", Handler: _ExtensionHub_ReplaceText_Handler},
		{MethodName: "ClearDir", Handler: _ExtensionHub_ClearDir_Handler},
		{MethodName: "ClearTarDir", Handler: _ExtensionHub_ClearTarDir_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "extensionhub.proto",
}

// RegisterExtensionHubServer registers srv against s, the way
// protoc-gen-go-grpc's generated RegisterXServer function does.
func RegisterExtensionHubServer(s grpc.ServiceRegistrar, srv ExtensionHubServer) {
	s.RegisterService(&ExtensionHub_ServiceDesc, srv)
}
