// Package identitypb описывает gRPC-сервис accountable.identity.v1.IdentityService.
//
// Сообщения сервиса — стандартные типы protobuf: structpb.Struct для
// учётных данных, сессий и событий, wrapperspb.StringValue для токена
// и emptypb.Empty для пустого ответа.
package identitypb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName — полное имя gRPC-сервиса.
const ServiceName = "accountable.identity.v1.IdentityService"

const (
	methodSignUp       = "/" + ServiceName + "/SignUp"
	methodSignIn       = "/" + ServiceName + "/SignIn"
	methodSignOut      = "/" + ServiceName + "/SignOut"
	methodGetSession   = "/" + ServiceName + "/GetSession"
	methodWatchSession = "/" + ServiceName + "/WatchSession"
)

// IdentityServer — серверная сторона сервиса.
type IdentityServer interface {
	SignUp(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignOut(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	GetSession(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	WatchSession(*wrapperspb.StringValue, grpc.ServerStreamingServer[structpb.Struct]) error
}

// RegisterIdentityServer регистрирует реализацию сервиса на gRPC-сервере.
func RegisterIdentityServer(s grpc.ServiceRegistrar, srv IdentityServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc — дескриптор сервиса.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignUp", Handler: signUpHandler},
		{MethodName: "SignIn", Handler: signInHandler},
		{MethodName: "SignOut", Handler: signOutHandler},
		{MethodName: "GetSession", Handler: getSessionHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchSession", Handler: watchSessionHandler, ServerStreams: true},
	},
	Metadata: "accountable/identity/v1/identity.proto",
}

func unary[Req any, Res any](
	method string,
	call func(IdentityServer, context.Context, *Req) (*Res, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(IdentityServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(IdentityServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	signUpHandler = unary(methodSignUp, func(s IdentityServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
		return s.SignUp(ctx, in)
	})
	signInHandler = unary(methodSignIn, func(s IdentityServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
		return s.SignIn(ctx, in)
	})
	signOutHandler = unary(methodSignOut, func(s IdentityServer, ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
		return s.SignOut(ctx, in)
	})
	getSessionHandler = unary(methodGetSession, func(s IdentityServer, ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
		return s.GetSession(ctx, in)
	})
)

func watchSessionHandler(srv any, stream grpc.ServerStream) error {
	in := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(IdentityServer).WatchSession(in, &grpc.GenericServerStream[wrapperspb.StringValue, structpb.Struct]{ServerStream: stream})
}

// IdentityClient — клиентская сторона сервиса.
type IdentityClient struct {
	cc grpc.ClientConnInterface
}

// NewIdentityClient создаёт клиента поверх соединения.
func NewIdentityClient(cc grpc.ClientConnInterface) *IdentityClient {
	return &IdentityClient{cc: cc}
}

func (c *IdentityClient) SignUp(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodSignUp, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IdentityClient) SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodSignIn, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IdentityClient) SignOut(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, methodSignOut, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IdentityClient) GetSession(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetSession, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// WatchSession открывает серверный поток событий сессии.
func (c *IdentityClient) WatchSession(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], methodWatchSession, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[wrapperspb.StringValue, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
