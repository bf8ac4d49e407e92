package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "identity.v1.IdentityService"

const (
	RegisterMemberMethod = "/" + ServiceName + "/RegisterMember"
	RegisterTaskerMethod = "/" + ServiceName + "/RegisterTasker"
	LoginMethod          = "/" + ServiceName + "/Login"
	WhoAmIMethod         = "/" + ServiceName + "/WhoAmI"
)

// identityServer is implemented by GRPCServer. Every method exchanges
// google.protobuf.Struct messages keyed by the same camelCase names as the
// HTTP API.
type identityServer interface {
	RegisterMember(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RegisterTasker(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WhoAmI(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*identityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterMember", Handler: unaryHandler(RegisterMemberMethod, identityServer.RegisterMember)},
		{MethodName: "RegisterTasker", Handler: unaryHandler(RegisterTaskerMethod, identityServer.RegisterTasker)},
		{MethodName: "Login", Handler: unaryHandler(LoginMethod, identityServer.Login)},
		{MethodName: "WhoAmI", Handler: unaryHandler(WhoAmIMethod, identityServer.WhoAmI)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "identity/v1/identity.proto",
}

func unaryHandler(fullMethod string, call func(identityServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(identityServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(identityServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
