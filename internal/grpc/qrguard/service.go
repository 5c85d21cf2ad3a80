package qrguard

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "qrguard.v1.QRGuard"

const (
	methodAssess       = "/" + ServiceName + "/Assess"
	methodScan         = "/" + ServiceName + "/Scan"
	methodParsePayload = "/" + ServiceName + "/ParsePayload"
)

// QRGuardServer is the server API for the QRGuard service.
// Requests carry the raw string; responses are the JSON form of the result.
type QRGuardServer interface {
	Assess(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Scan(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ParsePayload(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ServiceDesc describes the QRGuard service using well-known message types
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*QRGuardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Assess", Handler: unaryHandler(methodAssess, QRGuardServer.Assess)},
		{MethodName: "Scan", Handler: unaryHandler(methodScan, QRGuardServer.Scan)},
		{MethodName: "ParsePayload", Handler: unaryHandler(methodParsePayload, QRGuardServer.ParsePayload)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "qrguard/v1/qrguard.proto",
}

// RegisterQRGuardServer registers srv on s
func RegisterQRGuardServer(s grpc.ServiceRegistrar, srv QRGuardServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type unaryMethod func(QRGuardServer, context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(wrapperspb.StringValue)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(QRGuardServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(QRGuardServer), ctx, req.(*wrapperspb.StringValue))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client is a client for the QRGuard service
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a client on an established connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Assess calls QRGuard.Assess
func (c *Client) Assess(ctx context.Context, raw string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodAssess, raw, opts...)
}

// Scan calls QRGuard.Scan
func (c *Client) Scan(ctx context.Context, content string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodScan, content, opts...)
}

// ParsePayload calls QRGuard.ParsePayload
func (c *Client) ParsePayload(ctx context.Context, content string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodParsePayload, content, opts...)
}

func (c *Client) invoke(ctx context.Context, method, value string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, wrapperspb.String(value), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
