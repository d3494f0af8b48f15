package grpc

import (
	"context"

	"github.com/golang/protobuf/ptypes/empty"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name. Messages are protobuf
// well-known types, so no generated code is needed on either side.
const ServiceName = "catalog.v1.CatalogService"

type CatalogServiceServer interface {
	AddProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProduct(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListProducts(context.Context, *empty.Empty) (*structpb.ListValue, error)
	Purchase(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ApplyDiscount(context.Context, *wrapperspb.DoubleValue) (*structpb.ListValue, error)
	TotalValue(context.Context, *empty.Empty) (*wrapperspb.StringValue, error)
	OutOfStock(context.Context, *empty.Empty) (*structpb.ListValue, error)
	ExportCSV(context.Context, *wrapperspb.StringValue) (*empty.Empty, error)
	ImportCSV(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
}

var CatalogService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary[structpb.Struct]("AddProduct", CatalogServiceServer.AddProduct),
		unary[wrapperspb.StringValue]("GetProduct", CatalogServiceServer.GetProduct),
		unary[empty.Empty]("ListProducts", CatalogServiceServer.ListProducts),
		unary[wrapperspb.StringValue]("Purchase", CatalogServiceServer.Purchase),
		unary[wrapperspb.DoubleValue]("ApplyDiscount", CatalogServiceServer.ApplyDiscount),
		unary[empty.Empty]("TotalValue", CatalogServiceServer.TotalValue),
		unary[empty.Empty]("OutOfStock", CatalogServiceServer.OutOfStock),
		unary[wrapperspb.StringValue]("ExportCSV", CatalogServiceServer.ExportCSV),
		unary[wrapperspb.StringValue]("ImportCSV", CatalogServiceServer.ImportCSV),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/catalog.proto",
}

func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&CatalogService_ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary builds the method descriptor for one RPC: decode into a fresh Req,
// then call through the interceptor chain if one is installed.
func unary[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](method string, call func(CatalogServiceServer, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(CatalogServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(s, ctx, req.(PReq))
			})
		},
	}
}

type CatalogServiceClient interface {
	AddProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetProduct(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListProducts(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	Purchase(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	ApplyDiscount(ctx context.Context, in *wrapperspb.DoubleValue, opts ...grpc.CallOption) (*structpb.ListValue, error)
	TotalValue(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	OutOfStock(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	ExportCSV(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*empty.Empty, error)
	ImportCSV(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

type catalogServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogServiceClient(cc grpc.ClientConnInterface) CatalogServiceClient {
	return &catalogServiceClient{cc: cc}
}

func invoke[Resp any, PResp interface {
	*Resp
	proto.Message
}](ctx context.Context, cc grpc.ClientConnInterface, method string, in proto.Message, opts []grpc.CallOption) (PResp, error) {
	out := PResp(new(Resp))
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *catalogServiceClient) AddProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "AddProduct", in, opts)
}

func (c *catalogServiceClient) GetProduct(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "GetProduct", in, opts)
}

func (c *catalogServiceClient) ListProducts(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, "ListProducts", in, opts)
}

func (c *catalogServiceClient) Purchase(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "Purchase", in, opts)
}

func (c *catalogServiceClient) ApplyDiscount(ctx context.Context, in *wrapperspb.DoubleValue, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, "ApplyDiscount", in, opts)
}

func (c *catalogServiceClient) TotalValue(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, "TotalValue", in, opts)
}

func (c *catalogServiceClient) OutOfStock(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, "OutOfStock", in, opts)
}

func (c *catalogServiceClient) ExportCSV(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*empty.Empty, error) {
	return invoke[empty.Empty](ctx, c.cc, "ExportCSV", in, opts)
}

func (c *catalogServiceClient) ImportCSV(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, "ImportCSV", in, opts)
}
