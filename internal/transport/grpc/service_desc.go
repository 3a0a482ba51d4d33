package grpctransport

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const orderServiceName = "littlelemon.v1.OrderService"

// Full method names of littlelemon.v1.OrderService.
const (
	ListOrdersMethod  = "/" + orderServiceName + "/ListOrders"
	GetOrderMethod    = "/" + orderServiceName + "/GetOrder"
	PlaceOrderMethod  = "/" + orderServiceName + "/PlaceOrder"
	UpdateOrderMethod = "/" + orderServiceName + "/UpdateOrder"
)

// OrderServiceServer is the server API. Requests and responses are
// google.protobuf.Struct documents shaped like the REST bodies.
type OrderServiceServer interface {
	ListOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	PlaceOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(srv OrderServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(OrderServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(OrderServiceServer), ctx, req.(*structpb.Struct))
		}

		return interceptor(ctx, in, info, handler)
	}
}

// OrderServiceDesc describes littlelemon.v1.OrderService for grpc.Server.RegisterService.
var OrderServiceDesc = grpc.ServiceDesc{
	ServiceName: orderServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListOrders",
			Handler:    unaryHandler(ListOrdersMethod, OrderServiceServer.ListOrders),
		},
		{
			MethodName: "GetOrder",
			Handler:    unaryHandler(GetOrderMethod, OrderServiceServer.GetOrder),
		},
		{
			MethodName: "PlaceOrder",
			Handler:    unaryHandler(PlaceOrderMethod, OrderServiceServer.PlaceOrder),
		},
		{
			MethodName: "UpdateOrder",
			Handler:    unaryHandler(UpdateOrderMethod, OrderServiceServer.UpdateOrder),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "littlelemon/v1/order_service.proto",
}

// OrderServiceClient calls littlelemon.v1.OrderService.
type OrderServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderServiceClient(cc grpc.ClientConnInterface) *OrderServiceClient {
	return &OrderServiceClient{cc: cc}
}

func (c *OrderServiceClient) invoke(
	ctx context.Context,
	method string,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *OrderServiceClient) ListOrders(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ListOrdersMethod, in, opts...)
}

func (c *OrderServiceClient) GetOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetOrderMethod, in, opts...)
}

func (c *OrderServiceClient) PlaceOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, PlaceOrderMethod, in, opts...)
}

func (c *OrderServiceClient) UpdateOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, UpdateOrderMethod, in, opts...)
}
