package grpctransport

import (
	"context"
	"log/slog"

	"github.com/corray333/littlelemon/internal/service/models/order"
	"github.com/corray333/littlelemon/internal/service/models/principal"
	"github.com/corray333/littlelemon/internal/service/models/sortspec"
	"github.com/corray333/littlelemon/internal/service/svcerr"
	"google.golang.org/protobuf/types/known/structpb"
)

// OrderServer implements littlelemon.v1.OrderService.
type OrderServer struct {
	service service
}

// NewOrderServer creates a new OrderServer.
func NewOrderServer(service service) *OrderServer {
	return &OrderServer{
		service: service,
	}
}

func callerFrom(ctx context.Context) (principal.Principal, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return principal.Principal{}, svcerr.Unauthenticated("authentication required")
	}

	return p, nil
}

// ListOrders handles the list orders gRPC request.
func (s *OrderServer) ListOrders(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	p, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(ctx, ListOrdersMethod, err)
	}

	req := listOrdersRequest{}
	if err := fromStruct(in, &req); err != nil {
		return nil, toStatus(ctx, ListOrdersMethod, svcerr.Validation("%v", err))
	}

	keys, err := sortspec.Parse(req.Sort, order.SortFields)
	if err != nil {
		return nil, toStatus(ctx, ListOrdersMethod, err)
	}

	orders, err := s.service.ListOrders(ctx, p, order.ListOrdersModel{
		Sort:     keys,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, toStatus(ctx, ListOrdersMethod, err)
	}

	slog.DebugContext(ctx, "ListOrders completed", "orders_count", len(orders))

	out, err := toStruct(listOrdersResponse{Orders: orders})
	if err != nil {
		return nil, toStatus(ctx, ListOrdersMethod, err)
	}

	return out, nil
}

// GetOrder handles the get order gRPC request.
func (s *OrderServer) GetOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	p, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(ctx, GetOrderMethod, err)
	}

	req := getOrderRequest{}
	if err := fromStruct(in, &req); err != nil {
		return nil, toStatus(ctx, GetOrderMethod, svcerr.Validation("%v", err))
	}

	o, err := s.service.GetOrder(ctx, p, req.ID)
	if err != nil {
		return nil, toStatus(ctx, GetOrderMethod, err)
	}

	out, err := toStruct(orderResponse{Order: o})
	if err != nil {
		return nil, toStatus(ctx, GetOrderMethod, err)
	}

	return out, nil
}

// PlaceOrder handles the checkout gRPC request. The request document is ignored.
func (s *OrderServer) PlaceOrder(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	p, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(ctx, PlaceOrderMethod, err)
	}

	placed, err := s.service.PlaceOrder(ctx, p)
	if err != nil {
		return nil, toStatus(ctx, PlaceOrderMethod, err)
	}

	out, err := toStruct(orderResponse{Order: placed})
	if err != nil {
		return nil, toStatus(ctx, PlaceOrderMethod, err)
	}

	return out, nil
}

// UpdateOrder handles the partial update gRPC request.
func (s *OrderServer) UpdateOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	p, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(ctx, UpdateOrderMethod, err)
	}

	req := updateOrderRequest{}
	if err := fromStruct(in, &req); err != nil {
		return nil, toStatus(ctx, UpdateOrderMethod, svcerr.Validation("%v", err))
	}

	u, err := order.ParseUpdate(req.Fields)
	if err != nil {
		return nil, toStatus(ctx, UpdateOrderMethod, err)
	}

	updated, err := s.service.UpdateOrder(ctx, p, req.ID, u)
	if err != nil {
		return nil, toStatus(ctx, UpdateOrderMethod, err)
	}

	out, err := toStruct(orderResponse{Order: updated})
	if err != nil {
		return nil, toStatus(ctx, UpdateOrderMethod, err)
	}

	return out, nil
}
