package iorderrepo

import (
	"context"

	"github.com/corray333/littlelemon/internal/service/models/order"
)

// IOrderRepository is an interface for order storage. Lines are stored by IOrderLineRepository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	GetByID(ctx context.Context, id int64, forUpdate bool) (order.Order, error)
	UpdateFields(ctx context.Context, o order.Order) error
}
