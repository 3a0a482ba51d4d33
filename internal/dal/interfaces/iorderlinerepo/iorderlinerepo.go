package iorderlinerepo

import (
	"context"

	"github.com/corray333/littlelemon/internal/service/models/orderline"
)

// IOrderLineRepository is an interface for order line storage.
type IOrderLineRepository interface {
	BulkInsert(ctx context.Context, lines []orderline.OrderLine) ([]orderline.OrderLine, error)
	Query(ctx context.Context, filter *orderline.QueryOrderLinesModel) ([]orderline.OrderLine, error)
}
