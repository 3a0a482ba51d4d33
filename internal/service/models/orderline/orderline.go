package orderline

import (
	"github.com/shopspring/decimal"
)

// OrderLine is a frozen snapshot of one menu item within a placed order.
type OrderLine struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"orderId"`
	MenuItemID int64           `json:"menuItem"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Price      decimal.Decimal `json:"price"`
}
