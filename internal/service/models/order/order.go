package order

import (
	"time"

	"github.com/corray333/littlelemon/internal/service/models/orderline"
	"github.com/shopspring/decimal"
)

// Status is the delivery state of an order. Codes only move forward.
type Status int

const (
	StatusPending Status = iota
	StatusOutForDelivery
	StatusDelivered
)

// Valid reports whether s is a known status code.
func (s Status) Valid() bool {
	return s >= StatusPending && s <= StatusDelivered
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusOutForDelivery:
		return "out_for_delivery"
	case StatusDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// Order is a placed order. Total is fixed when the order is created.
type Order struct {
	ID              int64                 `json:"id"`
	UserID          int64                 `json:"user"`
	DeliveryAgentID *int64                `json:"deliveryAgent"`
	Status          Status                `json:"status"`
	Total           decimal.Decimal       `json:"total"`
	Date            time.Time             `json:"date"`
	Lines           []orderline.OrderLine `json:"lines"`
}

// Field names an order attribute a client may try to change.
type Field string

const (
	FieldDeliveryAgent Field = "deliveryAgent"
	FieldStatus        Field = "status"
)

// Update is a partial order update. Fields holds every attribute present in the
// request, including ones the caller may not touch.
type Update struct {
	Fields          []Field
	DeliveryAgentID *int64
	Status          Status
}

// Has reports whether f is present in the update.
func (u Update) Has(f Field) bool {
	for _, field := range u.Fields {
		if field == f {
			return true
		}
	}

	return false
}

// Apply copies the present fields onto o.
func (u Update) Apply(o *Order) {
	if u.Has(FieldDeliveryAgent) {
		o.DeliveryAgentID = u.DeliveryAgentID
	}
	if u.Has(FieldStatus) {
		o.Status = u.Status
	}
}
