package orderevent

import (
	"encoding/json"
	"time"

	"github.com/corray333/littlelemon/internal/service/models/order"
	"github.com/corray333/littlelemon/internal/service/models/outbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types.
const (
	TypePlaced  = "order.placed"
	TypeUpdated = "order.updated"
)

// Event is published whenever an order is placed or changed.
type Event struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	OrderID         int64           `json:"orderId"`
	UserID          int64           `json:"userId"`
	DeliveryAgentID *int64          `json:"deliveryAgentId,omitempty"`
	Status          order.Status    `json:"status"`
	Total           decimal.Decimal `json:"total"`
	Lines           int             `json:"lines"`
	OccurredAt      time.Time       `json:"occurredAt"`
}

// New builds an event of the given type for o.
func New(eventType string, o order.Order, now time.Time) Event {
	return Event{
		ID:              uuid.NewString(),
		Type:            eventType,
		OrderID:         o.ID,
		UserID:          o.UserID,
		DeliveryAgentID: o.DeliveryAgentID,
		Status:          o.Status,
		Total:           o.Total,
		Lines:           len(o.Lines),
		OccurredAt:      now,
	}
}

// Routing tells where order events are published. The routing key is the event type.
type Routing struct {
	Exchange   string
	MaxRetries int
}

// ToOutbox wraps e into an outbox message ready to be stored.
func (e Event) ToOutbox(r Routing) (outbox.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return outbox.Message{}, err
	}

	return outbox.Message{
		MessageID:     e.ID,
		Exchange:      r.Exchange,
		RoutingKey:    e.Type,
		Payload:       payload,
		ContentType:   "application/json",
		CreatedAt:     e.OccurredAt,
		UpdatedAt:     e.OccurredAt,
		MaxAttempts:   r.MaxRetries,
		NextAttemptAt: e.OccurredAt,
	}, nil
}
