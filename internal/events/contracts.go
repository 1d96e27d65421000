package events

import (
	"time"

	"beecommerce/internal/domain"

	"github.com/google/uuid"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

// Event is the envelope stored in the outbox and published as-is.
type Event struct {
	EventID   string         `json:"event_id"`
	Type      string         `json:"type"`
	OrderID   string         `json:"order_id"`
	CreatedAt time.Time      `json:"created_at"`
	Payload   map[string]any `json:"payload"`
}

func New(eventType, orderID string, payload map[string]any) Event {
	return Event{
		EventID:   uuid.NewString(),
		Type:      eventType,
		OrderID:   orderID,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}
}

// Line is one order item as carried in order.created.
type Line struct {
	ProductID string       `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Price     domain.Money `json:"price"`
}
