package fulfillment

import (
	"context"

	"github.com/google/uuid"
)

// CreateFulfillment signals that an order may now be fulfillable. It is
// produced during reconciliation and handed to the downstream dispatcher;
// delivery is fire-and-forget and at-least-once.
type CreateFulfillment struct {
	OrderID      uuid.UUID `json:"orderId"`
	OrderNumbers []string  `json:"orderNumbers"`
}

// NewCreateFulfillment builds the message for a single order
func NewCreateFulfillment(order *Order) CreateFulfillment {
	return CreateFulfillment{
		OrderID:      order.ID,
		OrderNumbers: []string{order.OrderNumber},
	}
}

// Dispatcher sends CreateFulfillment messages to the downstream consumer.
// No acknowledgment is awaited by callers.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg CreateFulfillment) error
}
