package fulfillment

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines persistence operations for orders
type OrderRepository interface {
	// FindByOrderNumber finds an order by (order number, tenant).
	// Returns shared.ErrNotFound when no order matches.
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*Order, error)

	// Save creates or updates an order together with its line items
	Save(ctx context.Context, order *Order) error
}

// ShipmentRepository defines persistence operations for shipments
type ShipmentRepository interface {
	// FindByShipmentKey finds a shipment by (tenant, shipment number,
	// ship-from warehouse). Returns shared.ErrNotFound when no shipment
	// matches.
	FindByShipmentKey(ctx context.Context, tenantID uuid.UUID, shipmentNumber, shipFrom string) (*Shipment, error)

	// Save creates or updates a shipment together with its lines and order
	// links
	Save(ctx context.Context, shipment *Shipment) error
}

// CarrierRepository resolves carriers by code
type CarrierRepository interface {
	FindByCode(ctx context.Context, code string) (*Carrier, error)
}

// TransportationStatusRepository resolves transportation statuses by code
type TransportationStatusRepository interface {
	FindByCode(ctx context.Context, code string) (*TransportationStatus, error)
}
