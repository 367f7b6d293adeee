package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oms/backend/internal/domain/shared"
)

// FulfillmentStatus represents the fulfillment lifecycle stage of an order
type FulfillmentStatus string

const (
	FulfillmentStatusPending   FulfillmentStatus = "PENDING"
	FulfillmentStatusPartial   FulfillmentStatus = "PARTIALLY_FULFILLED"
	FulfillmentStatusFulfilled FulfillmentStatus = "FULFILLED" // terminal
)

// IsValid checks if the status is a valid FulfillmentStatus
func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case FulfillmentStatusPending, FulfillmentStatusPartial, FulfillmentStatusFulfilled:
		return true
	}
	return false
}

// String returns the string representation of FulfillmentStatus
func (s FulfillmentStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses with no further transitions
func (s FulfillmentStatus) IsTerminal() bool {
	return s == FulfillmentStatusFulfilled
}

// OrderLineItem represents a line item in an order. Shipment lines snapshot
// these fields at shipment-creation time.
type OrderLineItem struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductCode       string    `gorm:"type:varchar(100)"`
	QuantityAllocated decimal.Decimal
	OwnerCode         string `gorm:"type:varchar(50)"`
	LotNumber         string `gorm:"type:varchar(100)"`
	Variant           string `gorm:"type:varchar(100)"`
	TotalWeight       decimal.Decimal
	Composite         bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Order represents an order aggregate root. Reconciliation mutates its
// tracking fields from remote expedition data.
type Order struct {
	shared.TenantEntity
	OrderNumber       string `gorm:"type:varchar(50);not null;index:idx_orders_number_tenant"`
	WarehouseCode     string `gorm:"type:varchar(50)"`
	ShipTo            string `gorm:"type:text"`
	Total             decimal.Decimal
	FulfillmentStatus FulfillmentStatus `gorm:"type:varchar(30);not null;default:'PENDING'"`

	ActualCarrierID        *uuid.UUID `gorm:"type:uuid"`
	ActualCarrier          *Carrier
	OrderTrackingURL       *string `gorm:"type:varchar(500)"`
	LastCarrierTrackingURL *string `gorm:"type:varchar(500)"`
	TransportationStatusID *uuid.UUID `gorm:"type:uuid"`
	TransportationStatus   *TransportationStatus
	TrackingNumber         *string `gorm:"type:varchar(100)"`

	PlannedDeliveryDate    *time.Time
	DeliveryTimeSlotAfter  *time.Time
	DeliveryTimeSlotBefore *time.Time

	LineItems []OrderLineItem `gorm:"foreignKey:OrderID"`
	Shipments []Shipment      `gorm:"many2many:order_shipments"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order with a pending fulfillment status
func NewOrder(tenantID uuid.UUID, orderNumber, warehouseCode string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	return &Order{
		TenantEntity:      shared.NewTenantEntity(tenantID),
		OrderNumber:       orderNumber,
		WarehouseCode:     warehouseCode,
		Total:             decimal.Zero,
		FulfillmentStatus: FulfillmentStatusPending,
	}, nil
}

// AddLineItem appends a line item to the order
func (o *Order) AddLineItem(item OrderLineItem) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.OrderID = o.ID
	o.LineItems = append(o.LineItems, item)
	o.UpdatedAt = time.Now()
}

// ApplyTracking overwrites the order's tracking fields from remote data.
// Nil carrier and status are valid: the corresponding fields are cleared, not
// left untouched.
func (o *Order) ApplyTracking(carrier *Carrier, status *TransportationStatus, orderTrackingURL string, carrierTrackingURL, trackingNumber *string) {
	o.ActualCarrier = carrier
	o.ActualCarrierID = nil
	if carrier != nil {
		o.ActualCarrierID = &carrier.ID
	}
	o.TransportationStatus = status
	o.TransportationStatusID = nil
	if status != nil {
		o.TransportationStatusID = &status.ID
	}
	o.OrderTrackingURL = &orderTrackingURL
	o.LastCarrierTrackingURL = carrierTrackingURL
	o.TrackingNumber = trackingNumber
	o.UpdatedAt = time.Now()
}

// SetPlannedDeliveryDate sets the planned delivery date
func (o *Order) SetPlannedDeliveryDate(date time.Time) {
	o.PlannedDeliveryDate = &date
	o.UpdatedAt = time.Now()
}

// SetDeliveryTimeSlotAfter sets the lower bound of the delivery time slot
func (o *Order) SetDeliveryTimeSlotAfter(slot time.Time) {
	o.DeliveryTimeSlotAfter = &slot
	o.UpdatedAt = time.Now()
}

// SetDeliveryTimeSlotBefore sets the upper bound of the delivery time slot
func (o *Order) SetDeliveryTimeSlotBefore(slot time.Time) {
	o.DeliveryTimeSlotBefore = &slot
	o.UpdatedAt = time.Now()
}

// AddShipment links a shipment to the order
func (o *Order) AddShipment(shipment *Shipment) {
	o.Shipments = append(o.Shipments, *shipment)
	o.UpdatedAt = time.Now()
}
