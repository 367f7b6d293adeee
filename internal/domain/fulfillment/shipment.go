package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oms/backend/internal/domain/shared"
)

// ShipmentLine snapshots one order line item at shipment-creation time.
// Lines are immutable once created.
type ShipmentLine struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ShipmentID      uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderLineItemID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity        decimal.Decimal
	OwnerCode       string `gorm:"type:varchar(50)"`
	LotNumber       string `gorm:"type:varchar(100)"`
	Variant         string `gorm:"type:varchar(100)"`
	TotalWeight     decimal.Decimal
	Composite       bool
	CreatedAt       time.Time
}

// Shipment represents a physical shipment for one or more orders. At most one
// shipment exists per (tenant, shipment number, ship-from warehouse).
type Shipment struct {
	shared.TenantEntity
	ShipmentNumber string `gorm:"type:varchar(50);not null;index:idx_shipments_key"`
	ShipFrom       string `gorm:"type:varchar(50);index:idx_shipments_key"`
	ShipTo         string `gorm:"type:text"`
	Total          decimal.Decimal
	TrackingURL    *string    `gorm:"type:varchar(500)"`
	TrackingNumber *string    `gorm:"type:varchar(100)"`
	CarrierID      *uuid.UUID `gorm:"type:uuid"`
	Carrier        *Carrier

	Lines  []ShipmentLine `gorm:"foreignKey:ShipmentID"`
	Orders []Order        `gorm:"many2many:order_shipments"`
}

// TableName returns the table name for GORM
func (Shipment) TableName() string {
	return "shipments"
}

// NewShipmentFromOrder creates a shipment for an order, snapshotting every
// order line item into a shipment line and linking the two aggregates both
// ways.
func NewShipmentFromOrder(order *Order, trackingURL string, trackingNumber *string) *Shipment {
	shipment := &Shipment{
		TenantEntity:   shared.NewTenantEntity(order.TenantID),
		ShipmentNumber: order.OrderNumber,
		ShipFrom:       order.WarehouseCode,
		ShipTo:         order.ShipTo,
		Total:          order.Total,
		TrackingURL:    &trackingURL,
		TrackingNumber: trackingNumber,
	}

	for _, item := range order.LineItems {
		shipment.Lines = append(shipment.Lines, ShipmentLine{
			ID:              uuid.New(),
			ShipmentID:      shipment.ID,
			OrderLineItemID: item.ID,
			Quantity:        item.QuantityAllocated,
			OwnerCode:       item.OwnerCode,
			LotNumber:       item.LotNumber,
			Variant:         item.Variant,
			TotalWeight:     item.TotalWeight,
			Composite:       item.Composite,
			CreatedAt:       time.Now(),
		})
	}

	shipment.Orders = append(shipment.Orders, *order)
	order.AddShipment(shipment)

	return shipment
}
