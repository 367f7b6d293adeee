package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oms/backend/internal/domain/fulfillment"
	"github.com/oms/backend/internal/domain/shared"
)

// GormShipmentRepository implements fulfillment.ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new shipment repository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByShipmentKey finds a shipment by (tenant, shipment number, ship-from
// warehouse) with its lines
func (r *GormShipmentRepository) FindByShipmentKey(ctx context.Context, tenantID uuid.UUID, shipmentNumber, shipFrom string) (*fulfillment.Shipment, error) {
	var shipment fulfillment.Shipment
	err := dbFromContext(ctx, r.db).
		Preload("Lines").
		Where("tenant_id = ? AND shipment_number = ? AND ship_from = ?", tenantID, shipmentNumber, shipFrom).
		First(&shipment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find shipment %s/%s: %w", shipmentNumber, shipFrom, err)
	}
	return &shipment, nil
}

// Save creates or updates a shipment together with its lines and the link rows
// to the orders it fulfills. The orders themselves are not written here.
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *fulfillment.Shipment) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(shipment).Error; err != nil {
			return fmt.Errorf("failed to save shipment: %w", err)
		}
		for i := range shipment.Lines {
			shipment.Lines[i].ShipmentID = shipment.ID
			if err := tx.Omit(clause.Associations).Save(&shipment.Lines[i]).Error; err != nil {
				return fmt.Errorf("failed to save shipment line: %w", err)
			}
		}
		for i := range shipment.Orders {
			link := map[string]any{
				"order_id":    shipment.Orders[i].ID,
				"shipment_id": shipment.ID,
			}
			err := tx.Table("order_shipments").
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(link).Error
			if err != nil {
				return fmt.Errorf("failed to link shipment to order: %w", err)
			}
		}
		return nil
	})
}
