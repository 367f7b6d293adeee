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

// GormOrderRepository implements fulfillment.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByOrderNumber finds an order by (order number, tenant) with its line items
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*fulfillment.Order, error) {
	var order fulfillment.Order
	err := dbFromContext(ctx, r.db).
		Preload("LineItems").
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order %s: %w", orderNumber, err)
	}
	return &order, nil
}

// Save creates or updates an order together with its line items. Association
// rows to shipments are owned by the shipment repository and left untouched.
func (r *GormOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		for i := range order.LineItems {
			order.LineItems[i].OrderID = order.ID
			if err := tx.Omit(clause.Associations).Save(&order.LineItems[i]).Error; err != nil {
				return fmt.Errorf("failed to save order line item: %w", err)
			}
		}
		return nil
	})
}
