package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oms/backend/internal/domain/fulfillment"
	"github.com/oms/backend/internal/domain/shared"
)

// GormCarrierRepository implements fulfillment.CarrierRepository using GORM
type GormCarrierRepository struct {
	db *gorm.DB
}

// NewGormCarrierRepository creates a new carrier repository
func NewGormCarrierRepository(db *gorm.DB) *GormCarrierRepository {
	return &GormCarrierRepository{db: db}
}

// FindByCode finds a carrier by its code
func (r *GormCarrierRepository) FindByCode(ctx context.Context, code string) (*fulfillment.Carrier, error) {
	var carrier fulfillment.Carrier
	err := dbFromContext(ctx, r.db).Where("code = ?", code).First(&carrier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find carrier %s: %w", code, err)
	}
	return &carrier, nil
}

// GormTransportationStatusRepository implements
// fulfillment.TransportationStatusRepository using GORM
type GormTransportationStatusRepository struct {
	db *gorm.DB
}

// NewGormTransportationStatusRepository creates a new transportation status repository
func NewGormTransportationStatusRepository(db *gorm.DB) *GormTransportationStatusRepository {
	return &GormTransportationStatusRepository{db: db}
}

// FindByCode finds a transportation status by its code
func (r *GormTransportationStatusRepository) FindByCode(ctx context.Context, code string) (*fulfillment.TransportationStatus, error) {
	var status fulfillment.TransportationStatus
	err := dbFromContext(ctx, r.db).Where("code = ?", code).First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transportation status %s: %w", code, err)
	}
	return &status, nil
}
