package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oms/backend/internal/domain/identity"
	"github.com/oms/backend/internal/domain/shared"
)

// GormTenantRepository implements identity.TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new tenant repository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByCode finds a tenant by its code
func (r *GormTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	var tenant identity.Tenant
	err := dbFromContext(ctx, r.db).Where("code = ?", code).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tenant %s: %w", code, err)
	}
	return &tenant, nil
}

// FindAllActive returns every tenant eligible for synchronization
func (r *GormTenantRepository) FindAllActive(ctx context.Context) ([]identity.Tenant, error) {
	var tenants []identity.Tenant
	err := dbFromContext(ctx, r.db).
		Where("status = ?", identity.TenantStatusActive).
		Order("code").
		Find(&tenants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active tenants: %w", err)
	}
	return tenants, nil
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	if err := dbFromContext(ctx, r.db).Save(tenant).Error; err != nil {
		return fmt.Errorf("failed to save tenant: %w", err)
	}
	return nil
}
