package identity

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/oms/backend/internal/domain/shared"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended"
)

// SettingSecretToken is the settings key holding the middleware API token.
const SettingSecretToken = "secretToken"

// Tenant represents a customer account. Orders, shipments and middleware
// credentials are isolated per tenant.
type Tenant struct {
	shared.BaseEntity
	Code     string       `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string       `gorm:"type:varchar(200);not null"`
	Status   TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Settings string       `gorm:"type:text"` // JSON object of tenant settings
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new active tenant with required fields
func NewTenant(code, name string) (*Tenant, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_CODE", "Tenant code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot be empty")
	}

	return &Tenant{
		BaseEntity: shared.NewBaseEntity(),
		Code:       strings.ToUpper(code),
		Name:       name,
		Status:     TenantStatusActive,
		Settings:   "{}",
	}, nil
}

// IsActive returns true if the tenant may be synchronized
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// Setting returns the value for a settings key, or false if absent or the
// settings blob cannot be parsed.
func (t *Tenant) Setting(key string) (string, bool) {
	if t.Settings == "" {
		return "", false
	}
	var settings map[string]string
	if err := json.Unmarshal([]byte(t.Settings), &settings); err != nil {
		return "", false
	}
	value, ok := settings[key]
	return value, ok
}

// SetSetting stores a settings key, replacing any previous value
func (t *Tenant) SetSetting(key, value string) error {
	settings := map[string]string{}
	if t.Settings != "" {
		if err := json.Unmarshal([]byte(t.Settings), &settings); err != nil {
			return shared.NewDomainError("INVALID_SETTINGS", "Tenant settings are not a valid JSON object")
		}
	}
	settings[key] = value
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	t.Settings = string(raw)
	return nil
}

// SecretToken returns the middleware API token for this tenant
func (t *Tenant) SecretToken() (string, bool) {
	return t.Setting(SettingSecretToken)
}

// TenantRepository defines persistence operations for tenants
type TenantRepository interface {
	FindByCode(ctx context.Context, code string) (*Tenant, error)
	FindAllActive(ctx context.Context) ([]Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}
