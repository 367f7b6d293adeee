package fulfillment

import "github.com/oms/backend/internal/domain/shared"

// Carrier is a reference entity resolved by code. A missing carrier is a
// normal state, never an error.
type Carrier struct {
	shared.BaseEntity
	Code string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (Carrier) TableName() string {
	return "carriers"
}

// TransportationStatus is a reference entity mapping remote tracking-status
// codes to a local status.
type TransportationStatus struct {
	shared.BaseEntity
	Code string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (TransportationStatus) TableName() string {
	return "transportation_statuses"
}
