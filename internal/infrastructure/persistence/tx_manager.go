package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// GormTxManager runs units of work inside a database transaction. The
// transaction handle travels in the context so that repositories used inside
// the callback automatically participate in it.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a transaction manager on top of the given connection
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// Transaction executes fn atomically. Any error returned by fn rolls the
// transaction back, otherwise it is committed.
func (m *GormTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFromContext returns the transaction stored in the context, or the fallback
// connection when no transaction is in flight.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
