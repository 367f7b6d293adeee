package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oms/backend/internal/domain/fulfillment"
	"github.com/oms/backend/internal/domain/shared"
)

func TestGormShipmentRepository_FindByShipmentKey(t *testing.T) {
	db := setupTestDB(t)
	orders := NewGormOrderRepository(db)
	shipments := NewGormShipmentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("not found", func(t *testing.T) {
		_, err := shipments.FindByShipmentKey(ctx, tenantID, "O-1", "WH-1")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("found with lines", func(t *testing.T) {
		order := newTestOrder(t, tenantID, "O-1")
		require.NoError(t, orders.Save(ctx, order))

		trackingNumber := "TRK-1"
		shipment := fulfillment.NewShipmentFromOrder(order, "https://mw.example/tracking/E1", &trackingNumber)
		require.NoError(t, shipments.Save(ctx, shipment))

		found, err := shipments.FindByShipmentKey(ctx, tenantID, "O-1", "WH-1")
		require.NoError(t, err)
		assert.Equal(t, shipment.ID, found.ID)
		require.Len(t, found.Lines, 1)
		assert.Equal(t, order.LineItems[0].ID, found.Lines[0].OrderLineItemID)
	})

	t.Run("scoped to warehouse", func(t *testing.T) {
		_, err := shipments.FindByShipmentKey(ctx, tenantID, "O-1", "WH-2")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormShipmentRepository_Save_LinksOrders(t *testing.T) {
	db := setupTestDB(t)
	orders := NewGormOrderRepository(db)
	shipments := NewGormShipmentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	order := newTestOrder(t, tenantID, "O-2")
	require.NoError(t, orders.Save(ctx, order))

	shipment := fulfillment.NewShipmentFromOrder(order, "https://mw.example/tracking/E2", nil)
	require.NoError(t, shipments.Save(ctx, shipment))

	var links int64
	require.NoError(t, db.Table("order_shipments").
		Where("order_id = ? AND shipment_id = ?", order.ID, shipment.ID).
		Count(&links).Error)
	assert.Equal(t, int64(1), links)

	// saving again must not duplicate the link or touch the order
	require.NoError(t, shipments.Save(ctx, shipment))
	require.NoError(t, db.Table("order_shipments").
		Where("order_id = ? AND shipment_id = ?", order.ID, shipment.ID).
		Count(&links).Error)
	assert.Equal(t, int64(1), links)

	found, err := orders.FindByOrderNumber(ctx, tenantID, "O-2")
	require.NoError(t, err)
	assert.Equal(t, "1 Main St, Springfield", found.ShipTo)
}
