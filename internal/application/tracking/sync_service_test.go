package tracking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oms/backend/internal/domain/fulfillment"
	"github.com/oms/backend/internal/domain/identity"
	"github.com/oms/backend/internal/domain/shared"
	"github.com/oms/backend/internal/domain/tracking"
)

const testEndpoint = "https://mw.example"

type syncFixture struct {
	feed       *mockFeed
	tenants    *mockTenantRepository
	orders     *mockOrderRepository
	shipments  *mockShipmentRepository
	carriers   *mockCarrierRepository
	statuses   *mockStatusRepository
	dispatcher *mockDispatcher
	service    *SyncService
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	f := &syncFixture{
		feed:       &mockFeed{},
		tenants:    &mockTenantRepository{},
		orders:     &mockOrderRepository{},
		shipments:  &mockShipmentRepository{},
		carriers:   &mockCarrierRepository{},
		statuses:   &mockStatusRepository{},
		dispatcher: &mockDispatcher{},
	}
	f.service = NewSyncService(SyncServiceConfig{
		Feed:       f.feed,
		Tenants:    f.tenants,
		Orders:     f.orders,
		Shipments:  f.shipments,
		Carriers:   f.carriers,
		Statuses:   f.statuses,
		Dispatcher: f.dispatcher,
		Tx:         stubTxManager{},
		Endpoint:   testEndpoint,
		Lookback:   15 * time.Minute,
		Logger:     zap.NewNop(),
	})
	return f
}

func newActiveTenant(t *testing.T, code, token string) *identity.Tenant {
	t.Helper()

	tenant, err := identity.NewTenant(code, code+" Corp")
	require.NoError(t, err)
	if token != "" {
		require.NoError(t, tenant.SetSetting(identity.SettingSecretToken, token))
	}
	return tenant
}

func newPendingOrder(t *testing.T, tenant *identity.Tenant, orderNumber string) *fulfillment.Order {
	t.Helper()

	order, err := fulfillment.NewOrder(tenant.ID, orderNumber, "WH-1")
	require.NoError(t, err)
	order.AddLineItem(fulfillment.OrderLineItem{ProductCode: "SKU-1"})
	return order
}

func eventPage(total int, events ...tracking.Event) *tracking.EventPage {
	return &tracking.EventPage{Events: events, TotalItems: total}
}

func strPtr(s string) *string { return &s }

func TestSyncService_Sync_EndToEnd(t *testing.T) {
	f := newSyncFixture(t)
	tenant := newActiveTenant(t, "acme", "tok-acme")
	order := newPendingOrder(t, tenant, "O1")
	creds := tracking.Credentials{SecretToken: "tok-acme"}
	triggeredAt := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

	f.tenants.On("FindAllActive", mock.Anything).Return([]identity.Tenant{*tenant}, nil)
	f.feed.On("FetchEventsPage", mock.Anything, creds, mock.MatchedBy(func(filters map[string]string) bool {
		return filters[tracking.FilterUpdatedAfter] == "2026-01-02T11:45:00"
	}), 1).Return(eventPage(1, tracking.Event{Reference: "E1", Code: "shipped"}), nil)

	f.feed.On("FetchExpedition", mock.Anything, creds, "E1").Return(&tracking.Expedition{
		ID:          "E1",
		OrderNumber: "O1",
		Carrier:     strPtr("dhl"),
		TrackingInformation: tracking.TrackingInformation{
			CarrierTrackingURL: strPtr("https://dhl.example/TRK-1"),
			TrackingNumber:     strPtr("TRK-1"),
		},
		DeliverySlot:   tracking.DeliverySlot{Date: "1767225600", From: "08:00:00", To: "12:00:00"},
		TrackingStatus: "shipped",
	}, nil)

	carrier := &fulfillment.Carrier{BaseEntity: shared.NewBaseEntity(), Code: "dhl", Name: "DHL"}
	status := &fulfillment.TransportationStatus{BaseEntity: shared.NewBaseEntity(), Code: "shipped", Name: "Shipped"}
	f.orders.On("FindByOrderNumber", mock.Anything, tenant.ID, "O1").Return(order, nil)
	f.statuses.On("FindByCode", mock.Anything, "shipped").Return(status, nil)
	f.carriers.On("FindByCode", mock.Anything, "dhl").Return(carrier, nil)
	f.shipments.On("FindByShipmentKey", mock.Anything, tenant.ID, "O1", "WH-1").Return(nil, shared.ErrNotFound)

	var savedShipment *fulfillment.Shipment
	f.shipments.On("Save", mock.Anything, mock.AnythingOfType("*fulfillment.Shipment")).
		Run(func(args mock.Arguments) { savedShipment = args.Get(1).(*fulfillment.Shipment) }).
		Return(nil)
	f.orders.On("Save", mock.Anything, order).Return(nil)

	var dispatched []fulfillment.CreateFulfillment
	f.dispatcher.On("Dispatch", mock.Anything, mock.AnythingOfType("fulfillment.CreateFulfillment")).
		Run(func(args mock.Arguments) { dispatched = append(dispatched, args.Get(1).(fulfillment.CreateFulfillment)) }).
		Return(nil)

	result, err := f.service.Sync(context.Background(), SyncRequest{TriggeredAt: triggeredAt})
	require.NoError(t, err)

	require.Len(t, result.Tenants, 1)
	tr := result.Tenants[0]
	assert.Equal(t, "ACME", tr.TenantCode)
	assert.Equal(t, 1, tr.PagesFetched)
	assert.Equal(t, 1, tr.EventsProcessed)
	assert.Equal(t, 1, tr.ShipmentsCreated)
	assert.Equal(t, 1, tr.MessagesDispatched)

	// tracking fields reconciled onto the order
	require.NotNil(t, order.OrderTrackingURL)
	assert.Equal(t, testEndpoint+"/tracking/E1", *order.OrderTrackingURL)
	require.NotNil(t, order.LastCarrierTrackingURL)
	assert.Equal(t, "https://dhl.example/TRK-1", *order.LastCarrierTrackingURL)
	require.NotNil(t, order.TrackingNumber)
	assert.Equal(t, "TRK-1", *order.TrackingNumber)
	require.NotNil(t, order.ActualCarrierID)
	assert.Equal(t, carrier.ID, *order.ActualCarrierID)
	require.NotNil(t, order.TransportationStatusID)
	assert.Equal(t, status.ID, *order.TransportationStatusID)

	// delivery slot parsed from epoch and time-of-day values
	require.NotNil(t, order.PlannedDeliveryDate)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *order.PlannedDeliveryDate)
	require.NotNil(t, order.DeliveryTimeSlotAfter)
	assert.Equal(t, "08:00:00", order.DeliveryTimeSlotAfter.Format("15:04:05"))
	require.NotNil(t, order.DeliveryTimeSlotBefore)
	assert.Equal(t, "12:00:00", order.DeliveryTimeSlotBefore.Format("15:04:05"))

	// shipment snapshots the order
	require.NotNil(t, savedShipment)
	assert.Equal(t, "O1", savedShipment.ShipmentNumber)
	assert.Equal(t, "WH-1", savedShipment.ShipFrom)
	require.NotNil(t, savedShipment.TrackingURL)
	assert.Equal(t, testEndpoint+"/tracking/E1", *savedShipment.TrackingURL)
	require.Len(t, savedShipment.Lines, 1)

	// message released after the feed was drained
	require.Len(t, dispatched, 1)
	assert.Equal(t, order.ID, dispatched[0].OrderID)
	assert.Equal(t, []string{"O1"}, dispatched[0].OrderNumbers)
}

func TestSyncService_Sync_PaginatesUntilTotal(t *testing.T) {
	f := newSyncFixture(t)
	tenant := newActiveTenant(t, "acme", "tok")
	creds := tracking.Credentials{SecretToken: "tok"}
	f.tenants.On("FindAllActive", mock.Anything).Return([]identity.Tenant{*tenant}, nil)

	makeEvents := func(start, n int) []tracking.Event {
		events := make([]tracking.Event, n)
		for i := range events {
			events[i] = tracking.Event{Reference: fmt.Sprintf("E%d", start+i), Code: "created"}
		}
		return events
	}
	f.feed.On("FetchEventsPage", mock.Anything, creds, mock.Anything, 1).Return(eventPage(65, makeEvents(0, 30)...), nil)
	f.feed.On("FetchEventsPage", mock.Anything, creds, mock.Anything, 2).Return(eventPage(65, makeEvents(30, 30)...), nil)
	f.feed.On("FetchEventsPage", mock.Anything, creds, mock.Anything, 3).Return(eventPage(65, makeEvents(60, 5)...), nil)

	// every expedition resolves, but no local order matches
	f.feed.On("FetchExpedition", mock.Anything, creds, mock.Anything).Return(&tracking.Expedition{ID: "E", OrderNumber: "O-UNKNOWN"}, nil)
	f.orders.On("FindByOrderNumber", mock.Anything, tenant.ID, "O-UNKNOWN").Return(nil, shared.ErrNotFound)

	result, err := f.service.Sync(context.Background(), SyncRequest{})
	require.NoError(t, err)

	require.Len(t, result.Tenants, 1)
	assert.Equal(t, 3, result.Tenants[0].PagesFetched)
	assert.Equal(t, 65, result.Tenants[0].EventsProcessed)
	f.feed.AssertNumberOfCalls(t, "FetchEventsPage", 3)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestSyncService_Sync_FirstPageFailureEndsRun(t *testing.T) {
	f := newSyncFixture(t)
	tenant := newActiveTenant(t, "acme", "tok")
	f.tenants.On("FindAllActive", mock.Anything).Return([]identity.Tenant{*tenant}, nil)
	f.feed.On("FetchEventsPage", mock.Anything, mock.Anything, mock.Anything, 1).Return(nil, tracking.ErrFeedUnavailable)

	result, err := f.service.Sync(context.Background(), SyncRequest{})
	require.NoError(t, err)

	require.Len(t, result.Tenants, 1)
	assert.Equal(t, 0, result.Tenants[0].PagesFetched)
	assert.Equal(t, 1, result.Tenants[0].PagesFailed)
	f.feed.AssertNumberOfCalls(t, "FetchEventsPage", 1)
	f.feed.AssertNotCalled(t, "FetchExpedition", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncService_Sync_LaterPageFailureStillReleasesMessages(t *testing.T) {
	f := newSyncFixture(t)
	tenant := newActiveTenant(t, "acme", "tok")
	order := newPendingOrder(t, tenant, "O1")
	creds := tracking.Credentials{SecretToken: "tok"}
	f.tenants.On("FindAllActive", mock.Anything).Return([]identity.Tenant{*tenant}, nil)

	// page 1 yields one shippable event, pages 2 and 3 of the announced 65
	// items fail
	f.feed.On("FetchEventsPage", mock.Anything, creds, mock.Anything, 1).
		Return(eventPage(65, tracking.Event{Reference: "E1", Code: "shipped"}), nil)
	f.feed.On("FetchEventsPage", mock.Anything, creds, mock.Anything, 2).Return(nil, tracking.ErrFeedUnavailable)
	f.feed.On("FetchEventsPage", mock.Anything, creds, mock.Anything, 3).Return(nil, tracking.ErrFeedUnavailable)

	f.feed.On("FetchExpedition", mock.Anything, creds, "E1").
		Return(&tracking.Expedition{ID: "E1", OrderNumber: "O1"}, nil)
	f.orders.On("FindByOrderNumber", mock.Anything, tenant.ID, "O1").Return(order, nil)
	f.shipments.On("FindByShipmentKey", mock.Anything, tenant.ID, "O1", "WH-1").Return(nil, shared.ErrNotFound)
	f.shipments.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.orders.On("Save", mock.Anything, order).Return(nil)
	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.Sync(context.Background(), SyncRequest{})
	require.NoError(t, err)

	require.Len(t, result.Tenants, 1)
	assert.Equal(t, 1, result.Tenants[0].PagesFetched)
	assert.Equal(t, 2, result.Tenants[0].PagesFailed)
	assert.Equal(t, 1, result.Tenants[0].MessagesDispatched)
	f.dispatcher.AssertNumberOfCalls(t, "Dispatch", 1)
}

func TestSyncService_Sync_EventFailureIsIsolated(t *testing.T) {
	f := newSyncFixture(t)
	tenant := newActiveTenant(t, "acme", "tok")
	order := newPendingOrder(t, tenant, "O2")
	creds := tracking.Credentials{SecretToken: "tok"}
	f.tenants.On("FindAllActive", mock.Anything).Return([]identity.Tenant{*tenant}, nil)

	f.feed.On("FetchEventsPage", mock.Anything, creds, mock.Anything, 1).Return(eventPage(2,
		tracking.Event{Reference: "E-BAD", Code: "shipped"},
		tracking.Event{Reference: "E-OK", Code: "shipped"},
	), nil)
	f.feed.On("FetchExpedition", mock.Anything, creds, "E-BAD").Return(nil, tracking.ErrFeedRequestFailed)
	f.feed.On("FetchExpedition", mock.Anything, creds, "E-OK").
		Return(&tracking.Expedition{ID: "E-OK", OrderNumber: "O2"}, nil)

	f.orders.On("FindByOrderNumber", mock.Anything, tenant.ID, "O2").Return(order, nil)
	f.shipments.On("FindByShipmentKey", mock.Anything, tenant.ID, "O2", "WH-1").Return(nil, shared.ErrNotFound)
	f.shipments.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.orders.On("Save", mock.Anything, order).Return(nil)
	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.Sync(context.Background(), SyncRequest{})
	require.NoError(t, err)

	require.Len(t, result.Tenants, 1)
	assert.Equal(t, 1, result.Tenants[0].EventsFailed)
	assert.Equal(t, 1, result.Tenants[0].EventsProcessed)
	assert.Equal(t, 1, result.Tenants[0].MessagesDispatched)
}

func TestSyncService_Sync_ExistingShipmentIsNotDuplicated(t *testing.T) {
	f := newSyncFixture(t)
	tenant := newActiveTenant(t, "acme", "tok")
	order := newPendingOrder(t, tenant, "O3")
	creds := tracking.Credentials{SecretToken: "tok"}
	f.tenants.On("FindAllActive", mock.Anything).Return([]identity.Tenant{*tenant}, nil)

	f.feed.On("FetchEventsPage", mock.Anything, creds, mock.Anything, 1).
		Return(eventPage(1, tracking.Event{Reference: "E3", Code: "delivered"}), nil)
	f.feed.On("FetchExpedition", mock.Anything, creds, "E3").
		Return(&tracking.Expedition{ID: "E3", OrderNumber: "O3"}, nil)
	f.orders.On("FindByOrderNumber", mock.Anything, tenant.ID, "O3").Return(order, nil)
	f.shipments.On("FindByShipmentKey", mock.Anything, tenant.ID, "O3", "WH-1").
		Return(&fulfillment.Shipment{ShipmentNumber: "O3", ShipFrom: "WH-1"}, nil)
	f.orders.On("Save", mock.Anything, order).Return(nil)

	result, err := f.service.Sync(context.Background(), SyncRequest{})
	require.NoError(t, err)

	require.Len(t, result.Tenants, 1)
	assert.Equal(t, 0, result.Tenants[0].ShipmentsCreated)
	f.shipments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	// the order's tracking fields are still refreshed
	f.orders.AssertCalled(t, "Save", mock.Anything, order)
}

func TestSyncService_Sync_NonShippingEventCreatesNoShipment(t *testing.T) {
	f := newSyncFixture(t)
	tenant := newActiveTenant(t, "acme", "tok")
	order := newPendingOrder(t, tenant, "O4")
	creds := tracking.Credentials{SecretToken: "tok"}
	f.tenants.On("FindAllActive", mock.Anything).Return([]identity.Tenant{*tenant}, nil)

	f.feed.On("FetchEventsPage", mock.Anything, creds, mock.Anything, 1).
		Return(eventPage(1, tracking.Event{Reference: "E4", Code: "created"}), nil)
	f.feed.On("FetchExpedition", mock.Anything, creds, "E4").
		Return(&tracking.Expedition{ID: "E4", OrderNumber: "O4"}, nil)
	f.orders.On("FindByOrderNumber", mock.Anything, tenant.ID, "O4").Return(order, nil)
	f.shipments.On("FindByShipmentKey", mock.Anything, tenant.ID, "O4", "WH-1").Return(nil, shared.ErrNotFound)
	f.orders.On("Save", mock.Anything, order).Return(nil)

	result, err := f.service.Sync(context.Background(), SyncRequest{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Tenants[0].ShipmentsCreated)
	f.shipments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestSyncService_Sync_FulfilledOrderProducesNoMessage(t *testing.T) {
	f := newSyncFixture(t)
	tenant := newActiveTenant(t, "acme", "tok")
	order := newPendingOrder(t, tenant, "O5")
	order.FulfillmentStatus = fulfillment.FulfillmentStatusFulfilled
	creds := tracking.Credentials{SecretToken: "tok"}
	f.tenants.On("FindAllActive", mock.Anything).Return([]identity.Tenant{*tenant}, nil)

	f.feed.On("FetchEventsPage", mock.Anything, creds, mock.Anything, 1).
		Return(eventPage(1, tracking.Event{Reference: "E5", Code: "shipped"}), nil)
	f.feed.On("FetchExpedition", mock.Anything, creds, "E5").
		Return(&tracking.Expedition{ID: "E5", OrderNumber: "O5"}, nil)
	f.orders.On("FindByOrderNumber", mock.Anything, tenant.ID, "O5").Return(order, nil)
	f.shipments.On("FindByShipmentKey", mock.Anything, tenant.ID, "O5", "WH-1").Return(nil, shared.ErrNotFound)
	f.shipments.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.orders.On("Save", mock.Anything, order).Return(nil)

	result, err := f.service.Sync(context.Background(), SyncRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Tenants[0].ShipmentsCreated)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestSyncService_Sync_EmptyExpeditionIDIsSkipped(t *testing.T) {
	f := newSyncFixture(t)
	tenant := newActiveTenant(t, "acme", "tok")
	creds := tracking.Credentials{SecretToken: "tok"}
	f.tenants.On("FindAllActive", mock.Anything).Return([]identity.Tenant{*tenant}, nil)

	f.feed.On("FetchEventsPage", mock.Anything, creds, mock.Anything, 1).
		Return(eventPage(1, tracking.Event{Reference: "E6", Code: "shipped"}), nil)
	f.feed.On("FetchExpedition", mock.Anything, creds, "E6").
		Return(&tracking.Expedition{OrderNumber: "O6"}, nil)

	result, err := f.service.Sync(context.Background(), SyncRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Tenants[0].EventsProcessed)
	assert.Equal(t, 0, result.Tenants[0].EventsFailed)
	f.orders.AssertNotCalled(t, "FindByOrderNumber", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncService_Sync_TenantWithoutTokenIsSkipped(t *testing.T) {
	f := newSyncFixture(t)
	tenant := newActiveTenant(t, "acme", "")
	f.tenants.On("FindAllActive", mock.Anything).Return([]identity.Tenant{*tenant}, nil)

	result, err := f.service.Sync(context.Background(), SyncRequest{})
	require.NoError(t, err)

	require.Len(t, result.Tenants, 1)
	assert.True(t, result.Tenants[0].Skipped)
	assert.Equal(t, "missing secret token", result.Tenants[0].SkipReason)
	f.feed.AssertNotCalled(t, "FetchEventsPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncService_Sync_ResolvesRequestedTenants(t *testing.T) {
	f := newSyncFixture(t)
	active := newActiveTenant(t, "acme", "")
	idle := newActiveTenant(t, "idle", "tok")
	idle.Status = identity.TenantStatusInactive

	f.tenants.On("FindByCode", mock.Anything, "ACME").Return(active, nil)
	f.tenants.On("FindByCode", mock.Anything, "GHOST").Return(nil, shared.ErrNotFound)
	f.tenants.On("FindByCode", mock.Anything, "IDLE").Return(idle, nil)

	result, err := f.service.Sync(context.Background(), SyncRequest{TenantCodes: []string{"ACME", "GHOST", "IDLE"}})
	require.NoError(t, err)

	// only the existing active tenant is synchronized
	require.Len(t, result.Tenants, 1)
	assert.Equal(t, "ACME", result.Tenants[0].TenantCode)
	f.tenants.AssertNotCalled(t, "FindAllActive", mock.Anything)
}

func TestSyncService_BuildFilters(t *testing.T) {
	f := newSyncFixture(t)
	triggeredAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("default lower bound", func(t *testing.T) {
		filters := f.service.buildFilters(nil, triggeredAt)
		assert.Equal(t, "2026-03-01T09:45:00", filters[tracking.FilterUpdatedAfter])
	})

	t.Run("request filters win on conflict", func(t *testing.T) {
		filters := f.service.buildFilters(map[string]string{
			tracking.FilterUpdatedAfter: "2026-01-01T00:00:00",
			"carrier":                   "dhl",
		}, triggeredAt)
		assert.Equal(t, "2026-01-01T00:00:00", filters[tracking.FilterUpdatedAfter])
		assert.Equal(t, "dhl", filters["carrier"])
	})
}
