package tracking

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/oms/backend/internal/domain/fulfillment"
	"github.com/oms/backend/internal/domain/identity"
	"github.com/oms/backend/internal/domain/tracking"
)

type mockFeed struct {
	mock.Mock
}

func (m *mockFeed) FetchEventsPage(ctx context.Context, creds tracking.Credentials, filters map[string]string, page int) (*tracking.EventPage, error) {
	args := m.Called(ctx, creds, filters, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.EventPage), args.Error(1)
}

func (m *mockFeed) FetchExpedition(ctx context.Context, creds tracking.Credentials, expeditionID string) (*tracking.Expedition, error) {
	args := m.Called(ctx, creds, expeditionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.Expedition), args.Error(1)
}

type mockTenantRepository struct {
	mock.Mock
}

func (m *mockTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *mockTenantRepository) FindAllActive(ctx context.Context) ([]identity.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *mockTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*fulfillment.Order, error) {
	args := m.Called(ctx, tenantID, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Order), args.Error(1)
}

func (m *mockOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type mockShipmentRepository struct {
	mock.Mock
}

func (m *mockShipmentRepository) FindByShipmentKey(ctx context.Context, tenantID uuid.UUID, shipmentNumber, shipFrom string) (*fulfillment.Shipment, error) {
	args := m.Called(ctx, tenantID, shipmentNumber, shipFrom)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Shipment), args.Error(1)
}

func (m *mockShipmentRepository) Save(ctx context.Context, shipment *fulfillment.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

type mockCarrierRepository struct {
	mock.Mock
}

func (m *mockCarrierRepository) FindByCode(ctx context.Context, code string) (*fulfillment.Carrier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Carrier), args.Error(1)
}

type mockStatusRepository struct {
	mock.Mock
}

func (m *mockStatusRepository) FindByCode(ctx context.Context, code string) (*fulfillment.TransportationStatus, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.TransportationStatus), args.Error(1)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, msg fulfillment.CreateFulfillment) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// stubTxManager runs the unit of work without a real transaction
type stubTxManager struct{}

func (stubTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
