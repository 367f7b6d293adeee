// Package tracking implements the shipment tracking synchronization use case:
// polling the middleware event feed per tenant, reconciling expeditions into
// local orders and shipments, and dispatching fulfillment messages.
package tracking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/oms/backend/internal/domain/fulfillment"
	"github.com/oms/backend/internal/domain/identity"
	"github.com/oms/backend/internal/domain/shared"
	"github.com/oms/backend/internal/domain/tracking"
)

// timeFilterLayout is the format the feed expects for time filters
const timeFilterLayout = "2006-01-02T15:04:05"

// SyncRequest parameterizes one synchronization run
type SyncRequest struct {
	// TenantCodes limits the run to specific tenants. Empty means every
	// active tenant.
	TenantCodes []string
	// Filters are merged over the default feed filters; on conflict the
	// request wins.
	Filters map[string]string
	// TriggeredAt anchors the default lower time bound. Zero means now.
	TriggeredAt time.Time
}

// TenantSyncResult reports what happened for one tenant
type TenantSyncResult struct {
	TenantCode         string `json:"tenantCode"`
	Skipped            bool   `json:"skipped"`
	SkipReason         string `json:"skipReason,omitempty"`
	PagesFetched       int    `json:"pagesFetched"`
	PagesFailed        int    `json:"pagesFailed"`
	EventsProcessed    int    `json:"eventsProcessed"`
	EventsFailed       int    `json:"eventsFailed"`
	ShipmentsCreated   int    `json:"shipmentsCreated"`
	MessagesDispatched int    `json:"messagesDispatched"`
}

// SyncResult aggregates the per-tenant results of one run
type SyncResult struct {
	StartedAt time.Time          `json:"startedAt"`
	Duration  time.Duration      `json:"duration"`
	Tenants   []TenantSyncResult `json:"tenants"`
}

// SyncServiceConfig wires the dependencies of the sync service
type SyncServiceConfig struct {
	Feed       tracking.Feed
	Tenants    identity.TenantRepository
	Orders     fulfillment.OrderRepository
	Shipments  fulfillment.ShipmentRepository
	Carriers   fulfillment.CarrierRepository
	Statuses   fulfillment.TransportationStatusRepository
	Dispatcher fulfillment.Dispatcher
	Tx         shared.TxManager
	// Endpoint is the middleware base URL, used to build order tracking URLs
	Endpoint string
	// Lookback is how far back the default update-time filter reaches
	Lookback time.Duration
	Logger   *zap.Logger
}

// SyncService drives shipment tracking synchronization runs
type SyncService struct {
	feed       tracking.Feed
	tenants    identity.TenantRepository
	orders     fulfillment.OrderRepository
	shipments  fulfillment.ShipmentRepository
	carriers   fulfillment.CarrierRepository
	statuses   fulfillment.TransportationStatusRepository
	dispatcher fulfillment.Dispatcher
	tx         shared.TxManager
	endpoint   string
	lookback   time.Duration
	logger     *zap.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	return &SyncService{
		feed:       cfg.Feed,
		tenants:    cfg.Tenants,
		orders:     cfg.Orders,
		shipments:  cfg.Shipments,
		carriers:   cfg.Carriers,
		statuses:   cfg.Statuses,
		dispatcher: cfg.Dispatcher,
		tx:         cfg.Tx,
		endpoint:   cfg.Endpoint,
		lookback:   cfg.Lookback,
		logger:     cfg.Logger.Named("sync"),
	}
}

// Sync runs one synchronization pass over the requested tenants. Tenant
// failures are isolated: one tenant's problems never stop another tenant's
// run. The returned error is non-nil only when the run could not start at all
// or the context was cancelled.
func (s *SyncService) Sync(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	triggeredAt := req.TriggeredAt
	if triggeredAt.IsZero() {
		triggeredAt = time.Now()
	}

	tenants, err := s.resolveTenants(ctx, req.TenantCodes)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{StartedAt: triggeredAt}
	for _, tenant := range tenants {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Tenants = append(result.Tenants, s.syncTenant(ctx, &tenant, req.Filters, triggeredAt))
	}
	result.Duration = time.Since(triggeredAt)
	return result, nil
}

// resolveTenants loads the tenants to synchronize. Unknown or inactive
// requested tenants are reported in the log and dropped.
func (s *SyncService) resolveTenants(ctx context.Context, codes []string) ([]identity.Tenant, error) {
	if len(codes) == 0 {
		return s.tenants.FindAllActive(ctx)
	}

	var tenants []identity.Tenant
	for _, code := range codes {
		tenant, err := s.tenants.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("requested tenant does not exist", zap.String("tenant", code))
				continue
			}
			return nil, err
		}
		if !tenant.IsActive() {
			s.logger.Warn("requested tenant is not active", zap.String("tenant", tenant.Code))
			continue
		}
		tenants = append(tenants, *tenant)
	}
	return tenants, nil
}

// syncTenant drains the event feed for one tenant, reconciles every event and
// releases the accumulated fulfillment messages afterwards. Page and event
// failures are logged and skipped; messages collected before a failure are
// still released.
func (s *SyncService) syncTenant(ctx context.Context, tenant *identity.Tenant, overrides map[string]string, triggeredAt time.Time) TenantSyncResult {
	result := TenantSyncResult{TenantCode: tenant.Code}
	log := s.logger.With(zap.String("tenant", tenant.Code))

	token, ok := tenant.SecretToken()
	if !ok || token == "" {
		log.Warn("tenant has no middleware token configured, skipping")
		result.Skipped = true
		result.SkipReason = "missing secret token"
		return result
	}
	creds := tracking.Credentials{SecretToken: token}
	filters := s.buildFilters(overrides, triggeredAt)

	var messages []fulfillment.CreateFulfillment

	// The remote total is re-read from every successful page, so a feed that
	// grows mid-run extends the loop and one that shrinks ends it early.
	page := 1
	totalItems := 0
	anyPage := false
	for {
		if err := ctx.Err(); err != nil {
			log.Warn("synchronization cancelled", zap.Error(err))
			break
		}

		eventPage, err := s.feed.FetchEventsPage(ctx, creds, filters, page)
		if err != nil {
			log.Warn("failed to fetch event page", zap.Int("page", page), zap.Error(err))
			result.PagesFailed++
			if !anyPage {
				break
			}
		} else {
			anyPage = true
			totalItems = eventPage.TotalItems
			result.PagesFetched++

			for _, event := range eventPage.Events {
				msgs, created, err := s.processEvent(ctx, tenant, creds, event)
				if err != nil {
					log.Warn("failed to process event",
						zap.String("expedition", event.Reference),
						zap.String("code", event.Code),
						zap.Error(err))
					result.EventsFailed++
					continue
				}
				result.EventsProcessed++
				if created {
					result.ShipmentsCreated++
				}
				messages = append(messages, msgs...)
			}
		}

		page++
		if totalItems <= (page-1)*tracking.PageSize {
			break
		}
	}

	for _, msg := range messages {
		if err := s.dispatcher.Dispatch(ctx, msg); err != nil {
			log.Warn("failed to dispatch fulfillment message",
				zap.String("order_id", msg.OrderID.String()),
				zap.Error(err))
			continue
		}
		result.MessagesDispatched++
	}

	log.Info("tenant synchronized",
		zap.Int("pages", result.PagesFetched),
		zap.Int("events", result.EventsProcessed),
		zap.Int("shipments_created", result.ShipmentsCreated),
		zap.Int("messages_dispatched", result.MessagesDispatched))
	return result
}

// buildFilters merges request filters over the default update-time lower
// bound. Request filters win on conflict.
func (s *SyncService) buildFilters(overrides map[string]string, triggeredAt time.Time) map[string]string {
	filters := map[string]string{
		tracking.FilterUpdatedAfter: triggeredAt.Add(-s.lookback).Format(timeFilterLayout),
	}
	for key, value := range overrides {
		filters[key] = value
	}
	return filters
}
