package tracking

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/oms/backend/internal/domain/fulfillment"
	"github.com/oms/backend/internal/domain/identity"
	"github.com/oms/backend/internal/domain/shared"
	"github.com/oms/backend/internal/domain/tracking"
)

// timeSlotLayout is the format of the feed's delivery time-of-day values
const timeSlotLayout = "15:04:05"

// Event codes that make an expedition eligible for shipment creation
const (
	eventCodeShipped   = "shipped"
	eventCodeDelivered = "delivered"
)

// processEvent resolves one event against the feed and reconciles the result
// into the local order. The whole reconciliation commits atomically; an error
// leaves the order untouched. Events without a resolvable expedition or a
// matching local order are skipped without error.
//
// It returns the fulfillment messages produced by this event and whether a
// shipment was created.
func (s *SyncService) processEvent(ctx context.Context, tenant *identity.Tenant, creds tracking.Credentials, event tracking.Event) ([]fulfillment.CreateFulfillment, bool, error) {
	expedition, err := s.feed.FetchExpedition(ctx, creds, event.Reference)
	if err != nil {
		return nil, false, err
	}
	if expedition.ID == "" {
		return nil, false, nil
	}

	var messages []fulfillment.CreateFulfillment
	created := false
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.FindByOrderNumber(ctx, tenant.ID, expedition.OrderNumber)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}

		status, err := s.resolveStatus(ctx, expedition.TrackingStatus)
		if err != nil {
			return err
		}
		carrier, err := s.resolveCarrier(ctx, expedition.Carrier)
		if err != nil {
			return err
		}

		info := expedition.TrackingInformation
		trackingURL := s.endpoint + "/tracking/" + expedition.ID
		order.ApplyTracking(carrier, status, trackingURL, info.CarrierTrackingURL, info.TrackingNumber)
		applyDeliverySlot(order, expedition.DeliverySlot)

		created, err = s.ensureShipment(ctx, order, event.Code, trackingURL, info.TrackingNumber)
		if err != nil {
			return err
		}

		if err := s.orders.Save(ctx, order); err != nil {
			return err
		}

		if created && order.FulfillmentStatus != fulfillment.FulfillmentStatusFulfilled {
			messages = append(messages, fulfillment.NewCreateFulfillment(order))
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return messages, created, nil
}

// resolveStatus looks up a transportation status by code. An unknown code maps
// to nil, which clears the order's status.
func (s *SyncService) resolveStatus(ctx context.Context, code string) (*fulfillment.TransportationStatus, error) {
	if code == "" {
		return nil, nil
	}
	status, err := s.statuses.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return status, nil
}

// resolveCarrier looks up a carrier by code. An absent or unknown code maps to
// nil, which clears the order's carrier.
func (s *SyncService) resolveCarrier(ctx context.Context, code *string) (*fulfillment.Carrier, error) {
	if code == nil || *code == "" {
		return nil, nil
	}
	carrier, err := s.carriers.FindByCode(ctx, *code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return carrier, nil
}

// ensureShipment creates a shipment for the order unless one already exists
// for its (shipment number, ship-from warehouse) key. Only shipped and
// delivered events create shipments. Returns whether a shipment was created.
func (s *SyncService) ensureShipment(ctx context.Context, order *fulfillment.Order, eventCode, trackingURL string, trackingNumber *string) (bool, error) {
	_, err := s.shipments.FindByShipmentKey(ctx, order.TenantID, order.OrderNumber, order.WarehouseCode)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}
	if eventCode != eventCodeShipped && eventCode != eventCodeDelivered {
		return false, nil
	}

	shipment := fulfillment.NewShipmentFromOrder(order, trackingURL, trackingNumber)
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return false, err
	}
	return true, nil
}

// applyDeliverySlot copies the planned delivery window onto the order. Values
// that fail to parse leave the corresponding field unchanged.
func applyDeliverySlot(order *fulfillment.Order, slot tracking.DeliverySlot) {
	if slot.Date != "" {
		if date, err := parseFlexibleDate(slot.Date); err == nil {
			order.SetPlannedDeliveryDate(date)
		}
	}
	if slot.From != "" {
		if from, err := time.Parse(timeSlotLayout, slot.From); err == nil {
			order.SetDeliveryTimeSlotAfter(from)
		}
	}
	if slot.To != "" {
		if to, err := time.Parse(timeSlotLayout, slot.To); err == nil {
			order.SetDeliveryTimeSlotBefore(to)
		}
	}
}

// parseFlexibleDate parses the feed's date values, which are either a Unix
// timestamp or an ISO-8601 string.
func parseFlexibleDate(value string) (time.Time, error) {
	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(epoch, 0).UTC(), nil
	}
	return time.Parse(time.RFC3339, value)
}
