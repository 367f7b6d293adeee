// Package tracking contains the Tracking bounded context: the port to the
// logistics middleware's event feed and the value objects it produces.
//
// Design Pattern: Ports & Adapters
//   - The Feed port is defined here in the domain layer
//   - The CMT HTTP adapter is in the infrastructure layer
package tracking

import (
	"context"
	"errors"
	"time"
)

// PageSize is the fixed number of events per feed page
const PageSize = 30

// FilterUpdatedAfter is the feed query key bounding events by update time
const FilterUpdatedAfter = "updatedAt[after]"

// Feed errors. All of them mean "this page or event cannot be resolved now";
// callers isolate the failure and continue.
var (
	ErrFeedUnavailable     = errors.New("tracking: feed temporarily unavailable")
	ErrFeedRequestFailed   = errors.New("tracking: feed request failed")
	ErrFeedInvalidResponse = errors.New("tracking: invalid feed response")
	ErrExpeditionNotFound  = errors.New("tracking: expedition not found")
)

// Event is one entry of the remote event feed
type Event struct {
	// Reference is the expedition ID the event points at
	Reference string
	// Code is the event status code (e.g. "shipped", "delivered")
	Code string
	// CreatedAt is when the event was produced by the middleware
	CreatedAt time.Time
}

// EventPage is one page of the event feed. TotalItems is the remote total at
// the time this page was served and may drift between pages.
type EventPage struct {
	Events     []Event
	TotalItems int
}

// TrackingInformation holds the carrier-side tracking references of an
// expedition. Every field may be absent.
type TrackingInformation struct {
	CarrierTrackingURL *string
	TrackingNumber     *string
	CarrierNumber      *string
	ReceiptNumber      *string
}

// DeliverySlot holds the planned delivery window as raw remote values. Date
// may be an epoch timestamp or an ISO-8601 string; From and To are
// times-of-day. Parsing happens during reconciliation so that malformed
// values can be skipped without failing the fetch.
type DeliverySlot struct {
	Date string
	From string
	To   string
}

// Expedition is the middleware's detailed tracking record for one shipment
// event
type Expedition struct {
	ID                  string
	OrderNumber         string
	Carrier             *string
	TrackingInformation TrackingInformation
	DeliverySlot        DeliverySlot
	TrackingStatus      string
}

// Credentials authenticates feed requests for one tenant
type Credentials struct {
	SecretToken string
}

// Feed is the port to the remote event feed. Implementations perform no
// retries; callers own the retry policy.
type Feed interface {
	// FetchEventsPage fetches one page of events. page starts at 1; filters
	// always include a lower bound on update time. On failure no partial
	// results are returned.
	FetchEventsPage(ctx context.Context, creds Credentials, filters map[string]string, page int) (*EventPage, error)

	// FetchExpedition fetches the tracking detail for one expedition. A
	// missing expedition is reported as ErrExpeditionNotFound.
	FetchExpedition(ctx context.Context, creds Credentials, expeditionID string) (*Expedition, error)
}
