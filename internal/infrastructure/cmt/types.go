package cmt

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/oms/backend/internal/domain/tracking"
)

// flexString decodes a JSON value that may arrive as a string, a number or
// null. The middleware is not consistent about numeric identifiers and
// status codes.
type flexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// eventsResponse is the wire form of one event feed page
type eventsResponse struct {
	Events     []eventPayload `json:"events"`
	TotalItems int            `json:"totalItems"`
}

// eventPayload is the wire form of one feed event
type eventPayload struct {
	Reference flexString `json:"reference"`
	Code      string     `json:"code"`
	CreatedAt string     `json:"createdAt"`
}

// trackingInformationPayload is the wire form of an expedition's carrier
// references
type trackingInformationPayload struct {
	CarrierTrackingURL *string `json:"carrierTrackingUrl"`
	TrackingNumber     *string `json:"trackingNumber"`
	CarrierNumber      *string `json:"carrierNumber"`
	ReceiptNumber      *string `json:"receiptNumber"`
}

// deliverySlotPayload is the wire form of an expedition's delivery window
type deliverySlotPayload struct {
	Date flexString `json:"date"`
	From flexString `json:"from"`
	To   flexString `json:"to"`
}

// expeditionPayload is the wire form of an expedition detail
type expeditionPayload struct {
	ID                  flexString                  `json:"id"`
	NumOrder            string                      `json:"numOrder"`
	Carrier             *string                     `json:"carrier"`
	TrackingInformation *trackingInformationPayload `json:"trackingInformation"`
	DeliverySlot        *deliverySlotPayload        `json:"deliverySlot"`
	TrackingStatus      flexString                  `json:"trackingStatus"`
}

// toDomain converts a wire event to the domain value object. An unparsable
// createdAt leaves the timestamp zero rather than failing the page.
func (p *eventPayload) toDomain() tracking.Event {
	event := tracking.Event{
		Reference: string(p.Reference),
		Code:      p.Code,
	}
	if p.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
			event.CreatedAt = t
		}
	}
	return event
}

// toDomain converts a wire expedition to the domain value object
func (p *expeditionPayload) toDomain() *tracking.Expedition {
	expedition := &tracking.Expedition{
		ID:             string(p.ID),
		OrderNumber:    p.NumOrder,
		Carrier:        p.Carrier,
		TrackingStatus: string(p.TrackingStatus),
	}
	if p.TrackingInformation != nil {
		expedition.TrackingInformation = tracking.TrackingInformation{
			CarrierTrackingURL: p.TrackingInformation.CarrierTrackingURL,
			TrackingNumber:     p.TrackingInformation.TrackingNumber,
			CarrierNumber:      p.TrackingInformation.CarrierNumber,
			ReceiptNumber:      p.TrackingInformation.ReceiptNumber,
		}
	}
	if p.DeliverySlot != nil {
		expedition.DeliverySlot = tracking.DeliverySlot{
			Date: string(p.DeliverySlot.Date),
			From: string(p.DeliverySlot.From),
			To:   string(p.DeliverySlot.To),
		}
	}
	return expedition
}
