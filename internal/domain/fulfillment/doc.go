// Package fulfillment contains the Fulfillment bounded context.
// This context owns orders, their shipments and the reference data used when
// reconciling remote tracking state into them.
//
// Key concepts:
//   - Order: aggregate root holding tracking fields and line items
//   - Shipment: created at most once per (tenant, order number, warehouse)
//   - Carrier / TransportationStatus: reference entities resolved by code
//   - CreateFulfillment: outbound message signalling an order may be fulfillable
//
// Design Pattern: Ports & Adapters
//   - Repository and dispatcher ports are defined here in the domain layer
//   - Adapters (GORM, Redis) are in the infrastructure layer
package fulfillment
