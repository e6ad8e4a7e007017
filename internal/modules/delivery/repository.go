package delivery

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for deliveries and QC certificates.
type Repository interface {
	// Create persists a new delivery.
	Create(ctx context.Context, d *Delivery) error

	// GetActiveByOrder returns the order's non-delivered delivery, or nil
	// when the order has none.
	GetActiveByOrder(ctx context.Context, orderID uuid.UUID) (*Delivery, error)

	// Delete removes the delivery binding the given order and truck.
	Delete(ctx context.Context, orderID, truckID uuid.UUID) error

	// FindPassedCertificate returns the order's passed QC certificate, or
	// nil when the order has none.
	FindPassedCertificate(ctx context.Context, orderID uuid.UUID) (*Certificate, error)

	// LinkCertificateToTruck points a certificate's truck reference at the
	// given truck.
	LinkCertificateToTruck(ctx context.Context, certID, truckID uuid.UUID) error
}
