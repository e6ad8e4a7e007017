package order

import "context"

// Repository defines data access for orders.
type Repository interface {
	// GetByID retrieves an order with its items by UUID.
	GetByID(ctx context.Context, id string) (*Order, error)

	// List returns all orders, optionally filtered by status.
	List(ctx context.Context, status string) ([]*Order, error)

	// ListOpen returns all orders that still reserve inventory
	// (status PENDING, CONFIRMED, or READY), with items loaded.
	ListOpen(ctx context.Context) ([]*Order, error)

	// UpdateStatus sets an order's status.
	UpdateStatus(ctx context.Context, id string, status Status) error
}
