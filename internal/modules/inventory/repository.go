package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for inventory balances.
type Repository interface {
	// GetBalance returns the stock quantity for a product at a site.
	// A missing balance row reads as zero stock.
	GetBalance(ctx context.Context, site Site, productID uuid.UUID) (float64, error)
}
