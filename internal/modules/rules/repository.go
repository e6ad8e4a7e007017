package rules

import "context"

// Repository defines data access for fulfillment rules.
type Repository interface {
	Create(ctx context.Context, r *Rule) error
	GetByID(ctx context.Context, id string) (*Rule, error)

	// List returns all rules ordered by priority ascending.
	List(ctx context.Context) ([]*Rule, error)

	// ListActive returns active rules ordered by priority ascending.
	ListActive(ctx context.Context) ([]*Rule, error)

	Update(ctx context.Context, r *Rule) error
	Delete(ctx context.Context, id string) error
}
