package fleet

import "context"

// Repository defines data access for trucks and drivers.
type Repository interface {
	// ListTrucks returns the whole fleet.
	ListTrucks(ctx context.Context) ([]*Truck, error)

	// GetTruck retrieves one truck by UUID.
	GetTruck(ctx context.Context, id string) (*Truck, error)

	// UpdateTruck writes a truck's status and assignment references.
	UpdateTruck(ctx context.Context, id string, update TruckUpdate) error

	// ListDrivers returns all drivers.
	ListDrivers(ctx context.Context) ([]*Driver, error)
}
