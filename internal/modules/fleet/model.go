package fleet

import (
	"time"

	"github.com/google/uuid"
)

// TruckStatus represents the operational state of a truck.
type TruckStatus string

const (
	TruckAvailable   TruckStatus = "AVAILABLE"
	TruckAssigned    TruckStatus = "ASSIGNED"
	TruckInTransit   TruckStatus = "IN_TRANSIT"
	TruckLoading     TruckStatus = "LOADING"
	TruckDelivering  TruckStatus = "DELIVERING"
	TruckReturning   TruckStatus = "RETURNING"
	TruckMaintenance TruckStatus = "MAINTENANCE"
	TruckBrokenDown  TruckStatus = "BROKEN_DOWN"
	TruckStuck       TruckStatus = "STUCK"
)

// Truck represents a haul truck in the fleet.
// AssignedOrderID is set while status is one of ASSIGNED, IN_TRANSIT,
// DELIVERING, BROKEN_DOWN, or STUCK.
type Truck struct {
	ID              uuid.UUID   `json:"id"`
	Plate           string      `json:"plate"`
	CapacityTons    float64     `json:"capacity_tons"`
	Status          TruckStatus `json:"status"`
	AssignedOrderID *uuid.UUID  `json:"assigned_order_id,omitempty"`
	DriverID        *uuid.UUID  `json:"driver_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Driver is a truck driver. The engine treats drivers as read-only input.
type Driver struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	HoursWorked float64   `json:"hours_worked"`
	HoursLimit  float64   `json:"hours_limit"`
	Available   bool      `json:"available"`
}

// TruckUpdate is the mutable subset of a truck written by the executor.
type TruckUpdate struct {
	Status          TruckStatus `json:"status"`
	AssignedOrderID *uuid.UUID  `json:"assigned_order_id"`
	DriverID        *uuid.UUID  `json:"driver_id"`
}

// AvailableTrucks filters trucks down to those free for a new assignment.
func AvailableTrucks(trucks []*Truck) []*Truck {
	var out []*Truck
	for _, t := range trucks {
		if t.Status == TruckAvailable {
			out = append(out, t)
		}
	}
	return out
}

// AvailableDrivers filters drivers down to those free for a new assignment.
func AvailableDrivers(drivers []*Driver) []*Driver {
	var out []*Driver
	for _, d := range drivers {
		if d.Available {
			out = append(out, d)
		}
	}
	return out
}
