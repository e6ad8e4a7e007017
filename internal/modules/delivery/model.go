package delivery

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a delivery.
type Status string

const (
	StatusAssigned  Status = "ASSIGNED"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
)

// Delivery binds one truck and driver to one order's haul.
type Delivery struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	TruckID   uuid.UUID `json:"truck_id"`
	DriverID  uuid.UUID `json:"driver_id"`
	Status    Status    `json:"status"`
	ETA       time.Time `json:"eta"`
	CreatedAt time.Time `json:"created_at"`
}

// Certificate is a quality-control lab certificate for an order's sand batch.
// Once a truck is assigned, the certificate travels with the truck.
type Certificate struct {
	ID            uuid.UUID  `json:"id"`
	CertificateID string     `json:"certificate_id"`
	OrderID       uuid.UUID  `json:"order_id"`
	TruckID       *uuid.UUID `json:"truck_id,omitempty"`
	Passed        bool       `json:"passed"`
	IssuedAt      time.Time  `json:"issued_at"`
}
