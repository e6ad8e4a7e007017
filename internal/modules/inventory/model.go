package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Site identifies a physical stockpile location. Exactly two exist.
type Site string

const (
	SiteQuarry   Site = "quarry"
	SiteNearWell Site = "near_well"
)

// Valid reports whether s is one of the known sites.
func (s Site) Valid() bool { return s == SiteQuarry || s == SiteNearWell }

// Balance is the aggregate stock of one product at one site. Tonnage in
// transit is not tracked as a balance row.
type Balance struct {
	SiteID       Site      `json:"site_id"`
	ProductID    uuid.UUID `json:"product_id"`
	QuantityTons float64   `json:"quantity_tons"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Availability is the computed free stock for a product at a site after
// subtracting reservations held by open orders.
type Availability struct {
	SiteID        Site      `json:"site_id"`
	ProductID     uuid.UUID `json:"product_id"`
	StockTons     float64   `json:"stock_tons"`
	ReservedTons  float64   `json:"reserved_tons"`
	AvailableTons float64   `json:"available_tons"`
}
