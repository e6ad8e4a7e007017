package recommend

import (
	"fmt"

	"github.com/google/uuid"
)

// SourceType identifies one of the four ways an order's sand can be supplied.
type SourceType string

const (
	SourceQuarryWarehouse   SourceType = "QUARRY_WAREHOUSE"
	SourceNearWellWarehouse SourceType = "NEAR_WELL_WAREHOUSE"
	SourceTruckInTransit    SourceType = "TRUCK_IN_TRANSIT"
	SourceProduce           SourceType = "PRODUCE"
)

// Option is one ranked fulfillment candidate. Options are computed fresh on
// every request and never persisted.
type Option struct {
	Rank              int        `json:"rank"`
	SourceType        SourceType `json:"source_type"`
	SourceID          string     `json:"source_id"`
	Label             string     `json:"label"`
	TruckID           *uuid.UUID `json:"truck_id,omitempty"`
	ETAMinutes        int        `json:"eta_minutes"`
	ETA               string     `json:"eta"`
	DistanceKm        float64    `json:"distance_km"`
	EstimatedCost     float64    `json:"estimated_cost"`
	OnTimeProbability float64    `json:"on_time_probability"`

	InventoryAvailable  float64 `json:"inventory_available"`
	CanFulfill          bool    `json:"can_fulfill"`
	CannotFulfillReason string  `json:"cannot_fulfill_reason,omitempty"`

	IsRedirect          bool       `json:"is_redirect,omitempty"`
	RedirectUnavailable bool       `json:"redirect_unavailable,omitempty"`
	FromOrderID         *uuid.UUID `json:"from_order_id,omitempty"`
	FromOrderNumber     string     `json:"from_order_number,omitempty"`
	ImpactNote          string     `json:"impact_note,omitempty"`
}

// formatETA renders minutes as an operator-facing duration string.
func formatETA(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%d h", minutes/60)
	}
	return fmt.Sprintf("%d h %d min", minutes/60, minutes%60)
}
