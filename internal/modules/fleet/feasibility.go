package fleet

import (
	"fmt"
	"sort"
)

// VerdictKind classifies the outcome of a feasibility check.
type VerdictKind string

const (
	VerdictFeasible                  VerdictKind = "FEASIBLE"
	VerdictNoTruck                   VerdictKind = "NO_TRUCK"
	VerdictNoDriver                  VerdictKind = "NO_DRIVER"
	VerdictInsufficientDriverCount   VerdictKind = "INSUFFICIENT_DRIVER_COUNT"
	VerdictInsufficientTotalCapacity VerdictKind = "INSUFFICIENT_TOTAL_CAPACITY"
)

// Verdict is the typed result of a fleet feasibility check. It carries the
// numbers needed to render a human-readable reason.
type Verdict struct {
	Kind          VerdictKind `json:"kind"`
	OrderTons     float64     `json:"order_tons"`
	Trucks        []*Truck    `json:"trucks,omitempty"` // the greedy working set
	TotalCapacity float64     `json:"total_capacity"`
	DriversNeeded int         `json:"drivers_needed"`
	DriversFree   int         `json:"drivers_free"`
}

// Feasible reports whether the check passed.
func (v Verdict) Feasible() bool { return v.Kind == VerdictFeasible }

// Reason renders the operator-facing explanation for a failed verdict.
// Returns "" for a feasible one.
func (v Verdict) Reason() string {
	switch v.Kind {
	case VerdictFeasible:
		return ""
	case VerdictNoDriver:
		return "No drivers available"
	case VerdictNoTruck:
		return "No trucks available"
	case VerdictInsufficientTotalCapacity:
		return fmt.Sprintf("Total truck capacity (%.0f t) insufficient for order (%.0f t)", v.TotalCapacity, v.OrderTons)
	case VerdictInsufficientDriverCount:
		return fmt.Sprintf("Need %d drivers for %d trucks, only %d available", v.DriversNeeded, v.DriversNeeded, v.DriversFree)
	}
	return string(v.Kind)
}

// SelectTrucks computes the greedy working set for the given tonnage: trucks
// sorted by capacity descending, accumulated until the cumulative capacity
// covers the order. Largest-first bin packing is not optimal but deterministic.
// The returned slice may not cover the tonnage when the whole pool is too
// small; callers check the cumulative capacity.
func SelectTrucks(orderTons float64, trucks []*Truck) []*Truck {
	sorted := make([]*Truck, len(trucks))
	copy(sorted, trucks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CapacityTons > sorted[j].CapacityTons
	})

	var set []*Truck
	var capacity float64
	for _, t := range sorted {
		if capacity >= orderTons {
			break
		}
		set = append(set, t)
		capacity += t.CapacityTons
	}
	return set
}

// CheckFeasibility runs the full fleet feasibility check for an order's
// tonnage against the available trucks and drivers. One driver per truck, no
// sharing. Pure: no side effects.
func CheckFeasibility(orderTons float64, trucks []*Truck, drivers []*Driver) Verdict {
	v := Verdict{OrderTons: orderTons, DriversFree: len(drivers)}

	if len(drivers) == 0 {
		v.Kind = VerdictNoDriver
		return v
	}
	if len(trucks) == 0 {
		v.Kind = VerdictNoTruck
		return v
	}

	set := SelectTrucks(orderTons, trucks)
	for _, t := range set {
		v.TotalCapacity += t.CapacityTons
	}
	v.Trucks = set
	v.DriversNeeded = len(set)

	if v.TotalCapacity < orderTons {
		v.Kind = VerdictInsufficientTotalCapacity
		return v
	}
	if len(drivers) < len(set) {
		v.Kind = VerdictInsufficientDriverCount
		return v
	}
	v.Kind = VerdictFeasible
	return v
}
