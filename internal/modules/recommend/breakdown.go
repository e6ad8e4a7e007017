package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/arenex-logistics/arenex-backend/internal/modules/fleet"
	"github.com/arenex-logistics/arenex-backend/internal/modules/inventory"
)

// GetBreakdownRecommendations builds replacement options for the order
// carried by one broken-down or stuck truck. The option shapes match the
// order recommendations, but ranking is purely by on-time probability then
// cost, and the broken truck is excluded from every candidate pool.
func (s *service) GetBreakdownRecommendations(ctx context.Context, truckID string) ([]*Option, error) {
	started := time.Now()

	broken, err := s.fleet.GetTruck(ctx, truckID)
	if err != nil {
		return nil, err
	}
	if broken.Status != fleet.TruckBrokenDown && broken.Status != fleet.TruckStuck {
		return nil, fmt.Errorf("truck %s is not broken down or stuck (status %s)", broken.Plate, broken.Status)
	}
	if broken.AssignedOrderID == nil {
		return nil, fmt.Errorf("truck %s has no assigned order to replace", broken.Plate)
	}

	o, err := s.orders.GetByID(ctx, broken.AssignedOrderID.String())
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}

	trucks, err := s.fleet.ListTrucks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trucks: %w", err)
	}
	drivers, err := s.fleet.ListDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}

	pool := excludeTruck(trucks, broken.ID)
	freeTrucks := fleet.AvailableTrucks(pool)
	freeDrivers := fleet.AvailableDrivers(drivers)

	tons := o.TotalTons()
	verdict := fleet.CheckFeasibility(tons, freeTrucks, freeDrivers)

	product := primaryProduct(o)
	nearWell, err := s.inventory.Available(ctx, inventory.SiteNearWell, product, o.ID)
	if err != nil {
		return nil, err
	}
	quarry, err := s.inventory.Available(ctx, inventory.SiteQuarry, product, o.ID)
	if err != nil {
		return nil, err
	}

	options := []*Option{
		s.warehouseOption(SourceNearWellWarehouse, "On-Site Warehouse", s.cfg.NearWell, tons, verdict, nearWell.AvailableTons),
		s.warehouseOption(SourceQuarryWarehouse, "Quarry Warehouse", s.cfg.Quarry, tons, verdict, quarry.AvailableTons),
	}

	if replacement := s.replacementOption(freeTrucks, freeDrivers, tons); replacement != nil {
		options = append(options, replacement)
	}

	if reroute := findRedirectable(pool, tons, o.ID, broken.ID); reroute != nil {
		opt, err := s.rerouteOption(ctx, reroute)
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
	}

	sortBreakdown(options)
	for i, opt := range options {
		opt.Rank = i + 1
	}

	if s.metrics != nil {
		s.metrics.RecommendationBuilt("breakdown")
		s.metrics.ObserveRecommendLatency(time.Since(started).Seconds())
	}
	return options, nil
}

// replacementOption picks the single best available truck/driver pair: the
// largest free truck that covers the tonnage on its own. Returns nil when no
// free truck or driver qualifies.
func (s *service) replacementOption(freeTrucks []*fleet.Truck, freeDrivers []*fleet.Driver, tons float64) *Option {
	var best *fleet.Truck
	for _, t := range freeTrucks {
		if t.CapacityTons < tons {
			continue
		}
		if best == nil || t.CapacityTons > best.CapacityTons {
			best = t
		}
	}
	if best == nil || len(freeDrivers) == 0 {
		return nil
	}
	profile := s.cfg.Replacement
	return &Option{
		SourceType:        SourceTruckInTransit,
		SourceID:          best.ID.String(),
		Label:             fmt.Sprintf("Replacement truck %s", best.Plate),
		TruckID:           &best.ID,
		ETAMinutes:        profile.ETAMinutes,
		ETA:               formatETA(profile.ETAMinutes),
		DistanceKm:        profile.DistanceKm,
		EstimatedCost:     profile.Cost,
		OnTimeProbability: profile.OnTimeProbability,
		CanFulfill:        true,
	}
}

// rerouteOption wraps a different in-transit truck as a redirect candidate.
func (s *service) rerouteOption(ctx context.Context, t *fleet.Truck) (*Option, error) {
	profile := s.cfg.Redirect
	opt := &Option{
		SourceType:        SourceTruckInTransit,
		SourceID:          t.ID.String(),
		Label:             fmt.Sprintf("Reroute truck %s", t.Plate),
		TruckID:           &t.ID,
		ETAMinutes:        profile.ETAMinutes,
		ETA:               formatETA(profile.ETAMinutes),
		DistanceKm:        profile.DistanceKm,
		EstimatedCost:     profile.Cost,
		OnTimeProbability: profile.OnTimeProbability,
		CanFulfill:        true,
		IsRedirect:        true,
		FromOrderID:       t.AssignedOrderID,
	}
	from, err := s.orders.GetByID(ctx, t.AssignedOrderID.String())
	if err != nil {
		return nil, fmt.Errorf("load rerouted truck's order: %w", err)
	}
	opt.FromOrderNumber = from.OrderNumber
	opt.ImpactNote = fmt.Sprintf("Order %s delayed; substitute needed", from.OrderNumber)
	return opt, nil
}

func sortBreakdown(options []*Option) {
	sort.SliceStable(options, func(i, j int) bool {
		if options[i].OnTimeProbability != options[j].OnTimeProbability {
			return options[i].OnTimeProbability > options[j].OnTimeProbability
		}
		return options[i].EstimatedCost < options[j].EstimatedCost
	})
}

func excludeTruck(trucks []*fleet.Truck, id uuid.UUID) []*fleet.Truck {
	var out []*fleet.Truck
	for _, t := range trucks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
