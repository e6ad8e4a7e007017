package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/arenex-logistics/arenex-backend/internal/modules/fleet"
	"github.com/arenex-logistics/arenex-backend/internal/modules/inventory"
	"github.com/arenex-logistics/arenex-backend/internal/modules/order"
	"github.com/arenex-logistics/arenex-backend/internal/modules/rules"
	"github.com/arenex-logistics/arenex-backend/internal/platform/config"
	"github.com/arenex-logistics/arenex-backend/internal/platform/metrics"
)

// Service builds ranked fulfillment recommendations.
type Service interface {
	// GetOrderRecommendations composes and ranks the candidate fulfillment
	// options for an order: the two warehouses, an in-transit truck
	// redirect, and on-demand production.
	GetOrderRecommendations(ctx context.Context, orderID string) ([]*Option, error)

	// GetBreakdownRecommendations ranks replacement options for one
	// broken-down or stuck truck's order.
	GetBreakdownRecommendations(ctx context.Context, truckID string) ([]*Option, error)
}

type service struct {
	orders    order.Repository
	fleet     fleet.Repository
	inventory inventory.Service
	rules     rules.Service
	cfg       config.Engine
	metrics   *metrics.Collector
}

// NewService creates the recommendation builder. The metrics collector may be
// nil in tests.
func NewService(orders order.Repository, fleetRepo fleet.Repository, inv inventory.Service,
	ruleSvc rules.Service, cfg config.Engine, collector *metrics.Collector) Service {
	return &service{
		orders:    orders,
		fleet:     fleetRepo,
		inventory: inv,
		rules:     ruleSvc,
		cfg:       cfg,
		metrics:   collector,
	}
}

func (s *service) GetOrderRecommendations(ctx context.Context, orderID string) ([]*Option, error) {
	started := time.Now()

	o, err := s.orders.GetByID(ctx, orderID)
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
	active, err := s.rules.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}

	tons := o.TotalTons()
	verdict := fleet.CheckFeasibility(tons, fleet.AvailableTrucks(trucks), fleet.AvailableDrivers(drivers))

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

	redirect, err := s.redirectOption(ctx, o.ID, tons, trucks)
	if err != nil {
		return nil, err
	}
	options = append(options, redirect)

	// Production cannot serve an order that already passed production.
	if o.Status != order.StatusReady {
		options = append(options, s.produceOption(tons))
	}

	s.applyRules(active, o, options)
	rankOptions(options, s.cfg.Scoring)

	if s.metrics != nil {
		s.metrics.RecommendationBuilt("order")
		s.metrics.ObserveRecommendLatency(time.Since(started).Seconds())
	}
	return options, nil
}

// warehouseOption builds a warehouse-sourced candidate, gated first on fleet
// feasibility and then on inventory coverage.
func (s *service) warehouseOption(src SourceType, label string, profile config.SourceProfile,
	tons float64, verdict fleet.Verdict, available float64) *Option {

	opt := &Option{
		SourceType:         src,
		SourceID:           string(siteFor(src)),
		Label:              label,
		ETAMinutes:         profile.ETAMinutes,
		ETA:                formatETA(profile.ETAMinutes),
		DistanceKm:         profile.DistanceKm,
		EstimatedCost:      profile.Cost,
		OnTimeProbability:  profile.OnTimeProbability,
		InventoryAvailable: available,
	}

	switch {
	case !verdict.Feasible():
		opt.CannotFulfillReason = verdict.Reason()
	case available == 0:
		opt.CannotFulfillReason = fmt.Sprintf("No inventory available at %s", label)
	case available < tons:
		opt.CannotFulfillReason = fmt.Sprintf("Insufficient inventory (%.0f t; order needs %.0f t)", available, tons)
	default:
		opt.CanFulfill = true
	}
	return opt
}

// redirectOption searches for an in-transit or assigned truck whose capacity
// covers the order. When none qualifies a disabled placeholder is returned so
// the operator still sees the redirect lane.
func (s *service) redirectOption(ctx context.Context, orderID uuid.UUID, tons float64, trucks []*fleet.Truck) (*Option, error) {
	profile := s.cfg.Redirect
	candidate := findRedirectable(trucks, tons, orderID, uuid.Nil)
	if candidate == nil {
		return &Option{
			SourceType:          SourceTruckInTransit,
			Label:               "Redirect truck",
			ETAMinutes:          profile.ETAMinutes,
			ETA:                 formatETA(profile.ETAMinutes),
			DistanceKm:          profile.DistanceKm,
			EstimatedCost:       profile.Cost,
			OnTimeProbability:   profile.OnTimeProbability,
			RedirectUnavailable: true,
			CannotFulfillReason: "No in-transit truck with enough spare capacity",
		}, nil
	}

	opt := &Option{
		SourceType:        SourceTruckInTransit,
		SourceID:          candidate.ID.String(),
		Label:             fmt.Sprintf("Redirect truck %s", candidate.Plate),
		TruckID:           &candidate.ID,
		ETAMinutes:        profile.ETAMinutes,
		ETA:               formatETA(profile.ETAMinutes),
		DistanceKm:        profile.DistanceKm,
		EstimatedCost:     profile.Cost,
		OnTimeProbability: profile.OnTimeProbability,
		CanFulfill:        true,
		IsRedirect:        true,
		FromOrderID:       candidate.AssignedOrderID,
	}

	from, err := s.orders.GetByID(ctx, candidate.AssignedOrderID.String())
	if err != nil {
		return nil, fmt.Errorf("load redirected truck's order: %w", err)
	}
	opt.FromOrderNumber = from.OrderNumber
	opt.ImpactNote = fmt.Sprintf("Order %s delayed; substitute needed", from.OrderNumber)
	return opt, nil
}

func (s *service) produceOption(tons float64) *Option {
	minutes := int(math.Ceil(tons / s.cfg.Production.TonsPerHour * 60))
	return &Option{
		SourceType:        SourceProduce,
		SourceID:          "production",
		Label:             "Produce on demand",
		ETAMinutes:        minutes,
		ETA:               formatETA(minutes),
		OnTimeProbability: s.cfg.Production.OnTimeProbability,
		// Production is never capacity-blocked in this model.
		CanFulfill: true,
	}
}

// applyRules evaluates every active rule against the order and nudges the
// matching options. All matching rules apply cumulatively; priority is a
// display ordering, not a winner selection.
func (s *service) applyRules(active []*rules.Rule, o *order.Order, options []*Option) {
	ctx := ruleContext(o)
	bonus := s.cfg.Scoring.RuleBonus
	for _, r := range active {
		if !rules.Matches(r, ctx) {
			continue
		}
		switch r.Action.Type {
		case rules.ActionPreferQuarry:
			for _, opt := range options {
				if opt.SourceType == SourceQuarryWarehouse {
					opt.OnTimeProbability += bonus
				}
			}
		case rules.ActionPreferWarehouse:
			for _, opt := range options {
				if opt.SourceType == SourceNearWellWarehouse {
					opt.OnTimeProbability += bonus
				}
			}
		default:
			// Remaining action types are reserved scoring hooks.
		}
	}
}

func ruleContext(o *order.Order) rules.Context {
	ids := o.ProductIDs()
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	return rules.Context{
		OrderTons:        o.TotalTons(),
		Urgency:          o.Urgency,
		CustomerID:       o.CustomerID.String(),
		DeliveryLocation: o.DeliveryLocation,
		ProductIDs:       strIDs,
	}
}

// rankOptions orders the option set: fulfillable options first by score
// descending, then the rest by available inventory and score; the PRODUCE
// option always closes the list.
func rankOptions(options []*Option, scoring config.Scoring) {
	var maxCost float64
	for _, opt := range options {
		if opt.EstimatedCost > maxCost {
			maxCost = opt.EstimatedCost
		}
	}
	score := func(opt *Option) float64 {
		normCost := 0.0
		if maxCost > 0 {
			normCost = opt.EstimatedCost / maxCost
		}
		return scoring.ProbabilityWeight*opt.OnTimeProbability - scoring.CostWeight*normCost
	}

	var produce *Option
	rest := options[:0:0]
	for _, opt := range options {
		if opt.SourceType == SourceProduce {
			produce = opt
			continue
		}
		rest = append(rest, opt)
	}

	fulfillable := func(opt *Option) bool { return opt.CanFulfill && !opt.RedirectUnavailable }
	sort.SliceStable(rest, func(i, j int) bool {
		a, b := rest[i], rest[j]
		if fulfillable(a) != fulfillable(b) {
			return fulfillable(a)
		}
		if !fulfillable(a) && a.InventoryAvailable != b.InventoryAvailable {
			return a.InventoryAvailable > b.InventoryAvailable
		}
		return score(a) > score(b)
	})

	copy(options, rest)
	if produce != nil {
		options[len(options)-1] = produce
	}
	for i, opt := range options {
		opt.Rank = i + 1
	}
}

// findRedirectable returns the first truck already rolling for another order
// whose capacity covers the tonnage. exclude skips one truck id (the broken
// truck in breakdown mode); pass uuid.Nil to skip none.
func findRedirectable(trucks []*fleet.Truck, tons float64, forOrder uuid.UUID, exclude uuid.UUID) *fleet.Truck {
	for _, t := range trucks {
		if t.ID == exclude {
			continue
		}
		if t.Status != fleet.TruckInTransit && t.Status != fleet.TruckAssigned {
			continue
		}
		if t.AssignedOrderID == nil || *t.AssignedOrderID == forOrder {
			continue
		}
		if t.CapacityTons >= tons {
			return t
		}
	}
	return nil
}

func primaryProduct(o *order.Order) uuid.UUID {
	if len(o.Items) == 0 {
		return uuid.Nil
	}
	return o.Items[0].ProductID
}

func siteFor(src SourceType) inventory.Site {
	if src == SourceQuarryWarehouse {
		return inventory.SiteQuarry
	}
	return inventory.SiteNearWell
}
