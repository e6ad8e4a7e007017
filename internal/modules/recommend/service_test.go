package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenex-logistics/arenex-backend/internal/modules/fleet"
	"github.com/arenex-logistics/arenex-backend/internal/modules/inventory"
	"github.com/arenex-logistics/arenex-backend/internal/modules/order"
	"github.com/arenex-logistics/arenex-backend/internal/modules/rules"
	"github.com/arenex-logistics/arenex-backend/internal/platform/config"
)

// ── fakes ──────────────────────────────────────────────────────────────

type fakeOrders struct{ byID map[uuid.UUID]*order.Order }

func (f *fakeOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	o, ok := f.byID[uid]
	if !ok {
		return nil, fmt.Errorf("order %s not found", id)
	}
	return o, nil
}

func (f *fakeOrders) List(context.Context, string) ([]*order.Order, error) { return nil, nil }
func (f *fakeOrders) ListOpen(context.Context) ([]*order.Order, error)     { return nil, nil }
func (f *fakeOrders) UpdateStatus(context.Context, string, order.Status) error {
	return nil
}

type fakeFleet struct {
	trucks  []*fleet.Truck
	drivers []*fleet.Driver
}

func (f *fakeFleet) ListTrucks(context.Context) ([]*fleet.Truck, error) { return f.trucks, nil }
func (f *fakeFleet) GetTruck(_ context.Context, id string) (*fleet.Truck, error) {
	for _, t := range f.trucks {
		if t.ID.String() == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("truck %s not found", id)
}
func (f *fakeFleet) UpdateTruck(context.Context, string, fleet.TruckUpdate) error { return nil }
func (f *fakeFleet) ListDrivers(context.Context) ([]*fleet.Driver, error)         { return f.drivers, nil }

type fakeInventory struct{ avail map[inventory.Site]float64 }

func (f *fakeInventory) Available(_ context.Context, site inventory.Site, productID, _ uuid.UUID) (*inventory.Availability, error) {
	return &inventory.Availability{
		SiteID:        site,
		ProductID:     productID,
		AvailableTons: f.avail[site],
	}, nil
}

type fakeRules struct{ active []*rules.Rule }

func (f *fakeRules) CreateRule(context.Context, rules.UpsertRequest) (*rules.Rule, error) {
	return nil, nil
}
func (f *fakeRules) GetRule(context.Context, string) (*rules.Rule, error)    { return nil, nil }
func (f *fakeRules) ListRules(context.Context) ([]*rules.Rule, error)        { return nil, nil }
func (f *fakeRules) UpdateRule(context.Context, string, rules.UpsertRequest) (*rules.Rule, error) {
	return nil, nil
}
func (f *fakeRules) DeleteRule(context.Context, string) error           { return nil }
func (f *fakeRules) ListActive(context.Context) ([]*rules.Rule, error) { return f.active, nil }

// ── fixture ────────────────────────────────────────────────────────────

type fixture struct {
	orders *fakeOrders
	fleet  *fakeFleet
	inv    *fakeInventory
	rules  *fakeRules
}

func newFixture() *fixture {
	return &fixture{
		orders: &fakeOrders{byID: make(map[uuid.UUID]*order.Order)},
		fleet: &fakeFleet{
			trucks: []*fleet.Truck{
				availableTruck("AA-100", 60),
				availableTruck("AA-101", 50),
				availableTruck("AA-102", 20),
			},
			drivers: []*fleet.Driver{
				{ID: uuid.New(), Name: "R. Paz", Available: true},
				{ID: uuid.New(), Name: "M. Sosa", Available: true},
				{ID: uuid.New(), Name: "L. Ríos", Available: true},
			},
		},
		inv: &fakeInventory{avail: map[inventory.Site]float64{
			inventory.SiteNearWell: 200,
			inventory.SiteQuarry:   300,
		}},
		rules: &fakeRules{},
	}
}

func (f *fixture) service() Service {
	return NewService(f.orders, f.fleet, f.inv, f.rules, config.DefaultEngine(), nil)
}

func (f *fixture) addOrder(number string, status order.Status, tons float64) *order.Order {
	o := &order.Order{
		ID:          uuid.New(),
		OrderNumber: number,
		CustomerID:  uuid.New(),
		Status:      status,
		Items:       []*order.Item{{ID: uuid.New(), ProductID: uuid.New(), QuantityTons: tons}},
	}
	f.orders.byID[o.ID] = o
	return o
}

func availableTruck(plate string, capacity float64) *fleet.Truck {
	return &fleet.Truck{ID: uuid.New(), Plate: plate, CapacityTons: capacity, Status: fleet.TruckAvailable}
}

func findBySource(t *testing.T, options []*Option, src SourceType) *Option {
	t.Helper()
	for _, opt := range options {
		if opt.SourceType == src {
			return opt
		}
	}
	t.Fatalf("no option with source %s", src)
	return nil
}

// ── tests ──────────────────────────────────────────────────────────────

func TestOrderRecommendationsFourLanes(t *testing.T) {
	f := newFixture()
	o := f.addOrder("ORD-0001", order.StatusPending, 100)

	options, err := f.service().GetOrderRecommendations(context.Background(), o.ID.String())

	require.NoError(t, err)
	require.Len(t, options, 4)

	for i, opt := range options {
		assert.Equal(t, i+1, opt.Rank)
	}

	// Both warehouses can fulfill and the cheaper, more reliable near-well
	// source must outrank the quarry.
	assert.Equal(t, SourceNearWellWarehouse, options[0].SourceType)
	assert.Equal(t, SourceQuarryWarehouse, options[1].SourceType)
	assert.True(t, options[0].CanFulfill)
	assert.True(t, options[1].CanFulfill)

	// No truck is rolling for another order, so the redirect lane is a
	// disabled placeholder.
	redirect := findBySource(t, options, SourceTruckInTransit)
	assert.True(t, redirect.RedirectUnavailable)
	assert.False(t, redirect.CanFulfill)
	assert.Equal(t, "No in-transit truck with enough spare capacity", redirect.CannotFulfillReason)

	// Production always closes the list.
	assert.Equal(t, SourceProduce, options[3].SourceType)
}

func TestProduceOmittedForReadyOrder(t *testing.T) {
	f := newFixture()
	o := f.addOrder("ORD-0002", order.StatusReady, 100)

	options, err := f.service().GetOrderRecommendations(context.Background(), o.ID.String())

	require.NoError(t, err)
	require.Len(t, options, 3)
	for _, opt := range options {
		assert.NotEqual(t, SourceProduce, opt.SourceType)
	}
}

func TestProduceETAFromProductionRate(t *testing.T) {
	f := newFixture()
	o := f.addOrder("ORD-0003", order.StatusPending, 100)

	options, err := f.service().GetOrderRecommendations(context.Background(), o.ID.String())

	require.NoError(t, err)
	produce := findBySource(t, options, SourceProduce)
	// 100 t at 150 t/h = 40 min.
	assert.Equal(t, 40, produce.ETAMinutes)
	assert.Equal(t, "40 min", produce.ETA)
	assert.True(t, produce.CanFulfill)
}

func TestInsufficientInventoryReason(t *testing.T) {
	f := newFixture()
	f.inv.avail[inventory.SiteNearWell] = 80
	o := f.addOrder("ORD-0004", order.StatusPending, 100)

	options, err := f.service().GetOrderRecommendations(context.Background(), o.ID.String())

	require.NoError(t, err)
	nearWell := findBySource(t, options, SourceNearWellWarehouse)
	assert.False(t, nearWell.CanFulfill)
	assert.Equal(t, "Insufficient inventory (80 t; order needs 100 t)", nearWell.CannotFulfillReason)
	assert.Equal(t, 80.0, nearWell.InventoryAvailable)

	quarry := findBySource(t, options, SourceQuarryWarehouse)
	assert.True(t, quarry.CanFulfill)
}

func TestEmptyWarehouseReason(t *testing.T) {
	f := newFixture()
	f.inv.avail[inventory.SiteQuarry] = 0
	o := f.addOrder("ORD-0005", order.StatusPending, 100)

	options, err := f.service().GetOrderRecommendations(context.Background(), o.ID.String())

	require.NoError(t, err)
	quarry := findBySource(t, options, SourceQuarryWarehouse)
	assert.Equal(t, "No inventory available at Quarry Warehouse", quarry.CannotFulfillReason)
}

func TestFeasibilityBlocksWarehouses(t *testing.T) {
	f := newFixture()
	f.fleet.drivers = nil
	o := f.addOrder("ORD-0006", order.StatusPending, 100)

	options, err := f.service().GetOrderRecommendations(context.Background(), o.ID.String())

	require.NoError(t, err)
	for _, src := range []SourceType{SourceNearWellWarehouse, SourceQuarryWarehouse} {
		opt := findBySource(t, options, src)
		assert.False(t, opt.CanFulfill)
		assert.Equal(t, "No drivers available", opt.CannotFulfillReason)
	}

	// Production does not need the fleet and stays on the table.
	produce := findBySource(t, options, SourceProduce)
	assert.True(t, produce.CanFulfill)
}

func TestRedirectCandidatePicked(t *testing.T) {
	f := newFixture()
	o := f.addOrder("ORD-0007", order.StatusPending, 100)
	donor := f.addOrder("ORD-0042", order.StatusDispatched, 110)

	rolling := availableTruck("BB-200", 120)
	rolling.Status = fleet.TruckInTransit
	rolling.AssignedOrderID = &donor.ID
	f.fleet.trucks = append(f.fleet.trucks, rolling)

	options, err := f.service().GetOrderRecommendations(context.Background(), o.ID.String())

	require.NoError(t, err)
	redirect := findBySource(t, options, SourceTruckInTransit)
	assert.True(t, redirect.CanFulfill)
	assert.True(t, redirect.IsRedirect)
	assert.False(t, redirect.RedirectUnavailable)
	require.NotNil(t, redirect.TruckID)
	assert.Equal(t, rolling.ID, *redirect.TruckID)
	assert.Equal(t, "ORD-0042", redirect.FromOrderNumber)
	assert.Equal(t, "Order ORD-0042 delayed; substitute needed", redirect.ImpactNote)
}

func TestRedirectSkipsUndersizedAndOwnTrucks(t *testing.T) {
	f := newFixture()
	o := f.addOrder("ORD-0008", order.StatusPending, 100)
	donor := f.addOrder("ORD-0050", order.StatusDispatched, 60)

	small := availableTruck("CC-300", 60) // cannot cover 100 t
	small.Status = fleet.TruckInTransit
	small.AssignedOrderID = &donor.ID

	own := availableTruck("CC-301", 120) // already serving this order
	own.Status = fleet.TruckInTransit
	own.AssignedOrderID = &o.ID

	f.fleet.trucks = append(f.fleet.trucks, small, own)

	options, err := f.service().GetOrderRecommendations(context.Background(), o.ID.String())

	require.NoError(t, err)
	redirect := findBySource(t, options, SourceTruckInTransit)
	assert.True(t, redirect.RedirectUnavailable)
}

func TestPreferQuarryRuleRaisesProbability(t *testing.T) {
	f := newFixture()
	f.rules.active = []*rules.Rule{{
		ID:        uuid.New(),
		Name:      "big orders from quarry",
		Condition: rules.Condition{Field: rules.FieldOrderSize, Operator: rules.OpGt, Value: json.RawMessage(`50`)},
		Action:    rules.Action{Type: rules.ActionPreferQuarry},
		Active:    true,
	}}
	o := f.addOrder("ORD-0009", order.StatusPending, 100)

	options, err := f.service().GetOrderRecommendations(context.Background(), o.ID.String())

	require.NoError(t, err)
	quarry := findBySource(t, options, SourceQuarryWarehouse)
	assert.InDelta(t, 0.90, quarry.OnTimeProbability, 1e-9)

	nearWell := findBySource(t, options, SourceNearWellWarehouse)
	assert.InDelta(t, 0.92, nearWell.OnTimeProbability, 1e-9)
}

func TestNonMatchingRuleLeavesOptionsAlone(t *testing.T) {
	f := newFixture()
	f.rules.active = []*rules.Rule{{
		ID:        uuid.New(),
		Name:      "huge orders from quarry",
		Condition: rules.Condition{Field: rules.FieldOrderSize, Operator: rules.OpGt, Value: json.RawMessage(`500`)},
		Action:    rules.Action{Type: rules.ActionPreferQuarry},
		Active:    true,
	}}
	o := f.addOrder("ORD-0010", order.StatusPending, 100)

	options, err := f.service().GetOrderRecommendations(context.Background(), o.ID.String())

	require.NoError(t, err)
	quarry := findBySource(t, options, SourceQuarryWarehouse)
	assert.InDelta(t, 0.85, quarry.OnTimeProbability, 1e-9)
}

func TestRankingPutsFulfillableFirst(t *testing.T) {
	f := newFixture()
	// Only the quarry has stock; the near-well warehouse cannot fulfill.
	f.inv.avail[inventory.SiteNearWell] = 30
	o := f.addOrder("ORD-0011", order.StatusPending, 100)

	options, err := f.service().GetOrderRecommendations(context.Background(), o.ID.String())

	require.NoError(t, err)
	require.Len(t, options, 4)
	assert.Equal(t, SourceQuarryWarehouse, options[0].SourceType)
	assert.True(t, options[0].CanFulfill)
	assert.False(t, options[1].CanFulfill)
	assert.Equal(t, SourceProduce, options[3].SourceType)
}

func TestOrderRecommendationsUnknownOrder(t *testing.T) {
	f := newFixture()

	_, err := f.service().GetOrderRecommendations(context.Background(), uuid.NewString())

	assert.ErrorContains(t, err, "order")
}
