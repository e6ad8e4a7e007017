package assignment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/EagleChen/mapmutex"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arenex-logistics/arenex-backend/internal/modules/delivery"
	"github.com/arenex-logistics/arenex-backend/internal/modules/fleet"
	"github.com/arenex-logistics/arenex-backend/internal/modules/order"
	"github.com/arenex-logistics/arenex-backend/internal/modules/recommend"
	"github.com/arenex-logistics/arenex-backend/internal/platform/config"
	"github.com/arenex-logistics/arenex-backend/internal/platform/metrics"
)

// Request is the payload for executing an assignment.
type Request struct {
	OrderID     string               `json:"order_id"`
	SourceType  recommend.SourceType `json:"source_type"`
	SourceID    string               `json:"source_id,omitempty"`
	TruckID     string               `json:"truck_id,omitempty"`
	FromOrderID string               `json:"from_order_id,omitempty"`
}

// Executor performs the committed state transition once a fulfillment source
// has been chosen. All mutating sequences run under per-order and per-truck
// locks so that "one active delivery per order" and "one assignment per
// truck" hold across concurrent operator sessions.
type Executor interface {
	// Assign reserves trucks and drivers for the order from the chosen
	// source and flips the related records into their new state.
	Assign(ctx context.Context, req Request) error

	// ExecuteRedirect rebinds a truck from its current order onto the
	// target order. Shared by the redirect approval transitions.
	ExecuteRedirect(ctx context.Context, fromOrderID, toOrderID, truckID uuid.UUID) error
}

type executor struct {
	orders     order.Repository
	fleet      fleet.Repository
	deliveries delivery.Repository
	locks      *mapmutex.Mutex
	cfg        config.Engine
	metrics    *metrics.Collector
}

// NewExecutor creates the assignment executor. The metrics collector may be
// nil in tests.
func NewExecutor(orders order.Repository, fleetRepo fleet.Repository, deliveries delivery.Repository,
	cfg config.Engine, collector *metrics.Collector) Executor {
	return &executor{
		orders:     orders,
		fleet:      fleetRepo,
		deliveries: deliveries,
		locks:      mapmutex.NewCustomizedMapMutex(800, 100000000, 10, 1.1, 0.2),
		cfg:        cfg,
		metrics:    collector,
	}
}

func (e *executor) Assign(ctx context.Context, req Request) error {
	if req.OrderID == "" {
		return fmt.Errorf("order_id is required")
	}

	keys := []string{"order:" + req.OrderID}
	if req.TruckID != "" {
		keys = append(keys, "truck:"+req.TruckID)
	}
	if req.FromOrderID != "" {
		keys = append(keys, "order:"+req.FromOrderID)
	}
	unlock, err := e.lockAll(keys)
	if err != nil {
		return err
	}
	defer unlock()

	if err := e.assignLocked(ctx, req); err != nil {
		if e.metrics != nil {
			e.metrics.AssignmentFailed()
		}
		return err
	}
	if e.metrics != nil {
		e.metrics.AssignmentExecuted(string(req.SourceType))
	}
	return nil
}

func (e *executor) assignLocked(ctx context.Context, req Request) error {
	o, err := e.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return fmt.Errorf("order not found: %w", err)
	}

	active, err := e.deliveries.GetActiveByOrder(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("check active delivery: %w", err)
	}
	if active != nil {
		return fmt.Errorf("Order already has an active delivery")
	}

	switch req.SourceType {
	case recommend.SourceTruckInTransit:
		return e.assignRedirect(ctx, o, req)
	case recommend.SourceQuarryWarehouse, recommend.SourceNearWellWarehouse:
		return e.assignWarehouse(ctx, o, req)
	default:
		return fmt.Errorf("unknown source type %q", req.SourceType)
	}
}

// assignRedirect rebinds an in-transit truck onto the order. The old
// delivery is removed and its order reverted to READY before the truck is
// re-bound; order and truck status writes come last so an early failure
// leaves nothing half-assigned.
func (e *executor) assignRedirect(ctx context.Context, o *order.Order, req Request) error {
	if req.TruckID == "" {
		return fmt.Errorf("truck_id is required for a redirect assignment")
	}
	truck, err := e.fleet.GetTruck(ctx, req.TruckID)
	if err != nil {
		return fmt.Errorf("Truck or driver not available: %w", err)
	}

	var fromOrderID *uuid.UUID
	var driverID uuid.UUID
	if req.FromOrderID != "" {
		fid, err := uuid.Parse(req.FromOrderID)
		if err != nil {
			return fmt.Errorf("invalid from_order_id: %w", err)
		}
		fromOrderID = &fid

		fromDelivery, err := e.deliveries.GetActiveByOrder(ctx, fid)
		if err != nil {
			return fmt.Errorf("load source delivery: %w", err)
		}
		if fromDelivery != nil {
			driverID = fromDelivery.DriverID
			if err := e.deliveries.Delete(ctx, fid, truck.ID); err != nil {
				return fmt.Errorf("remove source delivery: %w", err)
			}
			if err := e.orders.UpdateStatus(ctx, fid.String(), order.StatusReady); err != nil {
				return fmt.Errorf("revert source order: %w", err)
			}
		}
	}
	if driverID == uuid.Nil {
		driverID, err = e.anyAvailableDriver(ctx)
		if err != nil {
			return err
		}
	}

	d := &delivery.Delivery{
		ID:       uuid.New(),
		OrderID:  o.ID,
		TruckID:  truck.ID,
		DriverID: driverID,
		Status:   delivery.StatusAssigned,
		ETA:      e.eta(),
	}
	if err := e.deliveries.Create(ctx, d); err != nil {
		return err
	}

	if err := e.relinkCertificate(ctx, o.ID, truck.ID); err != nil {
		return err
	}

	if err := e.orders.UpdateStatus(ctx, o.ID.String(), order.StatusReady); err != nil {
		return err
	}
	if err := e.fleet.UpdateTruck(ctx, truck.ID.String(), fleet.TruckUpdate{
		Status:          fleet.TruckAssigned,
		AssignedOrderID: &o.ID,
		DriverID:        &driverID,
	}); err != nil {
		return err
	}

	zap.S().Infow("redirect assignment executed",
		"order", o.OrderNumber, "truck", truck.Plate, "from_order", fromOrderID)
	return nil
}

// assignWarehouse recomputes the greedy truck set against the fleet as it is
// right now; the feasibility seen at recommendation time may have changed.
func (e *executor) assignWarehouse(ctx context.Context, o *order.Order, req Request) error {
	trucks, err := e.fleet.ListTrucks(ctx)
	if err != nil {
		return fmt.Errorf("list trucks: %w", err)
	}
	drivers, err := e.fleet.ListDrivers(ctx)
	if err != nil {
		return fmt.Errorf("list drivers: %w", err)
	}

	tons := o.TotalTons()
	verdict := fleet.CheckFeasibility(tons, fleet.AvailableTrucks(trucks), fleet.AvailableDrivers(drivers))
	if !verdict.Feasible() {
		return fmt.Errorf("%s", verdict.Reason())
	}

	freeDrivers := fleet.AvailableDrivers(drivers)
	eta := e.eta()
	for i, truck := range verdict.Trucks {
		d := &delivery.Delivery{
			ID:       uuid.New(),
			OrderID:  o.ID,
			TruckID:  truck.ID,
			DriverID: freeDrivers[i].ID,
			Status:   delivery.StatusAssigned,
			ETA:      eta,
		}
		if err := e.deliveries.Create(ctx, d); err != nil {
			return err
		}
	}

	if err := e.relinkCertificate(ctx, o.ID, verdict.Trucks[0].ID); err != nil {
		return err
	}

	if err := e.orders.UpdateStatus(ctx, o.ID.String(), order.StatusReady); err != nil {
		return err
	}
	for i, truck := range verdict.Trucks {
		driverID := freeDrivers[i].ID
		if err := e.fleet.UpdateTruck(ctx, truck.ID.String(), fleet.TruckUpdate{
			Status:          fleet.TruckAssigned,
			AssignedOrderID: &o.ID,
			DriverID:        &driverID,
		}); err != nil {
			return err
		}
	}

	zap.S().Infow("warehouse assignment executed",
		"order", o.OrderNumber, "source", req.SourceType, "trucks", len(verdict.Trucks))
	return nil
}

// ExecuteRedirect is the shared rebind used by the redirect approval
// workflow: the target order must already hold a passed QC certificate, the
// source order gets its delivery removed and reverts to READY, and the
// target order is dispatched on the redirected truck.
func (e *executor) ExecuteRedirect(ctx context.Context, fromOrderID, toOrderID, truckID uuid.UUID) error {
	unlock, err := e.lockAll([]string{
		"order:" + fromOrderID.String(),
		"order:" + toOrderID.String(),
		"truck:" + truckID.String(),
	})
	if err != nil {
		return err
	}
	defer unlock()

	target, err := e.orders.GetByID(ctx, toOrderID.String())
	if err != nil {
		return fmt.Errorf("target order not found: %w", err)
	}

	cert, err := e.deliveries.FindPassedCertificate(ctx, target.ID)
	if err != nil {
		return fmt.Errorf("look up certificate: %w", err)
	}
	if cert == nil {
		return fmt.Errorf("Target order must have a QC certificate before redirect.")
	}

	truck, err := e.fleet.GetTruck(ctx, truckID.String())
	if err != nil {
		return fmt.Errorf("Truck or driver not available: %w", err)
	}

	driverID, err := e.resolveRedirectDriver(ctx, fromOrderID, truck)
	if err != nil {
		return err
	}

	if err := e.deliveries.Delete(ctx, fromOrderID, truck.ID); err != nil {
		return fmt.Errorf("remove source delivery: %w", err)
	}
	if err := e.orders.UpdateStatus(ctx, fromOrderID.String(), order.StatusReady); err != nil {
		return fmt.Errorf("revert source order: %w", err)
	}

	d := &delivery.Delivery{
		ID:       uuid.New(),
		OrderID:  target.ID,
		TruckID:  truck.ID,
		DriverID: driverID,
		Status:   delivery.StatusAssigned,
		ETA:      e.eta(),
	}
	if err := e.deliveries.Create(ctx, d); err != nil {
		return err
	}

	if err := e.deliveries.LinkCertificateToTruck(ctx, cert.ID, truck.ID); err != nil {
		return err
	}

	if err := e.orders.UpdateStatus(ctx, target.ID.String(), order.StatusDispatched); err != nil {
		return err
	}
	if err := e.fleet.UpdateTruck(ctx, truck.ID.String(), fleet.TruckUpdate{
		Status:          fleet.TruckAssigned,
		AssignedOrderID: &target.ID,
		DriverID:        &driverID,
	}); err != nil {
		return err
	}

	zap.S().Infow("redirect executed",
		"from_order", fromOrderID, "to_order", target.OrderNumber, "truck", truck.Plate)
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// resolveRedirectDriver prefers the driver already on the source order's
// delivery, then the truck's current driver, then any available driver.
func (e *executor) resolveRedirectDriver(ctx context.Context, fromOrderID uuid.UUID, truck *fleet.Truck) (uuid.UUID, error) {
	fromDelivery, err := e.deliveries.GetActiveByOrder(ctx, fromOrderID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load source delivery: %w", err)
	}
	if fromDelivery != nil {
		return fromDelivery.DriverID, nil
	}
	if truck.DriverID != nil {
		return *truck.DriverID, nil
	}
	return e.anyAvailableDriver(ctx)
}

func (e *executor) anyAvailableDriver(ctx context.Context) (uuid.UUID, error) {
	drivers, err := e.fleet.ListDrivers(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("list drivers: %w", err)
	}
	free := fleet.AvailableDrivers(drivers)
	if len(free) == 0 {
		return uuid.Nil, fmt.Errorf("Truck or driver not available")
	}
	return free[0].ID, nil
}

func (e *executor) relinkCertificate(ctx context.Context, orderID, truckID uuid.UUID) error {
	cert, err := e.deliveries.FindPassedCertificate(ctx, orderID)
	if err != nil {
		return fmt.Errorf("look up certificate: %w", err)
	}
	if cert == nil {
		return nil
	}
	return e.deliveries.LinkCertificateToTruck(ctx, cert.ID, truckID)
}

func (e *executor) eta() time.Time {
	return time.Now().Add(time.Duration(e.cfg.DeliveryLeadHours) * time.Hour)
}

// lockAll acquires the given lock keys in sorted order (a fixed acquisition
// order prevents deadlock between overlapping operations) and returns a
// release function for the ones acquired.
func (e *executor) lockAll(keys []string) (func(), error) {
	sort.Strings(keys)
	var held []string
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			e.locks.Unlock(held[i])
		}
	}
	for _, key := range keys {
		if !e.locks.TryLock(key) {
			release()
			return nil, fmt.Errorf("another operation is in progress for %s", key)
		}
		held = append(held, key)
	}
	return release, nil
}
