package fleet

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed fleet repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const truckColumns = `id, plate, capacity_tons, status, assigned_order_id, driver_id, created_at, updated_at`

func (r *postgresRepo) ListTrucks(ctx context.Context) ([]*Truck, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+truckColumns+` FROM trucks ORDER BY plate ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var trucks []*Truck
	for rows.Next() {
		t, err := scanTruck(rows)
		if err != nil {
			return nil, err
		}
		trucks = append(trucks, t)
	}
	return trucks, rows.Err()
}

func (r *postgresRepo) GetTruck(ctx context.Context, id string) (*Truck, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid truck id: %w", err)
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+truckColumns+` FROM trucks WHERE id=$1`, uid)
	t, err := scanTruck(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("truck %s not found", id)
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresRepo) UpdateTruck(ctx context.Context, id string, update TruckUpdate) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE trucks SET status=$1, assigned_order_id=$2, driver_id=$3, updated_at=$4
		WHERE id=$5`,
		update.Status, update.AssignedOrderID, update.DriverID, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("truck %s not found", id)
	}
	return nil
}

func (r *postgresRepo) ListDrivers(ctx context.Context) ([]*Driver, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, hours_worked, hours_limit, available
		FROM drivers ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var drivers []*Driver
	for rows.Next() {
		d := &Driver{}
		if err := rows.Scan(&d.ID, &d.Name, &d.HoursWorked, &d.HoursLimit, &d.Available); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTruck(row rowScanner) (*Truck, error) {
	t := &Truck{}
	var orderID, driverID sql.NullString
	err := row.Scan(&t.ID, &t.Plate, &t.CapacityTons, &t.Status,
		&orderID, &driverID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if orderID.Valid {
		uid, _ := uuid.Parse(orderID.String)
		t.AssignedOrderID = &uid
	}
	if driverID.Valid {
		uid, _ := uuid.Parse(driverID.String)
		t.DriverID = &uid
	}
	return t, nil
}
