package delivery

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed delivery repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, d *Delivery) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, order_id, truck_id, driver_id, status, eta)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		d.ID, d.OrderID, d.TruckID, d.DriverID, d.Status, d.ETA)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetActiveByOrder(ctx context.Context, orderID uuid.UUID) (*Delivery, error) {
	d := &Delivery{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, truck_id, driver_id, status, eta, created_at
		FROM deliveries WHERE order_id=$1 AND status <> $2
		ORDER BY created_at DESC LIMIT 1`,
		orderID, StatusDelivered).
		Scan(&d.ID, &d.OrderID, &d.TruckID, &d.DriverID, &d.Status, &d.ETA, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *postgresRepo) Delete(ctx context.Context, orderID, truckID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM deliveries WHERE order_id=$1 AND truck_id=$2`, orderID, truckID)
	return err
}

func (r *postgresRepo) FindPassedCertificate(ctx context.Context, orderID uuid.UUID) (*Certificate, error) {
	c := &Certificate{}
	var truckID sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, certificate_id, order_id, truck_id, passed, issued_at
		FROM qc_certificates WHERE order_id=$1 AND passed=true
		ORDER BY issued_at DESC LIMIT 1`, orderID).
		Scan(&c.ID, &c.CertificateID, &c.OrderID, &truckID, &c.Passed, &c.IssuedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if truckID.Valid {
		uid, _ := uuid.Parse(truckID.String)
		c.TruckID = &uid
	}
	return c, nil
}

func (r *postgresRepo) LinkCertificateToTruck(ctx context.Context, certID, truckID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE qc_certificates SET truck_id=$1, updated_at=$2 WHERE id=$3`,
		truckID, time.Now(), certID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("certificate %s not found", certID)
	}
	return nil
}
