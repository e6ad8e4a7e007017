package inventory

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed inventory repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) GetBalance(ctx context.Context, site Site, productID uuid.UUID) (float64, error) {
	var qty float64
	err := r.db.QueryRowContext(ctx,
		`SELECT quantity_tons FROM inventory_balances WHERE site_id=$1 AND product_id=$2`,
		site, productID).Scan(&qty)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}
