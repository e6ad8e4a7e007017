package approval

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed approval repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// ── assignment requests ──────────────────────────────────────────────────────

const assignmentColumns = `id, order_id, source_type, source_id, truck_id, from_order_id,
	status, requested_by, approved_by, rejection_reason, created_at, resolved_at`

func (r *postgresRepo) CreateAssignment(ctx context.Context, a *AssignmentRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assignment_requests
		  (id, order_id, source_type, source_id, truck_id, from_order_id, status, requested_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.OrderID, a.SourceType, a.SourceID, a.TruckID, a.FromOrderID, a.Status, a.RequestedBy)
	if err != nil {
		return fmt.Errorf("insert assignment request: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetAssignment(ctx context.Context, id string) (*AssignmentRequest, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid request id: %w", err)
	}
	a, err := scanAssignment(r.db.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignment_requests WHERE id=$1`, uid))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("assignment request %s not found", id)
	}
	return a, err
}

func (r *postgresRepo) ListAssignments(ctx context.Context, status string) ([]*AssignmentRequest, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignment_requests`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*AssignmentRequest
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *postgresRepo) ResolveAssignment(ctx context.Context, id string, to AssignmentStatus, approver, reason string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE assignment_requests
		SET status=$1, approved_by=$2, rejection_reason=$3, resolved_at=$4
		WHERE id=$5 AND status=$6`,
		to, approver, reason, time.Now(), id, AssignmentPending)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ── redirect requests ────────────────────────────────────────────────────────

const redirectColumns = `id, from_order_id, to_order_id, truck_id, status, requested_by,
	jefatura_approver, jefatura_at, gerencia_approver, gerencia_at, rejection_reason, created_at, updated_at`

func (r *postgresRepo) CreateRedirect(ctx context.Context, rr *RedirectRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO redirect_requests
		  (id, from_order_id, to_order_id, truck_id, status, requested_by)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rr.ID, rr.FromOrderID, rr.ToOrderID, rr.TruckID, rr.Status, rr.RequestedBy)
	if err != nil {
		return fmt.Errorf("insert redirect request: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetRedirect(ctx context.Context, id string) (*RedirectRequest, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid request id: %w", err)
	}
	rr, err := scanRedirect(r.db.QueryRowContext(ctx,
		`SELECT `+redirectColumns+` FROM redirect_requests WHERE id=$1`, uid))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("redirect request %s not found", id)
	}
	return rr, err
}

func (r *postgresRepo) ListRedirects(ctx context.Context, status string) ([]*RedirectRequest, error) {
	query := `SELECT ` + redirectColumns + ` FROM redirect_requests`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*RedirectRequest
	for rows.Next() {
		rr, err := scanRedirect(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *postgresRepo) PromoteRedirect(ctx context.Context, id string, approver string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE redirect_requests
		SET status=$1, jefatura_approver=$2, jefatura_at=$3, updated_at=$3
		WHERE id=$4 AND status=$5`,
		RedirectPendingGerencia, approver, time.Now(), id, RedirectPendingJefatura)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *postgresRepo) ResolveRedirect(ctx context.Context, id string, to RedirectStatus, approver, reason string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE redirect_requests
		SET status=$1, gerencia_approver=$2, gerencia_at=$3, rejection_reason=$4, updated_at=$3
		WHERE id=$5 AND status IN ($6,$7,$8)`,
		to, approver, time.Now(), reason, id,
		RedirectPendingApproval, RedirectPendingJefatura, RedirectPendingGerencia)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAssignment(row rowScanner) (*AssignmentRequest, error) {
	a := &AssignmentRequest{}
	var truckID, fromOrderID sql.NullString
	var approvedBy, reason sql.NullString
	var resolvedAt sql.NullTime
	err := row.Scan(&a.ID, &a.OrderID, &a.SourceType, &a.SourceID, &truckID, &fromOrderID,
		&a.Status, &a.RequestedBy, &approvedBy, &reason, &a.CreatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	if truckID.Valid {
		uid, _ := uuid.Parse(truckID.String)
		a.TruckID = &uid
	}
	if fromOrderID.Valid {
		uid, _ := uuid.Parse(fromOrderID.String)
		a.FromOrderID = &uid
	}
	a.ApprovedBy = approvedBy.String
	a.RejectionReason = reason.String
	if resolvedAt.Valid {
		a.ResolvedAt = &resolvedAt.Time
	}
	return a, nil
}

func scanRedirect(row rowScanner) (*RedirectRequest, error) {
	rr := &RedirectRequest{}
	var jefApprover, gerApprover, reason sql.NullString
	var jefAt, gerAt sql.NullTime
	err := row.Scan(&rr.ID, &rr.FromOrderID, &rr.ToOrderID, &rr.TruckID, &rr.Status, &rr.RequestedBy,
		&jefApprover, &jefAt, &gerApprover, &gerAt, &reason, &rr.CreatedAt, &rr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rr.JefaturaApprover = jefApprover.String
	rr.GerenciaApprover = gerApprover.String
	rr.RejectionReason = reason.String
	if jefAt.Valid {
		rr.JefaturaAt = &jefAt.Time
	}
	if gerAt.Valid {
		rr.GerenciaAt = &gerAt.Time
	}
	return rr, nil
}
