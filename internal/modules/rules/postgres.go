package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed rule repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, rule *Rule) error {
	condition, action, err := marshalParts(rule)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO fulfillment_rules (id, name, condition, action, priority, active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rule.ID, rule.Name, condition, action, rule.Priority, rule.Active)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Rule, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid rule id: %w", err)
	}
	rule, err := scanRule(r.db.QueryRowContext(ctx, `
		SELECT id, name, condition, action, priority, active, created_at, updated_at
		FROM fulfillment_rules WHERE id=$1`, uid))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("rule %s not found", id)
	}
	return rule, err
}

func (r *postgresRepo) List(ctx context.Context) ([]*Rule, error) {
	return r.queryRules(ctx, `
		SELECT id, name, condition, action, priority, active, created_at, updated_at
		FROM fulfillment_rules ORDER BY priority ASC, created_at ASC`)
}

func (r *postgresRepo) ListActive(ctx context.Context) ([]*Rule, error) {
	return r.queryRules(ctx, `
		SELECT id, name, condition, action, priority, active, created_at, updated_at
		FROM fulfillment_rules WHERE active=true ORDER BY priority ASC, created_at ASC`)
}

func (r *postgresRepo) Update(ctx context.Context, rule *Rule) error {
	condition, action, err := marshalParts(rule)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE fulfillment_rules
		SET name=$1, condition=$2, action=$3, priority=$4, active=$5, updated_at=$6
		WHERE id=$7`,
		rule.Name, condition, action, rule.Priority, rule.Active, time.Now(), rule.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rule %s not found", rule.ID)
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fulfillment_rules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rule %s not found", id)
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func marshalParts(rule *Rule) (condition, action []byte, err error) {
	if condition, err = json.Marshal(rule.Condition); err != nil {
		return nil, nil, fmt.Errorf("marshal condition: %w", err)
	}
	if action, err = json.Marshal(rule.Action); err != nil {
		return nil, nil, fmt.Errorf("marshal action: %w", err)
	}
	return condition, action, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*Rule, error) {
	rule := &Rule{}
	var condition, action []byte
	err := row.Scan(&rule.ID, &rule.Name, &condition, &action,
		&rule.Priority, &rule.Active, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(condition, &rule.Condition); err != nil {
		return nil, fmt.Errorf("unmarshal condition: %w", err)
	}
	if err := json.Unmarshal(action, &rule.Action); err != nil {
		return nil, fmt.Errorf("unmarshal action: %w", err)
	}
	return rule, nil
}

func (r *postgresRepo) queryRules(ctx context.Context, query string) ([]*Rule, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}
