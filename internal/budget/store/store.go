package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/fluxo/internal/budget"
	"github.com/mfonseca/fluxo/internal/obligation"
)

// Store persists budgets and per-user spending limits. Budget amounts are
// plain numeric columns: they are targets chosen by the user, not tracked
// financial history.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		INSERT INTO budgets (owner_id, group_id, category, month, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		b.OwnerID, b.GroupID, b.Category, b.Month, b.Amount,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating budget: %w", err)
	}

	return nil
}

func (s *Store) ListBudgets(ctx context.Context, scope obligation.Scope, month string) ([]*budget.Budget, error) {
	query := `
		SELECT id, owner_id, group_id, category, month, amount, created_at
		FROM budgets
		WHERE month = $1
	`

	args := []any{month}

	if scope.GroupID != nil {
		query += " AND group_id = $2"
		args = append(args, *scope.GroupID)
	} else {
		query += " AND owner_id = $2 AND group_id IS NULL"
		args = append(args, scope.OwnerID)
	}

	query += " ORDER BY category ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer rows.Close()

	var bs []*budget.Budget

	for rows.Next() {
		var b budget.Budget
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.GroupID, &b.Category, &b.Month, &b.Amount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}

		bs = append(bs, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget rows: %w", err)
	}

	return bs, nil
}

func (s *Store) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	return nil
}

// GetSpendingLimit returns zero when no limit row exists, which callers read
// as "no limit configured".
func (s *Store) GetSpendingLimit(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	var limit decimal.Decimal

	err := s.db.QueryRowContext(ctx,
		`SELECT spending_limit FROM user_settings WHERE owner_id = $1`, ownerID,
	).Scan(&limit)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, nil
		}

		return decimal.Zero, fmt.Errorf("getting spending limit: %w", err)
	}

	return limit, nil
}

func (s *Store) SetSpendingLimit(ctx context.Context, ownerID uuid.UUID, limit decimal.Decimal) error {
	query := `
		INSERT INTO user_settings (owner_id, spending_limit, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_id) DO UPDATE SET spending_limit = EXCLUDED.spending_limit, updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, ownerID, limit); err != nil {
		return fmt.Errorf("setting spending limit: %w", err)
	}

	return nil
}
