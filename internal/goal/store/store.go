package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/goal"
	"github.com/mfonseca/fluxo/internal/obligation"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectGoalColumns = `id, owner_id, group_id, name, target, current, created_at, updated_at`

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	query := `
		INSERT INTO goals (owner_id, group_id, name, target, current, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		g.OwnerID, g.GroupID, g.Name, g.Target, g.Current,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating goal: %w", err)
	}

	return nil
}

func (s *Store) GetGoal(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	query := `SELECT ` + selectGoalColumns + ` FROM goals WHERE id = $1`

	var g goal.Goal

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.OwnerID, &g.GroupID, &g.Name, &g.Target, &g.Current, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, goal.ErrNotFound
		}

		return nil, fmt.Errorf("getting goal: %w", err)
	}

	return &g, nil
}

func (s *Store) ListGoals(ctx context.Context, scope obligation.Scope) ([]*goal.Goal, error) {
	query := `SELECT ` + selectGoalColumns + ` FROM goals`

	var args []any

	if scope.GroupID != nil {
		query += " WHERE group_id = $1"
		args = append(args, *scope.GroupID)
	} else {
		query += " WHERE owner_id = $1 AND group_id IS NULL"
		args = append(args, scope.OwnerID)
	}

	query += " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()

	var gs []*goal.Goal

	for rows.Next() {
		var g goal.Goal
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.GroupID, &g.Name, &g.Target, &g.Current, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}

		gs = append(gs, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goal rows: %w", err)
	}

	return gs, nil
}

func (s *Store) UpdateGoal(ctx context.Context, g *goal.Goal) error {
	query := `
		UPDATE goals
		SET name = $1, target = $2, current = $3, updated_at = NOW()
		WHERE id = $4
	`

	if _, err := s.db.ExecContext(ctx, query, g.Name, g.Target, g.Current, g.ID); err != nil {
		return fmt.Errorf("updating goal: %w", err)
	}

	return nil
}

func (s *Store) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}

	return nil
}
