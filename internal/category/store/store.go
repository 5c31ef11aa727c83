package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/category"
	"github.com/mfonseca/fluxo/internal/obligation"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectCategoryColumns = `id, owner_id, group_id, name, color, created_at`

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	// The partial unique indexes make the conflict target the scoped name;
	// an empty RETURNING set means the name is already taken.
	query := `
		INSERT INTO categories (owner_id, group_id, name, color, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT DO NOTHING
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, c.OwnerID, c.GroupID, c.Name, c.Color).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return category.ErrDuplicate
		}

		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM categories WHERE id = $1`

	var c category.Category

	err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.OwnerID, &c.GroupID, &c.Name, &c.Color, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, category.ErrNotFound
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	return &c, nil
}

func (s *Store) ListCategories(ctx context.Context, scope obligation.Scope) ([]*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM categories`

	var args []any

	if scope.GroupID != nil {
		query += " WHERE group_id = $1"
		args = append(args, *scope.GroupID)
	} else {
		query += " WHERE owner_id = $1 AND group_id IS NULL"
		args = append(args, scope.OwnerID)
	}

	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cs []*category.Category

	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.GroupID, &c.Name, &c.Color, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		cs = append(cs, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return cs, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = $1, color = $2 WHERE id = $3`,
		c.Name, c.Color, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}

	if affected == 0 {
		return category.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	return nil
}
