package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/card"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateCard(ctx context.Context, c *card.Card) error {
	query := `
		INSERT INTO credit_cards (owner_id, name, closing_day, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, c.OwnerID, c.Name, c.ClosingDay).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating card: %w", err)
	}

	return nil
}

func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	query := `SELECT id, owner_id, name, closing_day, created_at FROM credit_cards WHERE id = $1`

	var c card.Card

	err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.OwnerID, &c.Name, &c.ClosingDay, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, card.ErrNotFound
		}

		return nil, fmt.Errorf("getting card: %w", err)
	}

	return &c, nil
}

func (s *Store) ListCards(ctx context.Context, ownerID uuid.UUID) ([]*card.Card, error) {
	query := `SELECT id, owner_id, name, closing_day, created_at FROM credit_cards WHERE owner_id = $1 ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	defer rows.Close()

	var cs []*card.Card

	for rows.Next() {
		var c card.Card
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.ClosingDay, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning card: %w", err)
		}

		cs = append(cs, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating card rows: %w", err)
	}

	return cs, nil
}

func (s *Store) DeleteCard(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting card: %w", err)
	}

	return nil
}
