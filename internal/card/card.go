package card

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("card not found")

// Card is a registered credit card; installment plans reference one.
type Card struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Name       string
	ClosingDay *int
	CreatedAt  time.Time
}

func (c *Card) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}

	if c.ClosingDay != nil && (*c.ClosingDay < 1 || *c.ClosingDay > 31) {
		return errors.New("closing day must be between 1 and 31")
	}

	return nil
}

//go:generate mockgen -source=card.go -destination=repository_mock.go -package=card
type Repository interface {
	CreateCard(ctx context.Context, c *Card) error
	GetCard(ctx context.Context, id uuid.UUID) (*Card, error)
	ListCards(ctx context.Context, ownerID uuid.UUID) ([]*Card, error)
	DeleteCard(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	OwnerID    uuid.UUID
	Name       string
	ClosingDay *int
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Card, error) {
	c := &Card{
		OwnerID:    params.OwnerID,
		Name:       params.Name,
		ClosingDay: params.ClosingDay,
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating card: %w", err)
	}

	if err := s.repo.CreateCard(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Card, error) {
	return s.repo.GetCard(ctx, id)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*Card, error) {
	return s.repo.ListCards(ctx, ownerID)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCard(ctx, id)
}
