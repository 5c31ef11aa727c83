package goal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/fluxo/internal/obligation"
)

var ErrNotFound = errors.New("goal not found")

// Goal is a savings target with a running contribution total.
type Goal struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	GroupID   *uuid.UUID
	Name      string
	Target    decimal.Decimal
	Current   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Percent returns the completion ratio as a percentage; it is not clamped,
// over-funded goals read as more than 100.
func (g *Goal) Percent() float64 {
	if g.Target.IsZero() {
		return 0
	}

	p, _ := g.Current.Div(g.Target).Mul(decimal.NewFromInt(100)).Float64()

	return p
}

func (g *Goal) Validate() error {
	if g.Name == "" {
		return errors.New("name is required")
	}

	if g.Target.LessThanOrEqual(decimal.Zero) {
		return errors.New("target must be greater than zero")
	}

	if g.Current.IsNegative() {
		return errors.New("current amount cannot be negative")
	}

	return nil
}

//go:generate mockgen -source=goal.go -destination=repository_mock.go -package=goal
type Repository interface {
	CreateGoal(ctx context.Context, g *Goal) error
	GetGoal(ctx context.Context, id uuid.UUID) (*Goal, error)
	ListGoals(ctx context.Context, scope obligation.Scope) ([]*Goal, error)
	UpdateGoal(ctx context.Context, g *Goal) error
	DeleteGoal(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Scope   obligation.Scope
	Name    string
	Target  decimal.Decimal
	Current decimal.Decimal
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Goal, error) {
	g := &Goal{
		OwnerID: params.Scope.OwnerID,
		GroupID: params.Scope.GroupID,
		Name:    params.Name,
		Target:  params.Target,
		Current: params.Current,
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("validating goal: %w", err)
	}

	if err := s.repo.CreateGoal(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) List(ctx context.Context, scope obligation.Scope) ([]*Goal, error) {
	return s.repo.ListGoals(ctx, scope)
}

// Contribute adds amount to the goal's running total. Negative amounts take
// money back out but never below zero.
func (s *Service) Contribute(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*Goal, error) {
	g, err := s.repo.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := g.Current.Add(amount)
	if updated.IsNegative() {
		return nil, errors.New("contribution would make the goal negative")
	}

	g.Current = updated

	if err := s.repo.UpdateGoal(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteGoal(ctx, id)
}
