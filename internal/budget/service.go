package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/fluxo/internal/obligation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	ListBudgets(ctx context.Context, scope obligation.Scope, month string) ([]*Budget, error)
	DeleteBudget(ctx context.Context, id uuid.UUID) error

	GetSpendingLimit(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)
	SetSpendingLimit(ctx context.Context, ownerID uuid.UUID, limit decimal.Decimal) error
}

// Service manages budgets and the monthly spending limit. Spent figures are
// computed from the obligation set on demand, never stored.
type Service struct {
	repo        Repository
	obligations *obligation.Service
}

func NewService(repo Repository, obligations *obligation.Service) *Service {
	return &Service{repo: repo, obligations: obligations}
}

type CreateParams struct {
	Scope    obligation.Scope
	Category string
	Month    string
	Amount   decimal.Decimal
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Budget, error) {
	b := &Budget{
		OwnerID:  params.Scope.OwnerID,
		GroupID:  params.Scope.GroupID,
		Category: params.Category,
		Month:    params.Month,
		Amount:   params.Amount,
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validating budget: %w", err)
	}

	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteBudget(ctx, id)
}

// ListProgress returns the scope's budgets for a month joined with the
// actual category spending in that month.
func (s *Service) ListProgress(ctx context.Context, scope obligation.Scope, month string) ([]Progress, error) {
	budgets, err := s.repo.ListBudgets(ctx, scope, month)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}

	if len(budgets) == 0 {
		return nil, nil
	}

	start, err := time.Parse(MonthLayout, month)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", month, err)
	}

	end := start.AddDate(0, 1, -1)

	rows, err := s.obligations.List(ctx, obligation.ListFilter{
		Scope:     scope,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, fmt.Errorf("listing obligations: %w", err)
	}

	spentByCategory := make(map[string]decimal.Decimal)

	for _, o := range rows {
		if o.Kind != obligation.KindExpense && o.PaymentMethod != obligation.PaymentCard {
			continue
		}

		spentByCategory[o.Category] = spentByCategory[o.Category].Add(o.Amount)
	}

	progress := make([]Progress, len(budgets))

	for i, b := range budgets {
		spent := spentByCategory[b.Category]
		percent, _ := spent.Div(b.Amount).Mul(decimal.NewFromInt(100)).Float64()

		progress[i] = Progress{
			Budget:    b,
			Spent:     spent,
			Remaining: b.Amount.Sub(spent),
			Percent:   percent,
		}
	}

	return progress, nil
}

// CheckSpendingLimit compares the owner's personal expenses in now's month
// against the configured limit.
func (s *Service) CheckSpendingLimit(ctx context.Context, ownerID uuid.UUID, now time.Time) (LimitReport, error) {
	limit, err := s.repo.GetSpendingLimit(ctx, ownerID)
	if err != nil {
		return LimitReport{}, fmt.Errorf("getting spending limit: %w", err)
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, -1)

	rows, err := s.obligations.List(ctx, obligation.ListFilter{
		Scope:     obligation.Scope{OwnerID: ownerID},
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return LimitReport{}, fmt.Errorf("listing obligations: %w", err)
	}

	spent := decimal.Zero

	for _, o := range rows {
		if o.Kind == obligation.KindExpense || o.PaymentMethod == obligation.PaymentCard {
			spent = spent.Add(o.Amount)
		}
	}

	return EvaluateLimit(limit, spent), nil
}

func (s *Service) SetSpendingLimit(ctx context.Context, ownerID uuid.UUID, limit decimal.Decimal) error {
	if limit.IsNegative() {
		return fmt.Errorf("spending limit cannot be negative")
	}

	return s.repo.SetSpendingLimit(ctx, ownerID, limit)
}
