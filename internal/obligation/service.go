package obligation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=obligation
type Repository interface {
	CreateObligation(ctx context.Context, o *Obligation) error
	GetObligation(ctx context.Context, id uuid.UUID) (*Obligation, error)
	ListObligations(ctx context.Context, filter ListFilter) ([]*Obligation, error)
	UpdateObligation(ctx context.Context, o *Obligation) error
	SetPaid(ctx context.Context, id uuid.UUID, paid bool) error
	EndRecurrence(ctx context.Context, id uuid.UUID) error
	DeleteObligation(ctx context.Context, id uuid.UUID) error

	BeginBatch(ctx context.Context, batchID uuid.UUID) (BatchTx, error)
}

// BatchTx wraps the transactional creation of a pre-materialized series
// (daily repeats, card installments). The batch id passed to BeginBatch is a
// client-generated idempotency key: replaying it fails with
// ErrDuplicateBatch instead of persisting the series twice.
type BatchTx interface {
	CreateObligations(ctx context.Context, os []*Obligation) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Scope identifies whose rows an operation touches: the owner's personal
// rows when GroupID is nil, a shared group's rows otherwise. Threaded
// explicitly through every call.
type Scope struct {
	OwnerID uuid.UUID
	GroupID *uuid.UUID
}

type CreateParams struct {
	Scope           Scope
	Kind            Kind
	Amount          decimal.Decimal
	Category        string
	Description     string
	AnchorDate      time.Time
	Recurrence      Recurrence
	RepetitionLimit *int
	PaymentMethod   PaymentMethod
	CardID          *uuid.UUID
}

type ListFilter struct {
	Scope            Scope
	Kind             *Kind
	Recurrence       *Recurrence
	StartDate        *time.Time
	EndDate          *time.Time
	InstallmentsOnly bool
}

func (p CreateParams) toObligation() *Obligation {
	return &Obligation{
		OwnerID:         p.Scope.OwnerID,
		GroupID:         p.Scope.GroupID,
		Kind:            p.Kind,
		Amount:          p.Amount,
		Category:        p.Category,
		Description:     p.Description,
		AnchorDate:      DateOnly(p.AnchorDate),
		Recurrence:      p.Recurrence,
		RepetitionLimit: p.RepetitionLimit,
		PaymentMethod:   p.PaymentMethod,
		CardID:          p.CardID,
	}
}

// Create persists a single obligation. Monthly recurrence stays a single
// lazily-evaluated row even when bounded by a repetition limit.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Obligation, error) {
	o := params.toObligation()
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("validating obligation: %w", err)
	}

	if err := s.repo.CreateObligation(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

// CreateDailySeries expands a daily repeat into repetitions independent
// once-rows, one day apart, each suffixed " (i/N)".
func (s *Service) CreateDailySeries(ctx context.Context, params CreateParams, repetitions int, batchID uuid.UUID) ([]*Obligation, error) {
	if repetitions < 1 {
		return nil, errors.New("repetitions must be at least 1")
	}

	rows := make([]*Obligation, repetitions)

	for i := range repetitions {
		o := params.toObligation()
		o.Recurrence = RecurrenceOnce
		o.RepetitionLimit = nil
		o.AnchorDate = DateOnly(params.AnchorDate).AddDate(0, 0, i)
		o.Description = fmt.Sprintf("%s (%d/%d)", params.Description, i+1, repetitions)

		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("validating obligation %d: %w", i+1, err)
		}

		rows[i] = o
	}

	if err := s.createBatch(ctx, batchID, rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// CreateInstallmentPlan expands a card purchase into installments rows one
// calendar month apart, each suffixed " i/N". The total is grossed up by
// interestRate percent before being split evenly, rounded to cents per row.
func (s *Service) CreateInstallmentPlan(ctx context.Context, params CreateParams, installments int, interestRate decimal.Decimal, batchID uuid.UUID) ([]*Obligation, error) {
	if installments < 2 {
		return nil, errors.New("an installment plan needs at least 2 installments")
	}

	if params.CardID == nil {
		return nil, errors.New("an installment plan needs a card")
	}

	if interestRate.IsNegative() {
		return nil, errors.New("interest rate cannot be negative")
	}

	hundred := decimal.NewFromInt(100)
	final := params.Amount.Mul(decimal.NewFromInt(1).Add(interestRate.Div(hundred)))
	perInstallment := final.DivRound(decimal.NewFromInt(int64(installments)), 2)

	anchor := DateOnly(params.AnchorDate)
	rows := make([]*Obligation, installments)

	for i := range installments {
		o := params.toObligation()
		o.Kind = KindExpense
		o.PaymentMethod = PaymentCard
		o.Recurrence = RecurrenceOnce
		o.RepetitionLimit = nil
		o.Amount = perInstallment
		o.AnchorDate = AddMonthsClamped(anchor, i)
		o.Description = fmt.Sprintf("%s %d/%d", params.Description, i+1, installments)
		o.InstallmentTotal = intp(installments)
		o.InstallmentIndex = intp(i + 1)

		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("validating installment %d: %w", i+1, err)
		}

		rows[i] = o
	}

	if err := s.createBatch(ctx, batchID, rows); err != nil {
		return nil, err
	}

	return rows, nil
}

func (s *Service) createBatch(ctx context.Context, batchID uuid.UUID, rows []*Obligation) error {
	btx, err := s.repo.BeginBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("beginning batch: %w", err)
	}
	defer btx.Rollback()

	if err := btx.CreateObligations(ctx, rows); err != nil {
		return fmt.Errorf("creating obligations: %w", err)
	}

	if err := btx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Obligation, error) {
	return s.repo.GetObligation(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Obligation, error) {
	return s.repo.ListObligations(ctx, filter)
}

func (s *Service) Update(ctx context.Context, o *Obligation) error {
	if o.Recurrence != RecurrenceOnce {
		return errors.New("recurring obligations cannot be edited, end the recurrence instead")
	}

	if err := o.Validate(); err != nil {
		return fmt.Errorf("validating obligation: %w", err)
	}

	return s.repo.UpdateObligation(ctx, o)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteObligation(ctx, id)
}

// SetPaid flips the paid flag on a single installment row. It never cascades
// to other rows of the same plan.
func (s *Service) SetPaid(ctx context.Context, id uuid.UUID, paid bool) error {
	o, err := s.repo.GetObligation(ctx, id)
	if err != nil {
		return err
	}

	if !o.IsInstallment() {
		return errors.New("paid flag applies to installment rows only")
	}

	return s.repo.SetPaid(ctx, id, paid)
}

// EndRecurrence stops future occurrences of a monthly recurring obligation
// by turning it into a once-row. Historical pre-materialized rows are not
// touched.
func (s *Service) EndRecurrence(ctx context.Context, id uuid.UUID) error {
	o, err := s.repo.GetObligation(ctx, id)
	if err != nil {
		return err
	}

	if o.IsInstallment() {
		return errors.New("installment rows are not recurring")
	}

	if o.Recurrence != RecurrenceMonthly {
		return errors.New("only monthly recurrences can be ended")
	}

	return s.repo.EndRecurrence(ctx, id)
}

// Upcoming is a pending occurrence of a monthly recurrence inside a lookahead
// window.
type Upcoming struct {
	Obligation *Obligation
	DueDate    time.Time
}

// ListUpcoming returns the next occurrence of every monthly recurrence in
// scope that falls within days of from, soonest first.
func (s *Service) ListUpcoming(ctx context.Context, scope Scope, from time.Time, days int) ([]Upcoming, error) {
	monthly := RecurrenceMonthly

	rows, err := s.repo.ListObligations(ctx, ListFilter{Scope: scope, Recurrence: &monthly})
	if err != nil {
		return nil, fmt.Errorf("listing obligations: %w", err)
	}

	horizon := DateOnly(from).AddDate(0, 0, days)

	var upcoming []Upcoming

	for _, o := range rows {
		due, ok := o.NextOccurrence(from)
		if !ok || due.After(horizon) {
			continue
		}

		upcoming = append(upcoming, Upcoming{Obligation: o, DueDate: due})
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(upcoming[j].DueDate)
	})

	return upcoming, nil
}

// DueOn returns every obligation in scope with an occurrence on the target
// date.
func (s *Service) DueOn(ctx context.Context, scope Scope, target time.Time) ([]*Obligation, error) {
	rows, err := s.repo.ListObligations(ctx, ListFilter{Scope: scope})
	if err != nil {
		return nil, fmt.Errorf("listing obligations: %w", err)
	}

	var due []*Obligation

	for _, o := range rows {
		if o.IsDueOn(target) {
			due = append(due, o)
		}
	}

	return due, nil
}

// AddMonthsClamped adds n calendar months, clamping to the last day when the
// target month is shorter. Installment dates use this so a purchase on the
// 31st bills on the 28th/30th of shorter months instead of rolling over.
func AddMonthsClamped(t time.Time, n int) time.Time {
	monthStart := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	target := monthStart.AddDate(0, n, 0)
	lastDay := target.AddDate(0, 1, -1).Day()

	day := t.Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, t.Location())
}

func intp(n int) *int { return &n }
