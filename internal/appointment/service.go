package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/obligation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=appointment
type Repository interface {
	CreateAppointment(ctx context.Context, a *Appointment) error
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListAppointments(ctx context.Context, filter ListFilter) ([]*Appointment, error)
	UpdateAppointment(ctx context.Context, a *Appointment) error
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	Scope     obligation.Scope
	StartDate *time.Time
	EndDate   *time.Time
}

type CreateParams struct {
	Scope obligation.Scope
	Title string
	Notes string
	Date  time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Appointment, error) {
	a := &Appointment{
		OwnerID: params.Scope.OwnerID,
		GroupID: params.Scope.GroupID,
		Title:   params.Title,
		Notes:   params.Notes,
		Date:    obligation.DateOnly(params.Date),
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("validating appointment: %w", err)
	}

	if err := s.repo.CreateAppointment(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	return s.repo.ListAppointments(ctx, filter)
}

func (s *Service) Update(ctx context.Context, a *Appointment) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validating appointment: %w", err)
	}

	return s.repo.UpdateAppointment(ctx, a)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteAppointment(ctx, id)
}

// OnDate returns the scope's appointments falling on the target calendar day.
func (s *Service) OnDate(ctx context.Context, scope obligation.Scope, target time.Time) ([]*Appointment, error) {
	day := obligation.DateOnly(target)

	return s.repo.ListAppointments(ctx, ListFilter{
		Scope:     scope,
		StartDate: &day,
		EndDate:   &day,
	})
}
