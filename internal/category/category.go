package category

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/obligation"
)

var (
	ErrNotFound  = errors.New("category not found")
	ErrDuplicate = errors.New("category already exists")
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Category labels obligations and budgets. It is a per-scope lookup row;
// obligations store the name, not the id, so renames never rewrite history.
type Category struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	GroupID   *uuid.UUID
	Name      string
	Color     string
	CreatedAt time.Time
}

func (c *Category) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}

	if c.Color != "" && !colorPattern.MatchString(c.Color) {
		return fmt.Errorf("invalid color %q, expected #RRGGBB", c.Color)
	}

	return nil
}

//go:generate mockgen -source=category.go -destination=repository_mock.go -package=category
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context, scope obligation.Scope) ([]*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Scope obligation.Scope
	Name  string
	Color string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	c := &Category{
		OwnerID: params.Scope.OwnerID,
		GroupID: params.Scope.GroupID,
		Name:    params.Name,
		Color:   params.Color,
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating category: %w", err)
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) List(ctx context.Context, scope obligation.Scope) ([]*Category, error) {
	return s.repo.ListCategories(ctx, scope)
}

func (s *Service) Update(ctx context.Context, c *Category) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validating category: %w", err)
	}

	return s.repo.UpdateCategory(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCategory(ctx, id)
}
