package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=group
type Repository interface {
	CreateGroup(ctx context.Context, g *Group, ownerID uuid.UUID) error
	ListGroupsFor(ctx context.Context, userID uuid.UUID) ([]*Group, error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*Member, error)

	CreateInvite(ctx context.Context, inv *Invite) error
	GetInvite(ctx context.Context, id uuid.UUID) (*Invite, error)
	ListInvitesFor(ctx context.Context, email string) ([]*Invite, error)
	SetInviteStatus(ctx context.Context, id uuid.UUID, status InviteStatus) error
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create makes a new group with the creator as its first member.
func (s *Service) Create(ctx context.Context, name string, ownerID uuid.UUID) (*Group, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}

	g := &Group{Name: name, OwnerID: ownerID}
	if err := s.repo.CreateGroup(ctx, g, ownerID); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*Group, error) {
	return s.repo.ListGroupsFor(ctx, userID)
}

// EnsureMember fails with ErrNotMember unless userID belongs to the group.
// Handlers call this before serving any group-scoped request.
func (s *Service) EnsureMember(ctx context.Context, groupID, userID uuid.UUID) error {
	ok, err := s.repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("checking membership: %w", err)
	}

	if !ok {
		return ErrNotMember
	}

	return nil
}

func (s *Service) ListMembers(ctx context.Context, groupID, requesterID uuid.UUID) ([]*Member, error) {
	if err := s.EnsureMember(ctx, groupID, requesterID); err != nil {
		return nil, err
	}

	return s.repo.ListMembers(ctx, groupID)
}

func (s *Service) Invite(ctx context.Context, groupID, inviterID uuid.UUID, email string) (*Invite, error) {
	if email == "" {
		return nil, errors.New("email is required")
	}

	if err := s.EnsureMember(ctx, groupID, inviterID); err != nil {
		return nil, err
	}

	inv := &Invite{GroupID: groupID, Email: email, Status: InvitePending}
	if err := s.repo.CreateInvite(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) ListInvites(ctx context.Context, email string) ([]*Invite, error) {
	return s.repo.ListInvitesFor(ctx, email)
}

// Accept joins the invited user to the group and marks the invite accepted.
// Only the addressee may accept: an invite id alone must not grant entry.
func (s *Service) Accept(ctx context.Context, inviteID, userID uuid.UUID, email string) error {
	inv, err := s.pendingInviteFor(ctx, inviteID, email)
	if err != nil {
		return err
	}

	if err := s.repo.AddMember(ctx, inv.GroupID, userID); err != nil {
		return fmt.Errorf("adding member: %w", err)
	}

	return s.repo.SetInviteStatus(ctx, inviteID, InviteAccepted)
}

func (s *Service) Decline(ctx context.Context, inviteID uuid.UUID, email string) error {
	if _, err := s.pendingInviteFor(ctx, inviteID, email); err != nil {
		return err
	}

	return s.repo.SetInviteStatus(ctx, inviteID, InviteDeclined)
}

func (s *Service) pendingInviteFor(ctx context.Context, inviteID uuid.UUID, email string) (*Invite, error) {
	inv, err := s.repo.GetInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}

	if inv.Email != email {
		return nil, ErrInviteNotFound
	}

	if inv.Status != InvitePending {
		return nil, fmt.Errorf("invite is already %s", inv.Status)
	}

	return inv, nil
}
