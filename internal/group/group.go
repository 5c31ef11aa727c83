package group

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("group not found")
	ErrInviteNotFound = errors.New("invite not found")
	ErrNotMember      = errors.New("not a member of this group")
)

// Group is a shared-finance context. Obligations, appointments, budgets and
// goals created under a group are visible to every member.
type Group struct {
	ID        uuid.UUID
	Name      string
	OwnerID   uuid.UUID
	CreatedAt time.Time
}

type Member struct {
	GroupID  uuid.UUID
	UserID   uuid.UUID
	JoinedAt time.Time
}

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// Invite asks a user, addressed by email, to join a group.
type Invite struct {
	ID        uuid.UUID
	GroupID   uuid.UUID
	GroupName string
	Email     string
	Status    InviteStatus
	CreatedAt time.Time
}
