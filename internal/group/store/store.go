package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/group"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateGroup inserts the group and its first membership atomically.
func (s *Store) CreateGroup(ctx context.Context, g *group.Group, ownerID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO groups (name, owner_id, created_at) VALUES ($1, $2, NOW()) RETURNING id, created_at`,
		g.Name, ownerID,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating group: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, NOW())`,
		g.ID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("adding owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) ListGroupsFor(ctx context.Context, userID uuid.UUID) ([]*group.Group, error) {
	query := `
		SELECT g.id, g.name, g.owner_id, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var gs []*group.Group

	for rows.Next() {
		var g group.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}

		gs = append(gs, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating group rows: %w", err)
	}

	return gs, nil
}

func (s *Store) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}

	return exists, nil
}

func (s *Store) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*group.Member, error) {
	query := `SELECT group_id, user_id, joined_at FROM group_members WHERE group_id = $1 ORDER BY joined_at ASC`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var ms []*group.Member

	for rows.Next() {
		var m group.Member
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}

		ms = append(ms, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating member rows: %w", err)
	}

	return ms, nil
}

func (s *Store) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	query := `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (group_id, user_id) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, groupID, userID); err != nil {
		return fmt.Errorf("adding member: %w", err)
	}

	return nil
}

func (s *Store) CreateInvite(ctx context.Context, inv *group.Invite) error {
	query := `
		INSERT INTO group_invites (group_id, email, status, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, inv.GroupID, inv.Email, inv.Status).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating invite: %w", err)
	}

	return nil
}

const selectInviteColumns = `
	i.id, i.group_id, g.name, i.email, i.status, i.created_at
`

func (s *Store) GetInvite(ctx context.Context, id uuid.UUID) (*group.Invite, error) {
	query := `SELECT ` + selectInviteColumns + `
		FROM group_invites i
		JOIN groups g ON g.id = i.group_id
		WHERE i.id = $1`

	var inv group.Invite

	var status string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID, &inv.GroupID, &inv.GroupName, &inv.Email, &status, &inv.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, group.ErrInviteNotFound
		}

		return nil, fmt.Errorf("getting invite: %w", err)
	}

	inv.Status = group.InviteStatus(status)

	return &inv, nil
}

func (s *Store) ListInvitesFor(ctx context.Context, email string) ([]*group.Invite, error) {
	query := `SELECT ` + selectInviteColumns + `
		FROM group_invites i
		JOIN groups g ON g.id = i.group_id
		WHERE i.email = $1 AND i.status = $2
		ORDER BY i.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, email, group.InvitePending)
	if err != nil {
		return nil, fmt.Errorf("listing invites: %w", err)
	}
	defer rows.Close()

	var invs []*group.Invite

	for rows.Next() {
		var inv group.Invite

		var status string

		if err := rows.Scan(&inv.ID, &inv.GroupID, &inv.GroupName, &inv.Email, &status, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning invite: %w", err)
		}

		inv.Status = group.InviteStatus(status)
		invs = append(invs, &inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invite rows: %w", err)
	}

	return invs, nil
}

func (s *Store) SetInviteStatus(ctx context.Context, id uuid.UUID, status group.InviteStatus) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE group_invites SET status = $1 WHERE id = $2`, status, id); err != nil {
		return fmt.Errorf("updating invite status: %w", err)
	}

	return nil
}
