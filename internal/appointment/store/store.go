package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/appointment"
	"github.com/mfonseca/fluxo/internal/crypto"
)

// Store persists appointments; title and notes are encrypted at rest.
type Store struct {
	db    *sql.DB
	codec crypto.Codec
}

func New(db *sql.DB, codec crypto.Codec) *Store {
	return &Store{db: db, codec: codec}
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanAppointment(sc scanner) (*appointment.Appointment, error) {
	var a appointment.Appointment

	var titleEnc string

	var notesEnc sql.NullString

	if err := sc.Scan(
		&a.ID, &a.OwnerID, &a.GroupID, &titleEnc, &notesEnc, &a.Date, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if a.Title, err = s.codec.Decode(titleEnc); err != nil {
		return nil, fmt.Errorf("decoding title of appointment %s: %w", a.ID, err)
	}

	if notesEnc.Valid {
		if a.Notes, err = s.codec.Decode(notesEnc.String); err != nil {
			return nil, fmt.Errorf("decoding notes of appointment %s: %w", a.ID, err)
		}
	}

	return &a, nil
}

const selectAppointmentColumns = `
	a.id, a.owner_id, a.group_id, a.title, a.notes, a.date, a.created_at, a.updated_at
`

func (s *Store) CreateAppointment(ctx context.Context, a *appointment.Appointment) error {
	title, err := s.codec.Encode(a.Title)
	if err != nil {
		return fmt.Errorf("encoding title: %w", err)
	}

	var notes sql.NullString

	if a.Notes != "" {
		n, err := s.codec.Encode(a.Notes)
		if err != nil {
			return fmt.Errorf("encoding notes: %w", err)
		}

		notes = sql.NullString{String: n, Valid: true}
	}

	query := `
		INSERT INTO appointments (owner_id, group_id, title, notes, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		a.OwnerID, a.GroupID, title, notes, a.Date,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating appointment: %w", err)
	}

	return nil
}

func (s *Store) GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	query := `SELECT ` + selectAppointmentColumns + `
		FROM appointments a
		WHERE a.id = $1 AND a.deleted_at IS NULL`

	a, err := s.scanAppointment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appointment.ErrNotFound
		}

		return nil, fmt.Errorf("getting appointment: %w", err)
	}

	return a, nil
}

func (s *Store) ListAppointments(ctx context.Context, filter appointment.ListFilter) ([]*appointment.Appointment, error) {
	query := `SELECT ` + selectAppointmentColumns + `
		FROM appointments a
		WHERE a.deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Scope.GroupID != nil {
		query += fmt.Sprintf(" AND a.group_id = $%d", argIdx)

		args = append(args, *filter.Scope.GroupID)
		argIdx++
	} else {
		query += fmt.Sprintf(" AND a.owner_id = $%d AND a.group_id IS NULL", argIdx)

		args = append(args, filter.Scope.OwnerID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND a.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND a.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY a.date ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	defer rows.Close()

	var as []*appointment.Appointment

	for rows.Next() {
		a, err := s.scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}

		as = append(as, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating appointment rows: %w", err)
	}

	return as, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, a *appointment.Appointment) error {
	title, err := s.codec.Encode(a.Title)
	if err != nil {
		return fmt.Errorf("encoding title: %w", err)
	}

	var notes sql.NullString

	if a.Notes != "" {
		n, err := s.codec.Encode(a.Notes)
		if err != nil {
			return fmt.Errorf("encoding notes: %w", err)
		}

		notes = sql.NullString{String: n, Valid: true}
	}

	query := `
		UPDATE appointments
		SET title = $1, notes = $2, date = $3, updated_at = NOW()
		WHERE id = $4 AND deleted_at IS NULL
	`

	if _, err := s.db.ExecContext(ctx, query, title, notes, a.Date, a.ID); err != nil {
		return fmt.Errorf("updating appointment: %w", err)
	}

	return nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE appointments
		SET deleted_at = NOW()
		WHERE id = $1
	`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deleting appointment: %w", err)
	}

	return nil
}
