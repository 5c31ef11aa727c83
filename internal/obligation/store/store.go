package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/fluxo/internal/crypto"
	"github.com/mfonseca/fluxo/internal/obligation"
)

// Store persists obligations with sensitive fields (amount, category,
// description) encrypted at rest through the injected codec. Queryable
// columns (dates, recurrence, kind, payment method) stay in the clear so
// filtering happens in SQL.
type Store struct {
	db    *sql.DB
	codec crypto.Codec
}

func New(db *sql.DB, codec crypto.Codec) *Store {
	return &Store{db: db, codec: codec}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectObligationColumns = `
	o.id, o.owner_id, o.group_id, o.kind, o.amount, o.category, o.description,
	o.anchor_date, o.recurrence, o.repetition_limit, o.payment_method, o.card_id,
	o.installment_total, o.installment_index, o.is_paid, o.created_at, o.updated_at
`

// scanObligation reads one row and decrypts its sensitive fields. An
// undecodable field is a hard error carrying the row id; it is never
// silently treated as zero.
func (s *Store) scanObligation(sc scanner) (*obligation.Obligation, error) {
	var o obligation.Obligation

	var kindStr, recurrenceStr, methodStr string

	var amountEnc, categoryEnc string

	var descriptionEnc sql.NullString

	if err := sc.Scan(
		&o.ID, &o.OwnerID, &o.GroupID, &kindStr, &amountEnc, &categoryEnc, &descriptionEnc,
		&o.AnchorDate, &recurrenceStr, &o.RepetitionLimit, &methodStr, &o.CardID,
		&o.InstallmentTotal, &o.InstallmentIndex, &o.IsPaid, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	o.Kind = obligation.Kind(kindStr)
	o.Recurrence = obligation.Recurrence(recurrenceStr)
	o.PaymentMethod = obligation.PaymentMethod(methodStr)

	amountStr, err := s.codec.Decode(amountEnc)
	if err != nil {
		return nil, fmt.Errorf("decoding amount of obligation %s: %w", o.ID, err)
	}

	o.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parsing amount of obligation %s: %w", o.ID, err)
	}

	if o.Category, err = s.codec.Decode(categoryEnc); err != nil {
		return nil, fmt.Errorf("decoding category of obligation %s: %w", o.ID, err)
	}

	if descriptionEnc.Valid {
		if o.Description, err = s.codec.Decode(descriptionEnc.String); err != nil {
			return nil, fmt.Errorf("decoding description of obligation %s: %w", o.ID, err)
		}
	}

	return &o, nil
}

type encodedFields struct {
	amount      string
	category    string
	description sql.NullString
}

func (s *Store) encode(o *obligation.Obligation) (encodedFields, error) {
	var enc encodedFields

	var err error

	if enc.amount, err = s.codec.Encode(o.Amount.String()); err != nil {
		return enc, fmt.Errorf("encoding amount: %w", err)
	}

	if enc.category, err = s.codec.Encode(o.Category); err != nil {
		return enc, fmt.Errorf("encoding category: %w", err)
	}

	if o.Description != "" {
		desc, err := s.codec.Encode(o.Description)
		if err != nil {
			return enc, fmt.Errorf("encoding description: %w", err)
		}

		enc.description = sql.NullString{String: desc, Valid: true}
	}

	return enc, nil
}

const insertObligationQuery = `
	INSERT INTO obligations (
		owner_id, group_id, kind, amount, category, description, anchor_date,
		recurrence, repetition_limit, payment_method, card_id,
		installment_total, installment_index, is_paid, batch_id, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
	RETURNING id, created_at, updated_at
`

func (s *Store) CreateObligation(ctx context.Context, o *obligation.Obligation) error {
	enc, err := s.encode(o)
	if err != nil {
		return err
	}

	err = s.db.QueryRowContext(ctx, insertObligationQuery,
		o.OwnerID, o.GroupID, o.Kind, enc.amount, enc.category, enc.description,
		o.AnchorDate, o.Recurrence, o.RepetitionLimit, o.PaymentMethod, o.CardID,
		o.InstallmentTotal, o.InstallmentIndex, o.IsPaid, nil,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating obligation: %w", err)
	}

	return nil
}

func (s *Store) GetObligation(ctx context.Context, id uuid.UUID) (*obligation.Obligation, error) {
	query := `SELECT ` + selectObligationColumns + `
		FROM obligations o
		WHERE o.id = $1 AND o.deleted_at IS NULL`

	o, err := s.scanObligation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, obligation.ErrNotFound
		}

		return nil, fmt.Errorf("getting obligation: %w", err)
	}

	return o, nil
}

func (s *Store) ListObligations(ctx context.Context, filter obligation.ListFilter) ([]*obligation.Obligation, error) {
	query := `SELECT ` + selectObligationColumns + `
		FROM obligations o
		WHERE o.deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Scope.GroupID != nil {
		query += fmt.Sprintf(" AND o.group_id = $%d", argIdx)

		args = append(args, *filter.Scope.GroupID)
		argIdx++
	} else {
		query += fmt.Sprintf(" AND o.owner_id = $%d AND o.group_id IS NULL", argIdx)

		args = append(args, filter.Scope.OwnerID)
		argIdx++
	}

	if filter.Kind != nil {
		query += fmt.Sprintf(" AND o.kind = $%d", argIdx)

		args = append(args, *filter.Kind)
		argIdx++
	}

	if filter.Recurrence != nil {
		query += fmt.Sprintf(" AND o.recurrence = $%d", argIdx)

		args = append(args, *filter.Recurrence)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND o.anchor_date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND o.anchor_date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.InstallmentsOnly {
		query += " AND o.installment_total > 1"
	}

	query += " ORDER BY o.anchor_date ASC, o.installment_index ASC NULLS FIRST"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing obligations: %w", err)
	}
	defer rows.Close()

	var os []*obligation.Obligation

	for rows.Next() {
		o, err := s.scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning obligation: %w", err)
		}

		os = append(os, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating obligation rows: %w", err)
	}

	return os, nil
}

func (s *Store) UpdateObligation(ctx context.Context, o *obligation.Obligation) error {
	enc, err := s.encode(o)
	if err != nil {
		return err
	}

	query := `
		UPDATE obligations
		SET kind = $1, amount = $2, category = $3, description = $4,
			anchor_date = $5, payment_method = $6, card_id = $7, updated_at = NOW()
		WHERE id = $8 AND deleted_at IS NULL
	`

	_, err = s.db.ExecContext(ctx, query,
		o.Kind, enc.amount, enc.category, enc.description,
		o.AnchorDate, o.PaymentMethod, o.CardID, o.ID,
	)
	if err != nil {
		return fmt.Errorf("updating obligation: %w", err)
	}

	return nil
}

func (s *Store) SetPaid(ctx context.Context, id uuid.UUID, paid bool) error {
	query := `
		UPDATE obligations
		SET is_paid = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query, paid, id)
	if err != nil {
		return fmt.Errorf("updating paid flag: %w", err)
	}

	return nil
}

func (s *Store) EndRecurrence(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE obligations
		SET recurrence = $1, repetition_limit = NULL, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query, obligation.RecurrenceOnce, id)
	if err != nil {
		return fmt.Errorf("ending recurrence: %w", err)
	}

	return nil
}

func (s *Store) DeleteObligation(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE obligations
		SET deleted_at = NOW()
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting obligation: %w", err)
	}

	return nil
}

type batchTx struct {
	store   *Store
	tx      *sql.Tx
	batchID uuid.UUID
}

// BeginBatch opens a transaction for a pre-materialized series and claims the
// client-supplied batch id. A batch id that was already claimed means the
// series was persisted (or is being persisted) by an earlier request, so the
// whole call fails with ErrDuplicateBatch rather than inserting duplicates.
func (s *Store) BeginBatch(ctx context.Context, batchID uuid.UUID) (obligation.BatchTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning batch tx: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO obligation_batches (id, created_at) VALUES ($1, NOW()) ON CONFLICT (id) DO NOTHING`,
		batchID,
	)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("claiming batch id: %w", err)
	}

	claimed, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("checking batch claim: %w", err)
	}

	if claimed == 0 {
		tx.Rollback()
		return nil, obligation.ErrDuplicateBatch
	}

	return &batchTx{store: s, tx: tx, batchID: batchID}, nil
}

func (b *batchTx) Commit() error   { return b.tx.Commit() }
func (b *batchTx) Rollback() error { return b.tx.Rollback() }

func (b *batchTx) CreateObligations(ctx context.Context, os []*obligation.Obligation) error {
	for _, o := range os {
		enc, err := b.store.encode(o)
		if err != nil {
			return err
		}

		err = b.tx.QueryRowContext(ctx, insertObligationQuery,
			o.OwnerID, o.GroupID, o.Kind, enc.amount, enc.category, enc.description,
			o.AnchorDate, o.Recurrence, o.RepetitionLimit, o.PaymentMethod, o.CardID,
			o.InstallmentTotal, o.InstallmentIndex, o.IsPaid, b.batchID,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating obligation: %w", err)
		}
	}

	return nil
}
