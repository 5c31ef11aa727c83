package obligation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("obligation not found")
	ErrDuplicateBatch = errors.New("batch already created")
)

// Kind classifies an obligation for cash-flow purposes.
type Kind string

const (
	KindExpense     Kind = "expense"
	KindIncome      Kind = "income"
	KindAppointment Kind = "appointment"
)

// Recurrence is the repetition policy of an obligation.
type Recurrence string

const (
	RecurrenceOnce    Recurrence = "once"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceMonthly Recurrence = "monthly"
)

// PaymentMethod records how an obligation is settled. Only card interacts
// with installment grouping.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentPix    PaymentMethod = "pix"
	PaymentCard   PaymentMethod = "card"
	PaymentOther  PaymentMethod = "other"
	PaymentIncome PaymentMethod = "income"
)

// Obligation is any dated financial commitment tracked by the system. Daily
// repeats and card installments are pre-materialized as independent rows at
// creation time; open-ended monthly recurrence is a single row evaluated
// lazily on read, because its occurrence count is unbounded.
type Obligation struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	GroupID          *uuid.UUID
	Kind             Kind
	Amount           decimal.Decimal
	Category         string
	Description      string
	AnchorDate       time.Time
	Recurrence       Recurrence
	RepetitionLimit  *int
	PaymentMethod    PaymentMethod
	CardID           *uuid.UUID
	InstallmentTotal *int
	InstallmentIndex *int
	IsPaid           bool
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// IsInstallment reports whether this row is one slice of a multi-payment
// card purchase.
func (o *Obligation) IsInstallment() bool {
	return o.InstallmentTotal != nil && *o.InstallmentTotal > 1
}

// Signed returns the obligation's contribution to a balance: positive for
// income, negative for expenses and all card rows, zero for appointments.
func (o *Obligation) Signed() decimal.Decimal {
	switch {
	case o.Kind == KindIncome:
		return o.Amount
	case o.Kind == KindExpense || o.PaymentMethod == PaymentCard:
		return o.Amount.Neg()
	default:
		return decimal.Zero
	}
}

func (k Kind) Valid() bool {
	switch k {
	case KindExpense, KindIncome, KindAppointment:
		return true
	}

	return false
}

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceOnce, RecurrenceDaily, RecurrenceMonthly:
		return true
	}

	return false
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentPix, PaymentCard, PaymentOther, PaymentIncome:
		return true
	}

	return false
}

// Validate checks the structural invariants of an obligation.
func (o *Obligation) Validate() error {
	if !o.Kind.Valid() {
		return fmt.Errorf("invalid kind %q", o.Kind)
	}

	if !o.Recurrence.Valid() {
		return fmt.Errorf("invalid recurrence %q", o.Recurrence)
	}

	if !o.PaymentMethod.Valid() {
		return fmt.Errorf("invalid payment method %q", o.PaymentMethod)
	}

	if o.AnchorDate.IsZero() {
		return errors.New("anchor date is required")
	}

	if o.Kind != KindAppointment && o.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("amount must be greater than zero")
	}

	if o.RepetitionLimit != nil {
		if *o.RepetitionLimit <= 0 {
			return errors.New("repetition limit must be positive")
		}

		if o.Recurrence == RecurrenceOnce {
			return errors.New("repetition limit requires a daily or monthly recurrence")
		}
	}

	if o.InstallmentTotal != nil {
		if o.PaymentMethod != PaymentCard {
			return errors.New("installments require card payment")
		}

		if o.InstallmentIndex == nil || *o.InstallmentIndex < 1 || *o.InstallmentIndex > *o.InstallmentTotal {
			return errors.New("installment index out of range")
		}
	}

	return nil
}
