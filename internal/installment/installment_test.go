package installment_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfonseca/fluxo/internal/installment"
	"github.com/mfonseca/fluxo/internal/obligation"
)

func intPtr(n int) *int { return &n }

func row(description string, cardID uuid.UUID, total, index int, paid bool) *obligation.Obligation {
	return &obligation.Obligation{
		ID:               uuid.New(),
		Kind:             obligation.KindExpense,
		Amount:           decimal.NewFromInt(50),
		Description:      description,
		AnchorDate:       time.Date(2024, time.January+time.Month(index-1), 10, 0, 0, 0, 0, time.UTC),
		Recurrence:       obligation.RecurrenceOnce,
		PaymentMethod:    obligation.PaymentCard,
		CardID:           &cardID,
		InstallmentTotal: intPtr(total),
		InstallmentIndex: intPtr(index),
		IsPaid:           paid,
	}
}

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"notebook 3/12", "notebook"},
		{"lunch (2/5)", "lunch"},
		{"plain purchase", "plain purchase"},
		{"version 2/3 upgrade", "version 2/3 upgrade"},
		{"tv 4k 1/10", "tv 4k"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, installment.NormalizeDescription(tt.in), "input %q", tt.in)
	}
}

func TestGroupInstallments_SplitsByCard(t *testing.T) {
	cardA := uuid.New()
	cardB := uuid.New()

	groups := installment.GroupInstallments([]*obligation.Obligation{
		row("headphones 1/3", cardA, 3, 1, false),
		row("headphones 2/3", cardA, 3, 2, false),
		row("headphones 1/3", cardB, 3, 1, false),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "headphones", groups[0].Description)
	assert.Equal(t, "headphones", groups[1].Description)
	assert.Len(t, groups[0].Rows, 2)
	assert.Len(t, groups[1].Rows, 1)
}

func TestGroupInstallments_Progress(t *testing.T) {
	card := uuid.New()

	groups := installment.GroupInstallments([]*obligation.Obligation{
		row("sofa 1/5", card, 5, 1, true),
		row("sofa 2/5", card, 5, 2, true),
		row("sofa 3/5", card, 5, 3, false),
		row("sofa 4/5", card, 5, 4, false),
		row("sofa 5/5", card, 5, 5, false),
	})

	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, 2, g.PaidCount)
	assert.InDelta(t, 40.0, g.ProgressPercent, 1e-9)
	assert.False(t, g.IsFullyPaid)
	require.NotNil(t, g.NextUnpaid)
	assert.Equal(t, 3, *g.NextUnpaid.InstallmentIndex)
}

func TestGroupInstallments_ThreeRowsTwoPaid(t *testing.T) {
	card := uuid.New()

	groups := installment.GroupInstallments([]*obligation.Obligation{
		row("bike 3/3", card, 3, 3, false),
		row("bike 1/3", card, 3, 1, true),
		row("bike 2/3", card, 3, 2, true),
	})

	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, 2, g.PaidCount)
	assert.InDelta(t, 66.666666, g.ProgressPercent, 1e-4)
	require.NotNil(t, g.NextUnpaid)
	assert.Equal(t, 3, *g.NextUnpaid.InstallmentIndex)

	// Rows come back ordered by index regardless of input order.
	assert.Equal(t, 1, *g.Rows[0].InstallmentIndex)
	assert.Equal(t, 3, *g.Rows[2].InstallmentIndex)
}

func TestGroupInstallments_PaidToggleTransition(t *testing.T) {
	card := uuid.New()
	last := row("phone 3/3", card, 3, 3, false)
	rows := []*obligation.Obligation{
		row("phone 1/3", card, 3, 1, true),
		row("phone 2/3", card, 3, 2, true),
		last,
	}

	before := installment.GroupInstallments(rows)
	require.Len(t, before, 1)
	assert.False(t, before[0].IsFullyPaid)
	assert.Equal(t, last, before[0].NextUnpaid)

	last.IsPaid = true

	after := installment.GroupInstallments(rows)
	require.Len(t, after, 1)
	assert.True(t, after[0].IsFullyPaid)
	assert.Nil(t, after[0].NextUnpaid)
	assert.Equal(t, 3, after[0].PaidCount)
}

func TestGroupInstallments_ExcludesNonInstallmentRows(t *testing.T) {
	card := uuid.New()
	single := &obligation.Obligation{
		ID:            uuid.New(),
		Kind:          obligation.KindExpense,
		Amount:        decimal.NewFromInt(20),
		Description:   "groceries",
		Recurrence:    obligation.RecurrenceOnce,
		PaymentMethod: obligation.PaymentPix,
	}
	oneInstallment := row("charger 1/1", card, 1, 1, false)

	groups := installment.GroupInstallments([]*obligation.Obligation{
		single,
		oneInstallment,
		row("desk 1/2", card, 2, 1, false),
		row("desk 2/2", card, 2, 2, false),
	})

	require.Len(t, groups, 1)
	assert.Equal(t, "desk", groups[0].Description)
}
