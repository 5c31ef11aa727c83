package projection_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfonseca/fluxo/internal/obligation"
	"github.com/mfonseca/fluxo/internal/projection"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(n int) *int { return &n }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProject_EmptySet(t *testing.T) {
	points, err := projection.Project(nil, dec("250.75"), 6, date(2024, time.March, 14))
	require.NoError(t, err)
	require.Len(t, points, 6)

	for i, p := range points {
		assert.Equal(t, date(2024, time.March+time.Month(i), 1), p.Month)
		assert.True(t, p.Inflow.IsZero())
		assert.True(t, p.Outflow.IsZero())
		assert.True(t, dec("250.75").Equal(p.Balance), "month %d balance %s", i, p.Balance)
	}
}

func TestProject_InvalidHorizon(t *testing.T) {
	_, err := projection.Project(nil, decimal.Zero, 0, date(2024, time.March, 1))
	assert.Error(t, err)
}

func TestProject_NegativeAmountRejected(t *testing.T) {
	rows := []*obligation.Obligation{{
		ID:         uuid.New(),
		Kind:       obligation.KindExpense,
		Amount:     dec("-10"),
		Recurrence: obligation.RecurrenceMonthly,
		AnchorDate: date(2024, time.January, 1),
	}}

	_, err := projection.Project(rows, decimal.Zero, 3, date(2024, time.January, 1))
	assert.Error(t, err)
}

// Anchor 2024-01-15, monthly, three repetitions of 100: outflow in Jan, Feb
// and Mar, nothing in Apr, balances -100/-200/-300/-300.
func TestProject_BoundedMonthlyExpense(t *testing.T) {
	rows := []*obligation.Obligation{{
		Kind:            obligation.KindExpense,
		Amount:          dec("100"),
		Recurrence:      obligation.RecurrenceMonthly,
		RepetitionLimit: intPtr(3),
		AnchorDate:      date(2024, time.January, 15),
		PaymentMethod:   obligation.PaymentCash,
	}}

	points, err := projection.Project(rows, decimal.Zero, 4, date(2024, time.January, 20))
	require.NoError(t, err)
	require.Len(t, points, 4)

	wantOutflow := []string{"100", "100", "100", "0"}
	wantBalance := []string{"-100", "-200", "-300", "-300"}

	for i, p := range points {
		assert.True(t, dec(wantOutflow[i]).Equal(p.Outflow), "month %d outflow %s", i, p.Outflow)
		assert.True(t, dec(wantBalance[i]).Equal(p.Balance), "month %d balance %s", i, p.Balance)
	}
}

// The month-level check ignores the day-of-month: an obligation anchored on
// the 31st still contributes to a 30-day month.
func TestProject_MonthLevelCheckIgnoresDay(t *testing.T) {
	rows := []*obligation.Obligation{{
		Kind:          obligation.KindExpense,
		Amount:        dec("50"),
		Recurrence:    obligation.RecurrenceMonthly,
		AnchorDate:    date(2024, time.January, 31),
		PaymentMethod: obligation.PaymentCash,
	}}

	points, err := projection.Project(rows, decimal.Zero, 4, date(2024, time.January, 1))
	require.NoError(t, err)

	for i, p := range points {
		assert.True(t, dec("50").Equal(p.Outflow), "month %d", i)
	}
}

func TestProject_MonthlyStartsAtAnchorMonth(t *testing.T) {
	rows := []*obligation.Obligation{{
		Kind:          obligation.KindIncome,
		Amount:        dec("3000"),
		Recurrence:    obligation.RecurrenceMonthly,
		AnchorDate:    date(2024, time.March, 5),
		PaymentMethod: obligation.PaymentIncome,
	}}

	points, err := projection.Project(rows, decimal.Zero, 4, date(2024, time.January, 1))
	require.NoError(t, err)

	assert.True(t, points[0].Inflow.IsZero())
	assert.True(t, points[1].Inflow.IsZero())
	assert.True(t, dec("3000").Equal(points[2].Inflow))
	assert.True(t, dec("3000").Equal(points[3].Inflow))
}

// Monthly recurring card obligations count as outflow regardless of kind.
func TestProject_CardAlwaysOutflow(t *testing.T) {
	rows := []*obligation.Obligation{{
		Kind:          obligation.KindIncome,
		Amount:        dec("75"),
		Recurrence:    obligation.RecurrenceMonthly,
		AnchorDate:    date(2024, time.January, 1),
		PaymentMethod: obligation.PaymentCard,
	}}

	points, err := projection.Project(rows, decimal.Zero, 1, date(2024, time.January, 1))
	require.NoError(t, err)

	// Income kind wins the bucketing, card only matters for non-income kinds.
	assert.True(t, dec("75").Equal(points[0].Inflow))

	rows[0].Kind = obligation.KindExpense

	points, err = projection.Project(rows, decimal.Zero, 1, date(2024, time.January, 1))
	require.NoError(t, err)
	assert.True(t, dec("75").Equal(points[0].Outflow))
}

func TestProject_DailyMultipliesByDaysInMonth(t *testing.T) {
	rows := []*obligation.Obligation{{
		Kind:          obligation.KindExpense,
		Amount:        dec("10"),
		Recurrence:    obligation.RecurrenceDaily,
		AnchorDate:    date(2024, time.February, 10),
		PaymentMethod: obligation.PaymentCash,
	}}

	points, err := projection.Project(rows, decimal.Zero, 3, date(2024, time.January, 1))
	require.NoError(t, err)

	// Not started in January; 29 days in leap February, 31 in March.
	assert.True(t, points[0].Outflow.IsZero())
	assert.True(t, dec("290").Equal(points[1].Outflow), "february outflow %s", points[1].Outflow)
	assert.True(t, dec("310").Equal(points[2].Outflow), "march outflow %s", points[2].Outflow)
}

func TestProject_UnpaidInstallmentsBucketIntoTheirMonth(t *testing.T) {
	mk := func(month time.Month, index int, paid bool) *obligation.Obligation {
		return &obligation.Obligation{
			Kind:             obligation.KindExpense,
			Amount:           dec("255"),
			Recurrence:       obligation.RecurrenceOnce,
			AnchorDate:       date(2024, month, 15),
			PaymentMethod:    obligation.PaymentCard,
			InstallmentTotal: intPtr(3),
			InstallmentIndex: intPtr(index),
			IsPaid:           paid,
		}
	}

	rows := []*obligation.Obligation{
		mk(time.January, 1, true),
		mk(time.February, 2, false),
		mk(time.March, 3, false),
	}

	points, err := projection.Project(rows, dec("1000"), 3, date(2024, time.January, 1))
	require.NoError(t, err)

	// The paid January row is excluded entirely.
	assert.True(t, points[0].Outflow.IsZero())
	assert.True(t, dec("255").Equal(points[1].Outflow))
	assert.True(t, dec("255").Equal(points[2].Outflow))
	assert.True(t, dec("490").Equal(points[2].Balance))
}

func TestProject_AppointmentsIgnored(t *testing.T) {
	rows := []*obligation.Obligation{{
		Kind:       obligation.KindAppointment,
		Recurrence: obligation.RecurrenceMonthly,
		AnchorDate: date(2024, time.January, 10),
	}}

	points, err := projection.Project(rows, decimal.Zero, 2, date(2024, time.January, 1))
	require.NoError(t, err)

	for _, p := range points {
		assert.True(t, p.Inflow.IsZero())
		assert.True(t, p.Outflow.IsZero())
	}
}

func TestHistoricalBalance(t *testing.T) {
	rows := []*obligation.Obligation{
		{Kind: obligation.KindIncome, Amount: dec("3000")},
		{Kind: obligation.KindExpense, Amount: dec("1200.50"), PaymentMethod: obligation.PaymentPix},
		{Kind: obligation.KindIncome, Amount: dec("99.99"), PaymentMethod: obligation.PaymentCard},
		{Kind: obligation.KindExpense, Amount: dec("300"), PaymentMethod: obligation.PaymentCard},
		{Kind: obligation.KindAppointment},
	}

	want := dec("1599.49") // 3000 + 99.99 - 1200.50 - 300

	assert.True(t, want.Equal(projection.HistoricalBalance(rows)))
}

func TestHistoricalBalance_OrderIndependent(t *testing.T) {
	rows := []*obligation.Obligation{
		{Kind: obligation.KindIncome, Amount: dec("10")},
		{Kind: obligation.KindExpense, Amount: dec("3.33"), PaymentMethod: obligation.PaymentCash},
		{Kind: obligation.KindExpense, Amount: dec("6.67"), PaymentMethod: obligation.PaymentCard},
		{Kind: obligation.KindIncome, Amount: dec("42")},
	}

	want := projection.HistoricalBalance(rows)

	rng := rand.New(rand.NewSource(1))
	for range 10 {
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		assert.True(t, want.Equal(projection.HistoricalBalance(rows)))
	}
}
