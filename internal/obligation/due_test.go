package obligation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mfonseca/fluxo/internal/obligation"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(n int) *int { return &n }

func TestIsDueOn_Once(t *testing.T) {
	o := &obligation.Obligation{
		Recurrence: obligation.RecurrenceOnce,
		AnchorDate: date(2024, time.March, 10),
	}

	assert.True(t, o.IsDueOn(date(2024, time.March, 10)))
	assert.False(t, o.IsDueOn(date(2024, time.March, 11)))
	assert.False(t, o.IsDueOn(date(2024, time.April, 10)))

	// Calendar-day equality ignores the time component.
	assert.True(t, o.IsDueOn(time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC)))
}

func TestIsDueOn_Daily(t *testing.T) {
	unbounded := &obligation.Obligation{
		Recurrence: obligation.RecurrenceDaily,
		AnchorDate: date(2024, time.March, 10),
	}

	assert.False(t, unbounded.IsDueOn(date(2024, time.March, 9)))
	assert.True(t, unbounded.IsDueOn(date(2024, time.March, 10)))
	assert.True(t, unbounded.IsDueOn(date(2025, time.December, 31)))

	bounded := &obligation.Obligation{
		Recurrence:      obligation.RecurrenceDaily,
		AnchorDate:      date(2024, time.March, 10),
		RepetitionLimit: intPtr(3),
	}

	assert.True(t, bounded.IsDueOn(date(2024, time.March, 10)))
	assert.True(t, bounded.IsDueOn(date(2024, time.March, 11)))
	assert.True(t, bounded.IsDueOn(date(2024, time.March, 12)))
	assert.False(t, bounded.IsDueOn(date(2024, time.March, 13)))
}

func TestIsDueOn_AcrossLocations(t *testing.T) {
	saoPaulo := time.FixedZone("America/Sao_Paulo", -3*60*60)
	tokyo := time.FixedZone("Asia/Tokyo", 9*60*60)

	// Anchor stored in UTC, target from a server clock in another zone:
	// the same calendar date must be due regardless of offset.
	once := &obligation.Obligation{
		Recurrence: obligation.RecurrenceOnce,
		AnchorDate: date(2024, time.March, 10),
	}

	assert.True(t, once.IsDueOn(time.Date(2024, time.March, 10, 15, 0, 0, 0, saoPaulo)))
	assert.True(t, once.IsDueOn(time.Date(2024, time.March, 10, 8, 0, 0, 0, tokyo)))
	assert.False(t, once.IsDueOn(time.Date(2024, time.March, 11, 0, 30, 0, 0, tokyo)))

	daily := &obligation.Obligation{
		Recurrence:      obligation.RecurrenceDaily,
		AnchorDate:      date(2024, time.March, 10),
		RepetitionLimit: intPtr(3),
	}

	// A zone ahead of UTC still sees the anchor day itself as due, and the
	// day offset stays whole across offsets.
	assert.True(t, daily.IsDueOn(time.Date(2024, time.March, 10, 1, 0, 0, 0, tokyo)))
	assert.True(t, daily.IsDueOn(time.Date(2024, time.March, 12, 23, 0, 0, 0, saoPaulo)))
	assert.False(t, daily.IsDueOn(time.Date(2024, time.March, 13, 2, 0, 0, 0, tokyo)))

	assert.Equal(t, 2, obligation.DaysBetween(
		time.Date(2024, time.March, 10, 22, 0, 0, 0, saoPaulo),
		time.Date(2024, time.March, 12, 6, 0, 0, 0, tokyo),
	))
}

func TestIsDueOn_Monthly(t *testing.T) {
	o := &obligation.Obligation{
		Recurrence:      obligation.RecurrenceMonthly,
		AnchorDate:      date(2024, time.January, 15),
		RepetitionLimit: intPtr(3),
	}

	// Due on the anchor and each of the next limit-1 months.
	for k := 0; k < 3; k++ {
		assert.True(t, o.IsDueOn(date(2024, time.January+time.Month(k), 15)), "offset %d", k)
	}

	// Offset at the limit and beyond: not due.
	assert.False(t, o.IsDueOn(date(2024, time.April, 15)))
	assert.False(t, o.IsDueOn(date(2024, time.May, 15)))

	// Wrong day-of-month.
	assert.False(t, o.IsDueOn(date(2024, time.February, 14)))
	assert.False(t, o.IsDueOn(date(2024, time.February, 16)))

	// Before the anchor.
	assert.False(t, o.IsDueOn(date(2023, time.December, 15)))
}

func TestIsDueOn_MonthlyUnbounded(t *testing.T) {
	o := &obligation.Obligation{
		Recurrence: obligation.RecurrenceMonthly,
		AnchorDate: date(2024, time.January, 15),
	}

	assert.True(t, o.IsDueOn(date(2024, time.January, 15)))
	assert.True(t, o.IsDueOn(date(2030, time.July, 15)))
	assert.False(t, o.IsDueOn(date(2030, time.July, 14)))
}

func TestIsDueOn_MonthlyDay31NoRollover(t *testing.T) {
	o := &obligation.Obligation{
		Recurrence: obligation.RecurrenceMonthly,
		AnchorDate: date(2024, time.January, 31),
	}

	assert.True(t, o.IsDueOn(date(2024, time.January, 31)))
	assert.True(t, o.IsDueOn(date(2024, time.March, 31)))

	// February (leap year, 29 days) and April (30 days) have no occurrence.
	for d := 28; d <= 29; d++ {
		assert.False(t, o.IsDueOn(date(2024, time.February, d)))
	}

	assert.False(t, o.IsDueOn(date(2024, time.April, 30)))
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 0, obligation.MonthsBetween(date(2024, time.January, 15), date(2024, time.January, 31)))
	assert.Equal(t, 1, obligation.MonthsBetween(date(2024, time.January, 31), date(2024, time.February, 1)))
	assert.Equal(t, 12, obligation.MonthsBetween(date(2024, time.March, 10), date(2025, time.March, 10)))
	assert.Equal(t, -2, obligation.MonthsBetween(date(2024, time.March, 10), date(2024, time.January, 10)))
}

func TestNextOccurrence(t *testing.T) {
	o := &obligation.Obligation{
		Recurrence: obligation.RecurrenceMonthly,
		AnchorDate: date(2024, time.January, 15),
	}

	next, ok := o.NextOccurrence(date(2024, time.March, 10))
	assert.True(t, ok)
	assert.Equal(t, date(2024, time.March, 15), next)

	next, ok = o.NextOccurrence(date(2024, time.March, 16))
	assert.True(t, ok)
	assert.Equal(t, date(2024, time.April, 15), next)

	// Before the anchor the first occurrence is the anchor itself.
	next, ok = o.NextOccurrence(date(2023, time.June, 1))
	assert.True(t, ok)
	assert.Equal(t, date(2024, time.January, 15), next)
}

func TestNextOccurrence_SkipsShortMonths(t *testing.T) {
	o := &obligation.Obligation{
		Recurrence: obligation.RecurrenceMonthly,
		AnchorDate: date(2024, time.January, 31),
	}

	next, ok := o.NextOccurrence(date(2024, time.April, 1))
	assert.True(t, ok)
	assert.Equal(t, date(2024, time.May, 31), next)
}

func TestNextOccurrence_Exhausted(t *testing.T) {
	o := &obligation.Obligation{
		Recurrence:      obligation.RecurrenceMonthly,
		AnchorDate:      date(2024, time.January, 15),
		RepetitionLimit: intPtr(3),
	}

	next, ok := o.NextOccurrence(date(2024, time.February, 1))
	assert.True(t, ok)
	assert.Equal(t, date(2024, time.February, 15), next)

	_, ok = o.NextOccurrence(date(2024, time.April, 1))
	assert.False(t, ok)
}

func TestNextOccurrence_NonMonthly(t *testing.T) {
	o := &obligation.Obligation{
		Recurrence: obligation.RecurrenceOnce,
		AnchorDate: date(2024, time.January, 15),
	}

	_, ok := o.NextOccurrence(date(2024, time.January, 1))
	assert.False(t, ok)
}
