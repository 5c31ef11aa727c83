package obligation

import "time"

// DateOnly reduces t to its calendar date, anchored at midnight UTC. All
// due-date arithmetic is calendar-based: rows scanned from the database and
// targets defaulted to the server clock land in different locations, so both
// sides must collapse to the same one before any instant comparison.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the calendar-month offset from a to b, ignoring the
// day-of-month component. Negative when b is in an earlier month than a.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// DaysBetween returns the whole-day offset from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// IsDueOn reports whether an occurrence of o falls on the target calendar
// date.
//
// A monthly recurrence anchored on the 31st has no occurrence in shorter
// months: the day-of-month must match exactly, never clamp or roll over.
func (o *Obligation) IsDueOn(target time.Time) bool {
	anchor := DateOnly(o.AnchorDate)
	target = DateOnly(target)

	switch o.Recurrence {
	case RecurrenceOnce:
		return anchor.Equal(target)

	case RecurrenceDaily:
		if target.Before(anchor) {
			return false
		}

		if o.RepetitionLimit != nil {
			return DaysBetween(anchor, target) < *o.RepetitionLimit
		}

		return true

	case RecurrenceMonthly:
		if anchor.Day() != target.Day() {
			return false
		}

		if target.Before(anchor) {
			return false
		}

		if o.RepetitionLimit != nil {
			return MonthsBetween(anchor, target) < *o.RepetitionLimit
		}

		return true
	}

	return false
}

// NextOccurrence returns the next occurrence of a monthly recurrence on or
// after from, or false when the recurrence has run out of repetitions. Months
// without a matching day-of-month are skipped.
func (o *Obligation) NextOccurrence(from time.Time) (time.Time, bool) {
	if o.Recurrence != RecurrenceMonthly {
		return time.Time{}, false
	}

	anchor := DateOnly(o.AnchorDate)
	from = DateOnly(from)

	if from.Before(anchor) {
		from = anchor
	}

	// Day-31 anchors can skip several short months in a row, so walk month
	// starts and test each month's candidate day individually.
	monthStart := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())

	for i := range 24 {
		m := monthStart.AddDate(0, i, 0)

		if o.RepetitionLimit != nil && MonthsBetween(anchor, m) >= *o.RepetitionLimit {
			return time.Time{}, false
		}

		candidate := time.Date(m.Year(), m.Month(), anchor.Day(), 0, 0, 0, 0, m.Location())
		if candidate.Month() != m.Month() {
			continue // month too short for the anchor day
		}

		if candidate.Before(from) {
			continue
		}

		if o.IsDueOn(candidate) {
			return candidate, true
		}
	}

	return time.Time{}, false
}
