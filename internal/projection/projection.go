// Package projection derives month-by-month cash-flow forecasts from the
// obligation set.
//
// The engine iterates months, not days: monthly recurrences are tested with a
// calendar-month offset only (no day-of-month equality, coarser than the
// day-level due evaluator), and daily recurrences contribute amount times the
// month's day count once started. Both are deliberate approximations that
// keep a run O(months x obligations).
package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfonseca/fluxo/internal/obligation"
)

// Point is one month of a projection. Balance carries over: the first point
// starts from the initial balance, each following point from its predecessor.
type Point struct {
	Month   time.Time
	Inflow  decimal.Decimal
	Outflow decimal.Decimal
	Balance decimal.Decimal
}

// Project forecasts horizonMonths consecutive months starting at the first
// day of from's month. The result is all-or-nothing: an invalid input rejects
// the whole run.
func Project(obligations []*obligation.Obligation, initialBalance decimal.Decimal, horizonMonths int, from time.Time) ([]Point, error) {
	if horizonMonths < 1 {
		return nil, errors.New("projection horizon must be at least 1 month")
	}

	var monthly, daily, installments []*obligation.Obligation

	for _, o := range obligations {
		if o.Kind == obligation.KindAppointment {
			continue
		}

		if o.Amount.IsNegative() {
			return nil, fmt.Errorf("obligation %s has a negative amount", o.ID)
		}

		switch {
		case o.Recurrence == obligation.RecurrenceMonthly:
			monthly = append(monthly, o)
		case o.Recurrence == obligation.RecurrenceDaily:
			daily = append(daily, o)
		case o.IsInstallment() && !o.IsPaid:
			installments = append(installments, o)
		}
	}

	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
	balance := initialBalance
	points := make([]Point, 0, horizonMonths)

	for i := range horizonMonths {
		month := start.AddDate(0, i, 0)
		inflow := decimal.Zero
		outflow := decimal.Zero

		for _, o := range monthly {
			if !activeInMonth(o, month) {
				continue
			}

			switch {
			case o.Kind == obligation.KindIncome:
				inflow = inflow.Add(o.Amount)
			case o.Kind == obligation.KindExpense || o.PaymentMethod == obligation.PaymentCard:
				outflow = outflow.Add(o.Amount)
			}
		}

		days := decimal.NewFromInt(int64(daysInMonth(month)))

		for _, o := range daily {
			if obligation.MonthsBetween(o.AnchorDate, month) < 0 {
				continue
			}

			total := o.Amount.Mul(days)

			// Anything that is not income drains the balance here,
			// card-method rows included.
			if o.Kind == obligation.KindIncome {
				inflow = inflow.Add(total)
			} else {
				outflow = outflow.Add(total)
			}
		}

		for _, o := range installments {
			if sameMonth(o.AnchorDate, month) {
				outflow = outflow.Add(o.Amount)
			}
		}

		balance = balance.Add(inflow).Sub(outflow)
		points = append(points, Point{
			Month:   month,
			Inflow:  inflow,
			Outflow: outflow,
			Balance: balance,
		})
	}

	return points, nil
}

// activeInMonth is the month-level variant of the due check: a monthly
// recurrence is active once its anchor month is reached and, when bounded,
// for repetitionLimit months in total.
func activeInMonth(o *obligation.Obligation, month time.Time) bool {
	offset := obligation.MonthsBetween(o.AnchorDate, month)
	if offset < 0 {
		return false
	}

	if o.RepetitionLimit != nil && offset >= *o.RepetitionLimit {
		return false
	}

	return true
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func daysInMonth(month time.Time) int {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	return first.AddDate(0, 1, -1).Day()
}

// HistoricalBalance sums every obligation's signed amount: income adds,
// expenses and card rows subtract, appointments contribute nothing. The
// result is independent of input order and applies no date filtering.
func HistoricalBalance(obligations []*obligation.Obligation) decimal.Decimal {
	balance := decimal.Zero
	for _, o := range obligations {
		balance = balance.Add(o.Signed())
	}

	return balance
}

// Service runs projections over the stored obligation set of a scope.
type Service struct {
	obligations *obligation.Service
}

func NewService(obligations *obligation.Service) *Service {
	return &Service{obligations: obligations}
}

// Run fetches the scope's obligations and projects horizonMonths ahead of
// now. When initialBalance is nil the starting balance is derived from the
// full history instead.
func (s *Service) Run(ctx context.Context, scope obligation.Scope, initialBalance *decimal.Decimal, horizonMonths int, now time.Time) ([]Point, error) {
	rows, err := s.obligations.List(ctx, obligation.ListFilter{Scope: scope})
	if err != nil {
		return nil, fmt.Errorf("listing obligations: %w", err)
	}

	balance := decimal.Zero
	if initialBalance != nil {
		balance = *initialBalance
	} else {
		balance = HistoricalBalance(rows)
	}

	return Project(rows, balance, horizonMonths, now)
}
