package budget

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("budget not found")

// MonthLayout is the identifier format of a budget month.
const MonthLayout = "2006-01"

// Budget caps a category's spending for one calendar month.
type Budget struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	GroupID   *uuid.UUID
	Category  string
	Month     string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

func (b *Budget) Validate() error {
	if b.Category == "" {
		return errors.New("category is required")
	}

	if _, err := time.Parse(MonthLayout, b.Month); err != nil {
		return fmt.Errorf("invalid month %q, expected YYYY-MM", b.Month)
	}

	if b.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("amount must be greater than zero")
	}

	return nil
}

// Progress is a budget joined with what was actually spent in its month.
type Progress struct {
	Budget    *Budget
	Spent     decimal.Decimal
	Remaining decimal.Decimal
	Percent   float64
}

// LimitStatus classifies the month's spending against the configured limit.
type LimitStatus string

const (
	LimitOK       LimitStatus = "ok"
	LimitWarning  LimitStatus = "warning"
	LimitExceeded LimitStatus = "exceeded"
	LimitUnset    LimitStatus = "unset"
)

// warningThreshold is the spent/limit ratio above which the status turns to
// warning.
const warningThreshold = 0.8

// LimitReport is the outcome of a spending-limit check.
type LimitReport struct {
	Limit  decimal.Decimal
	Spent  decimal.Decimal
	Status LimitStatus
}

// EvaluateLimit classifies spent against limit. A zero or negative limit
// means no limit is configured.
func EvaluateLimit(limit, spent decimal.Decimal) LimitReport {
	report := LimitReport{Limit: limit, Spent: spent, Status: LimitOK}

	if limit.LessThanOrEqual(decimal.Zero) {
		report.Status = LimitUnset
		return report
	}

	switch {
	case spent.GreaterThan(limit):
		report.Status = LimitExceeded
	case spent.GreaterThanOrEqual(limit.Mul(decimal.NewFromFloat(warningThreshold))):
		report.Status = LimitWarning
	}

	return report
}
