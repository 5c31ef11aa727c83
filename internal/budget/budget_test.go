package budget_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mfonseca/fluxo/internal/budget"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEvaluateLimit(t *testing.T) {
	type testCase struct {
		name       string
		limit      string
		spent      string
		wantStatus budget.LimitStatus
	}

	tests := []testCase{
		{name: "WellUnder", limit: "1000", spent: "100", wantStatus: budget.LimitOK},
		{name: "JustUnderWarning", limit: "1000", spent: "799.99", wantStatus: budget.LimitOK},
		{name: "AtWarningThreshold", limit: "1000", spent: "800", wantStatus: budget.LimitWarning},
		{name: "AtLimit", limit: "1000", spent: "1000", wantStatus: budget.LimitWarning},
		{name: "OverLimit", limit: "1000", spent: "1000.01", wantStatus: budget.LimitExceeded},
		{name: "NoLimitConfigured", limit: "0", spent: "5000", wantStatus: budget.LimitUnset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := budget.EvaluateLimit(dec(tt.limit), dec(tt.spent))
			assert.Equal(t, tt.wantStatus, report.Status)
			assert.True(t, dec(tt.spent).Equal(report.Spent))
		})
	}
}

func TestBudget_Validate(t *testing.T) {
	valid := budget.Budget{
		Category: "groceries",
		Month:    "2024-06",
		Amount:   dec("500"),
	}
	assert.NoError(t, valid.Validate())

	noCategory := valid
	noCategory.Category = ""
	assert.Error(t, noCategory.Validate())

	badMonth := valid
	badMonth.Month = "06/2024"
	assert.Error(t, badMonth.Validate())

	zeroAmount := valid
	zeroAmount.Amount = decimal.Zero
	assert.Error(t, zeroAmount.Validate())
}
