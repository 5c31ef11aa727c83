package obligation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfonseca/fluxo/internal/obligation"
)

func testScope() obligation.Scope {
	return obligation.Scope{OwnerID: uuid.New()}
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    obligation.CreateParams
		setupMock func(m *obligation.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			params: obligation.CreateParams{
				Scope:         testScope(),
				Kind:          obligation.KindExpense,
				Amount:        decimal.NewFromFloat(120.50),
				Category:      "groceries",
				Description:   "weekly shop",
				AnchorDate:    date(2024, time.March, 10),
				Recurrence:    obligation.RecurrenceOnce,
				PaymentMethod: obligation.PaymentPix,
			},
			setupMock: func(m *obligation.MockRepository) {
				m.EXPECT().
					CreateObligation(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *obligation.Obligation) error {
						o.ID = uuid.New()
						o.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "BoundedMonthlyStaysSingleRow",
			params: obligation.CreateParams{
				Scope:           testScope(),
				Kind:            obligation.KindExpense,
				Amount:          decimal.NewFromInt(80),
				Category:        "subscriptions",
				AnchorDate:      date(2024, time.January, 15),
				Recurrence:      obligation.RecurrenceMonthly,
				RepetitionLimit: intPtr(12),
				PaymentMethod:   obligation.PaymentCash,
			},
			setupMock: func(m *obligation.MockRepository) {
				m.EXPECT().
					CreateObligation(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *obligation.Obligation) error {
						assert.Equal(t, obligation.RecurrenceMonthly, o.Recurrence)
						require.NotNil(t, o.RepetitionLimit)
						assert.Equal(t, 12, *o.RepetitionLimit)
						return nil
					})
			},
		},
		{
			name: "ZeroAmountRejected",
			params: obligation.CreateParams{
				Scope:         testScope(),
				Kind:          obligation.KindExpense,
				Amount:        decimal.Zero,
				AnchorDate:    date(2024, time.March, 10),
				Recurrence:    obligation.RecurrenceOnce,
				PaymentMethod: obligation.PaymentCash,
			},
			wantErr: true,
		},
		{
			name: "NegativeRepetitionLimitRejected",
			params: obligation.CreateParams{
				Scope:           testScope(),
				Kind:            obligation.KindExpense,
				Amount:          decimal.NewFromInt(10),
				AnchorDate:      date(2024, time.March, 10),
				Recurrence:      obligation.RecurrenceMonthly,
				RepetitionLimit: intPtr(-1),
				PaymentMethod:   obligation.PaymentCash,
			},
			wantErr: true,
		},
		{
			name: "RepoError",
			params: obligation.CreateParams{
				Scope:         testScope(),
				Kind:          obligation.KindIncome,
				Amount:        decimal.NewFromInt(3000),
				AnchorDate:    date(2024, time.March, 1),
				Recurrence:    obligation.RecurrenceMonthly,
				PaymentMethod: obligation.PaymentIncome,
			},
			setupMock: func(m *obligation.MockRepository) {
				m.EXPECT().
					CreateObligation(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := obligation.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := obligation.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestService_CreateDailySeries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := obligation.NewMockRepository(ctrl)
	btx := obligation.NewMockBatchTx(ctrl)
	svc := obligation.NewService(repo)

	batchID := uuid.New()

	var created []*obligation.Obligation

	repo.EXPECT().BeginBatch(gomock.Any(), batchID).Return(btx, nil)
	btx.EXPECT().
		CreateObligations(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, os []*obligation.Obligation) error {
			created = os
			return nil
		})
	btx.EXPECT().Commit().Return(nil)
	btx.EXPECT().Rollback().Return(nil)

	rows, err := svc.CreateDailySeries(context.Background(), obligation.CreateParams{
		Scope:         testScope(),
		Kind:          obligation.KindExpense,
		Amount:        decimal.NewFromInt(25),
		Category:      "food",
		Description:   "lunch",
		AnchorDate:    date(2024, time.March, 30),
		Recurrence:    obligation.RecurrenceDaily,
		PaymentMethod: obligation.PaymentCash,
	}, 3, batchID)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, created, rows)

	// Each row is an independent once-row one day apart, crossing the month
	// boundary.
	assert.Equal(t, date(2024, time.March, 30), rows[0].AnchorDate)
	assert.Equal(t, date(2024, time.March, 31), rows[1].AnchorDate)
	assert.Equal(t, date(2024, time.April, 1), rows[2].AnchorDate)

	for i, o := range rows {
		assert.Equal(t, obligation.RecurrenceOnce, o.Recurrence)
		assert.Nil(t, o.RepetitionLimit)
		assert.Equal(t, "lunch ("+string(rune('1'+i))+"/3)", o.Description)
	}
}

func TestService_CreateDailySeries_InvalidRepetitions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := obligation.NewService(obligation.NewMockRepository(ctrl))

	_, err := svc.CreateDailySeries(context.Background(), obligation.CreateParams{}, 0, uuid.New())
	assert.Error(t, err)
}

func TestService_CreateInstallmentPlan(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := obligation.NewMockRepository(ctrl)
	btx := obligation.NewMockBatchTx(ctrl)
	svc := obligation.NewService(repo)

	batchID := uuid.New()
	cardID := uuid.New()

	repo.EXPECT().BeginBatch(gomock.Any(), batchID).Return(btx, nil)
	btx.EXPECT().CreateObligations(gomock.Any(), gomock.Any()).Return(nil)
	btx.EXPECT().Commit().Return(nil)
	btx.EXPECT().Rollback().Return(nil)

	rows, err := svc.CreateInstallmentPlan(context.Background(), obligation.CreateParams{
		Scope:         testScope(),
		Kind:          obligation.KindExpense,
		Amount:        decimal.NewFromInt(1000),
		Category:      "electronics",
		Description:   "notebook",
		AnchorDate:    date(2024, time.January, 31),
		Recurrence:    obligation.RecurrenceOnce,
		PaymentMethod: obligation.PaymentCard,
		CardID:        &cardID,
	}, 4, decimal.NewFromFloat(2.0), batchID)

	require.NoError(t, err)
	require.Len(t, rows, 4)

	// 1000 * 1.02 / 4 = 255.00 per installment.
	for i, o := range rows {
		assert.True(t, decimal.NewFromFloat(255).Equal(o.Amount), "row %d amount %s", i, o.Amount)
		assert.Equal(t, obligation.RecurrenceOnce, o.Recurrence)
		assert.Equal(t, obligation.PaymentCard, o.PaymentMethod)
		require.NotNil(t, o.InstallmentTotal)
		assert.Equal(t, 4, *o.InstallmentTotal)
		require.NotNil(t, o.InstallmentIndex)
		assert.Equal(t, i+1, *o.InstallmentIndex)
		assert.False(t, o.IsPaid)
	}

	assert.Equal(t, "notebook 1/4", rows[0].Description)
	assert.Equal(t, "notebook 4/4", rows[3].Description)

	// Day-31 purchase clamps to the last day of shorter months.
	assert.Equal(t, date(2024, time.January, 31), rows[0].AnchorDate)
	assert.Equal(t, date(2024, time.February, 29), rows[1].AnchorDate)
	assert.Equal(t, date(2024, time.March, 31), rows[2].AnchorDate)
	assert.Equal(t, date(2024, time.April, 30), rows[3].AnchorDate)
}

func TestService_CreateInstallmentPlan_DuplicateBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := obligation.NewMockRepository(ctrl)
	svc := obligation.NewService(repo)

	batchID := uuid.New()
	cardID := uuid.New()

	repo.EXPECT().BeginBatch(gomock.Any(), batchID).Return(nil, obligation.ErrDuplicateBatch)

	_, err := svc.CreateInstallmentPlan(context.Background(), obligation.CreateParams{
		Scope:         testScope(),
		Kind:          obligation.KindExpense,
		Amount:        decimal.NewFromInt(300),
		Category:      "clothes",
		Description:   "jacket",
		AnchorDate:    date(2024, time.May, 5),
		Recurrence:    obligation.RecurrenceOnce,
		PaymentMethod: obligation.PaymentCard,
		CardID:        &cardID,
	}, 3, decimal.Zero, batchID)

	assert.ErrorIs(t, err, obligation.ErrDuplicateBatch)
}

func TestService_CreateInstallmentPlan_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := obligation.NewService(obligation.NewMockRepository(ctrl))
	cardID := uuid.New()

	params := obligation.CreateParams{
		Scope:         testScope(),
		Kind:          obligation.KindExpense,
		Amount:        decimal.NewFromInt(100),
		Category:      "misc",
		AnchorDate:    date(2024, time.May, 5),
		Recurrence:    obligation.RecurrenceOnce,
		PaymentMethod: obligation.PaymentCard,
		CardID:        &cardID,
	}

	_, err := svc.CreateInstallmentPlan(context.Background(), params, 1, decimal.Zero, uuid.New())
	assert.Error(t, err, "single installment is not a plan")

	noCard := params
	noCard.CardID = nil
	_, err = svc.CreateInstallmentPlan(context.Background(), noCard, 3, decimal.Zero, uuid.New())
	assert.Error(t, err)

	_, err = svc.CreateInstallmentPlan(context.Background(), params, 3, decimal.NewFromInt(-1), uuid.New())
	assert.Error(t, err)
}

func TestService_SetPaid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := obligation.NewMockRepository(ctrl)
	svc := obligation.NewService(repo)

	id := uuid.New()
	installment := &obligation.Obligation{
		ID:               id,
		InstallmentTotal: intPtr(3),
		InstallmentIndex: intPtr(1),
	}

	repo.EXPECT().GetObligation(gomock.Any(), id).Return(installment, nil)
	repo.EXPECT().SetPaid(gomock.Any(), id, true).Return(nil)

	require.NoError(t, svc.SetPaid(context.Background(), id, true))
}

func TestService_SetPaid_NonInstallment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := obligation.NewMockRepository(ctrl)
	svc := obligation.NewService(repo)

	id := uuid.New()
	repo.EXPECT().GetObligation(gomock.Any(), id).Return(&obligation.Obligation{ID: id}, nil)

	assert.Error(t, svc.SetPaid(context.Background(), id, true))
}

func TestService_EndRecurrence(t *testing.T) {
	type testCase struct {
		name    string
		row     *obligation.Obligation
		wantEnd bool
	}

	tests := []testCase{
		{
			name:    "Monthly",
			row:     &obligation.Obligation{Recurrence: obligation.RecurrenceMonthly},
			wantEnd: true,
		},
		{
			name: "Once",
			row:  &obligation.Obligation{Recurrence: obligation.RecurrenceOnce},
		},
		{
			name: "InstallmentRow",
			row: &obligation.Obligation{
				Recurrence:       obligation.RecurrenceOnce,
				InstallmentTotal: intPtr(5),
				InstallmentIndex: intPtr(2),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := obligation.NewMockRepository(ctrl)
			svc := obligation.NewService(repo)

			id := uuid.New()
			tt.row.ID = id
			repo.EXPECT().GetObligation(gomock.Any(), id).Return(tt.row, nil)

			if tt.wantEnd {
				repo.EXPECT().EndRecurrence(gomock.Any(), id).Return(nil)
				assert.NoError(t, svc.EndRecurrence(context.Background(), id))

				return
			}

			assert.Error(t, svc.EndRecurrence(context.Background(), id))
		})
	}
}

func TestService_Update_RejectsRecurring(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := obligation.NewService(obligation.NewMockRepository(ctrl))

	err := svc.Update(context.Background(), &obligation.Obligation{
		Recurrence: obligation.RecurrenceMonthly,
	})
	assert.Error(t, err)
}

func TestService_ListUpcoming(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := obligation.NewMockRepository(ctrl)
	svc := obligation.NewService(repo)

	scope := testScope()
	rows := []*obligation.Obligation{
		{
			Description: "rent",
			Recurrence:  obligation.RecurrenceMonthly,
			AnchorDate:  date(2024, time.January, 5),
		},
		{
			Description: "gym",
			Recurrence:  obligation.RecurrenceMonthly,
			AnchorDate:  date(2024, time.January, 20),
		},
		{
			Description:     "expired course",
			Recurrence:      obligation.RecurrenceMonthly,
			AnchorDate:      date(2024, time.January, 10),
			RepetitionLimit: intPtr(2),
		},
	}

	monthly := obligation.RecurrenceMonthly
	repo.EXPECT().
		ListObligations(gomock.Any(), obligation.ListFilter{Scope: scope, Recurrence: &monthly}).
		Return(rows, nil)

	upcoming, err := svc.ListUpcoming(context.Background(), scope, date(2024, time.June, 1), 30)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)

	// Soonest first; the bounded recurrence has already run out.
	assert.Equal(t, "rent", upcoming[0].Obligation.Description)
	assert.Equal(t, date(2024, time.June, 5), upcoming[0].DueDate)
	assert.Equal(t, "gym", upcoming[1].Obligation.Description)
	assert.Equal(t, date(2024, time.June, 20), upcoming[1].DueDate)
}

func TestService_DueOn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := obligation.NewMockRepository(ctrl)
	svc := obligation.NewService(repo)

	scope := testScope()
	rows := []*obligation.Obligation{
		{Description: "one-off", Recurrence: obligation.RecurrenceOnce, AnchorDate: date(2024, time.June, 15)},
		{Description: "rent", Recurrence: obligation.RecurrenceMonthly, AnchorDate: date(2024, time.January, 15)},
		{Description: "other day", Recurrence: obligation.RecurrenceOnce, AnchorDate: date(2024, time.June, 16)},
	}

	repo.EXPECT().
		ListObligations(gomock.Any(), obligation.ListFilter{Scope: scope}).
		Return(rows, nil)

	due, err := svc.DueOn(context.Background(), scope, date(2024, time.June, 15))
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "one-off", due[0].Description)
	assert.Equal(t, "rent", due[1].Description)
}

func TestAddMonthsClamped(t *testing.T) {
	assert.Equal(t, date(2024, time.February, 29), obligation.AddMonthsClamped(date(2024, time.January, 31), 1))
	assert.Equal(t, date(2023, time.February, 28), obligation.AddMonthsClamped(date(2023, time.January, 31), 1))
	assert.Equal(t, date(2024, time.April, 30), obligation.AddMonthsClamped(date(2024, time.January, 31), 3))
	assert.Equal(t, date(2024, time.May, 15), obligation.AddMonthsClamped(date(2024, time.February, 15), 3))
}
