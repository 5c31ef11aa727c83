package obligation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/fluxo/internal/obligation"
)

type obligationResponse struct {
	ID               uuid.UUID                `json:"id"`
	GroupID          *uuid.UUID               `json:"group_id,omitempty"`
	Kind             obligation.Kind          `json:"kind"`
	Amount           decimal.Decimal          `json:"amount"`
	Category         string                   `json:"category"`
	Description      string                   `json:"description,omitempty"`
	AnchorDate       string                   `json:"anchor_date"`
	Recurrence       obligation.Recurrence    `json:"recurrence"`
	RepetitionLimit  *int                     `json:"repetition_limit,omitempty"`
	PaymentMethod    obligation.PaymentMethod `json:"payment_method"`
	CardID           *uuid.UUID               `json:"card_id,omitempty"`
	InstallmentTotal *int                     `json:"installment_total,omitempty"`
	InstallmentIndex *int                     `json:"installment_index,omitempty"`
	IsPaid           bool                     `json:"is_paid"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        *time.Time               `json:"updated_at,omitempty"`
}

func toResponse(o *obligation.Obligation) obligationResponse {
	return obligationResponse{
		ID:               o.ID,
		GroupID:          o.GroupID,
		Kind:             o.Kind,
		Amount:           o.Amount,
		Category:         o.Category,
		Description:      o.Description,
		AnchorDate:       o.AnchorDate.Format(time.DateOnly),
		Recurrence:       o.Recurrence,
		RepetitionLimit:  o.RepetitionLimit,
		PaymentMethod:    o.PaymentMethod,
		CardID:           o.CardID,
		InstallmentTotal: o.InstallmentTotal,
		InstallmentIndex: o.InstallmentIndex,
		IsPaid:           o.IsPaid,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func toResponseList(rows []*obligation.Obligation) []obligationResponse {
	resp := make([]obligationResponse, len(rows))
	for i, o := range rows {
		resp[i] = toResponse(o)
	}

	return resp
}

type upcomingResponse struct {
	Obligation obligationResponse `json:"obligation"`
	DueDate    string             `json:"due_date"`
}

func toUpcomingList(rows []obligation.Upcoming) []upcomingResponse {
	resp := make([]upcomingResponse, len(rows))
	for i, u := range rows {
		resp[i] = upcomingResponse{
			Obligation: toResponse(u.Obligation),
			DueDate:    u.DueDate.Format(time.DateOnly),
		}
	}

	return resp
}
