package installment

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/http/auth"
	"github.com/mfonseca/fluxo/internal/installment"
	"github.com/mfonseca/fluxo/internal/obligation"
)

type Handler struct {
	obligations *obligation.Service
}

func NewHandler(obligations *obligation.Service) *Handler {
	return &Handler{obligations: obligations}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
}

type groupResponse struct {
	Description     string     `json:"description"`
	CardID          *uuid.UUID `json:"card_id,omitempty"`
	Total           int        `json:"total"`
	PaidCount       int        `json:"paid_count"`
	ProgressPercent float64    `json:"progress_percent"`
	NextUnpaidID    *uuid.UUID `json:"next_unpaid_id,omitempty"`
	NextUnpaidIndex *int       `json:"next_unpaid_index,omitempty"`
	IsFullyPaid     bool       `json:"is_fully_paid"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.obligations.List(r.Context(), obligation.ListFilter{
		Scope:            scope,
		InstallmentsOnly: true,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	groups := installment.GroupInstallments(rows)

	resp := make([]groupResponse, len(groups))
	for i, g := range groups {
		resp[i] = groupResponse{
			Description:     g.Description,
			CardID:          g.CardID,
			Total:           g.Total,
			PaidCount:       g.PaidCount,
			ProgressPercent: g.ProgressPercent,
			IsFullyPaid:     g.IsFullyPaid,
		}

		if g.NextUnpaid != nil {
			resp[i].NextUnpaidID = &g.NextUnpaid.ID
			resp[i].NextUnpaidIndex = g.NextUnpaid.InstallmentIndex
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
