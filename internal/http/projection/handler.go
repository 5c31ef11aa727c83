package projection

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/fluxo/internal/http/auth"
	"github.com/mfonseca/fluxo/internal/projection"
)

type Handler struct {
	svc *projection.Service
}

func NewHandler(svc *projection.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.run)
}

type runRequest struct {
	InitialBalance *decimal.Decimal `json:"initial_balance,omitempty"`
	HorizonMonths  int              `json:"horizon_months"`
}

type pointResponse struct {
	Month   string          `json:"month"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Balance decimal.Decimal `json:"balance"`
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	points, err := h.svc.Run(r.Context(), scope, req.InitialBalance, req.HorizonMonths, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := make([]pointResponse, len(points))
	for i, p := range points {
		resp[i] = pointResponse{
			Month:   p.Month.Format("2006-01"),
			Inflow:  p.Inflow,
			Outflow: p.Outflow,
			Balance: p.Balance,
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
