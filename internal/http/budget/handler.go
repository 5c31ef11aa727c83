package budget

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/fluxo/internal/budget"
	"github.com/mfonseca/fluxo/internal/http/auth"
)

type Handler struct {
	svc *budget.Service
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.listProgress)
	r.Delete("/{id}", h.delete)
	r.Get("/spending-limit", h.getSpendingLimit)
	r.Put("/spending-limit", h.setSpendingLimit)
}

type createBudgetRequest struct {
	Category string          `json:"category"`
	Month    string          `json:"month"`
	Amount   decimal.Decimal `json:"amount"`
}

type budgetResponse struct {
	ID       uuid.UUID       `json:"id"`
	Category string          `json:"category"`
	Month    string          `json:"month"`
	Amount   decimal.Decimal `json:"amount"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req createBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.svc.Create(r.Context(), budget.CreateParams{
		Scope:    scope,
		Category: req.Category,
		Month:    req.Month,
		Amount:   req.Amount,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, budgetResponse{
		ID:       b.ID,
		Category: b.Category,
		Month:    b.Month,
		Amount:   b.Amount,
	})
}

type progressResponse struct {
	Budget    budgetResponse  `json:"budget"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Percent   float64         `json:"percent"`
}

func (h *Handler) listProgress(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format(budget.MonthLayout)
	}

	rows, err := h.svc.ListProgress(r.Context(), scope, month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := make([]progressResponse, len(rows))
	for i, p := range rows {
		resp[i] = progressResponse{
			Budget: budgetResponse{
				ID:       p.Budget.ID,
				Category: p.Budget.Category,
				Month:    p.Budget.Month,
				Amount:   p.Budget.Amount,
			},
			Spent:     p.Spent,
			Remaining: p.Remaining,
			Percent:   p.Percent,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type limitResponse struct {
	Limit  decimal.Decimal    `json:"limit"`
	Spent  decimal.Decimal    `json:"spent"`
	Status budget.LimitStatus `json:"status"`
}

func (h *Handler) getSpendingLimit(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.CheckSpendingLimit(r.Context(), auth.UserID(r.Context()), time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, limitResponse{
		Limit:  report.Limit,
		Spent:  report.Spent,
		Status: report.Status,
	})
}

type setLimitRequest struct {
	Limit decimal.Decimal `json:"limit"`
}

func (h *Handler) setSpendingLimit(w http.ResponseWriter, r *http.Request) {
	var req setLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.SetSpendingLimit(r.Context(), auth.UserID(r.Context()), req.Limit); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
