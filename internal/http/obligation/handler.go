package obligation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/fluxo/internal/http/auth"
	"github.com/mfonseca/fluxo/internal/obligation"
)

type Handler struct {
	svc *obligation.Service
}

func NewHandler(svc *obligation.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/daily", h.createDaily)
	r.Post("/installments", h.createInstallments)
	r.Get("/", h.list)
	r.Get("/upcoming", h.listUpcoming)
	r.Get("/due", h.listDue)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/paid", h.setPaid)
	r.Post("/{id}/end-recurrence", h.endRecurrence)
}

type createObligationRequest struct {
	Kind            obligation.Kind          `json:"kind"`
	Amount          decimal.Decimal          `json:"amount"`
	Category        string                   `json:"category"`
	Description     string                   `json:"description"`
	AnchorDate      string                   `json:"anchor_date"`
	Recurrence      obligation.Recurrence    `json:"recurrence"`
	RepetitionLimit *int                     `json:"repetition_limit,omitempty"`
	PaymentMethod   obligation.PaymentMethod `json:"payment_method"`
	CardID          *uuid.UUID               `json:"card_id,omitempty"`
}

func (req createObligationRequest) toParams(scope obligation.Scope) (obligation.CreateParams, error) {
	anchor, err := time.Parse(time.DateOnly, req.AnchorDate)
	if err != nil {
		return obligation.CreateParams{}, errors.New("anchor_date must be YYYY-MM-DD")
	}

	return obligation.CreateParams{
		Scope:           scope,
		Kind:            req.Kind,
		Amount:          req.Amount,
		Category:        req.Category,
		Description:     req.Description,
		AnchorDate:      anchor,
		Recurrence:      req.Recurrence,
		RepetitionLimit: req.RepetitionLimit,
		PaymentMethod:   req.PaymentMethod,
		CardID:          req.CardID,
	}, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req createObligationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params, err := req.toParams(scope)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.svc.Create(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(o))
}

type createDailyRequest struct {
	createObligationRequest
	Repetitions int       `json:"repetitions"`
	BatchID     uuid.UUID `json:"batch_id"`
}

func (h *Handler) createDaily(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req createDailyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.BatchID == uuid.Nil {
		http.Error(w, "batch_id is required", http.StatusBadRequest)
		return
	}

	params, err := req.toParams(scope)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.svc.CreateDailySeries(r.Context(), params, req.Repetitions, req.BatchID)
	if err != nil {
		if errors.Is(err, obligation.ErrDuplicateBatch) {
			http.Error(w, "batch already processed", http.StatusConflict)
			return
		}

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	writeJSON(w, http.StatusCreated, toResponseList(rows))
}

type createInstallmentsRequest struct {
	createObligationRequest
	Installments int             `json:"installments"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	BatchID      uuid.UUID       `json:"batch_id"`
}

func (h *Handler) createInstallments(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req createInstallmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.BatchID == uuid.Nil {
		http.Error(w, "batch_id is required", http.StatusBadRequest)
		return
	}

	params, err := req.toParams(scope)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.svc.CreateInstallmentPlan(r.Context(), params, req.Installments, req.InterestRate, req.BatchID)
	if err != nil {
		if errors.Is(err, obligation.ErrDuplicateBatch) {
			http.Error(w, "batch already processed", http.StatusConflict)
			return
		}

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	writeJSON(w, http.StatusCreated, toResponseList(rows))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filter := obligation.ListFilter{Scope: scope}

	if s := r.URL.Query().Get("kind"); s != "" {
		filter.Kind = new(obligation.Kind(s))
	}

	if s := r.URL.Query().Get("recurrence"); s != "" {
		filter.Recurrence = new(obligation.Recurrence(s))
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	if r.URL.Query().Get("installments_only") == "true" {
		filter.InstallmentsOnly = true
	}

	rows, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(rows))
}

func (h *Handler) listUpcoming(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	days := 30
	if s := r.URL.Query().Get("days"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			days = n
		}
	}

	rows, err := h.svc.ListUpcoming(r.Context(), scope, time.Now(), days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toUpcomingList(rows))
}

func (h *Handler) listDue(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	target := time.Now()

	if s := r.URL.Query().Get("date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		target = t
	}

	rows, err := h.svc.DueOn(r.Context(), scope, target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(rows))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	o, ok := h.fetch(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toResponse(o))
}

type updateObligationRequest struct {
	Amount        *decimal.Decimal          `json:"amount,omitempty"`
	Category      *string                   `json:"category,omitempty"`
	Description   *string                   `json:"description,omitempty"`
	AnchorDate    *string                   `json:"anchor_date,omitempty"`
	PaymentMethod *obligation.PaymentMethod `json:"payment_method,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	o, ok := h.fetch(w, r)
	if !ok {
		return
	}

	var req updateObligationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Amount != nil {
		o.Amount = *req.Amount
	}

	if req.Category != nil {
		o.Category = *req.Category
	}

	if req.Description != nil {
		o.Description = *req.Description
	}

	if req.AnchorDate != nil {
		t, err := time.Parse(time.DateOnly, *req.AnchorDate)
		if err != nil {
			http.Error(w, "anchor_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		o.AnchorDate = t
	}

	if req.PaymentMethod != nil {
		o.PaymentMethod = *req.PaymentMethod
	}

	if err := h.svc.Update(r.Context(), o); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(o))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	o, ok := h.fetch(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), o.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type setPaidRequest struct {
	Paid bool `json:"paid"`
}

func (h *Handler) setPaid(w http.ResponseWriter, r *http.Request) {
	o, ok := h.fetch(w, r)
	if !ok {
		return
	}

	var req setPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.SetPaid(r.Context(), o.ID, req.Paid); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) endRecurrence(w http.ResponseWriter, r *http.Request) {
	o, ok := h.fetch(w, r)
	if !ok {
		return
	}

	if err := h.svc.EndRecurrence(r.Context(), o.ID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// fetch loads the obligation from the id path parameter and verifies the
// caller's scope can see it. It writes the error response on failure.
func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) (*obligation.Obligation, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, obligation.ErrNotFound) {
			http.Error(w, "obligation not found", http.StatusNotFound)
			return nil, false
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return nil, false
	}

	if !inScope(scope, o) {
		http.Error(w, "obligation not found", http.StatusNotFound)
		return nil, false
	}

	return o, true
}

func inScope(scope obligation.Scope, o *obligation.Obligation) bool {
	if o.GroupID != nil {
		return scope.GroupID != nil && *scope.GroupID == *o.GroupID
	}

	return o.OwnerID == scope.OwnerID
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
