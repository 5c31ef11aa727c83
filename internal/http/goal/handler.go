package goal

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/fluxo/internal/goal"
	"github.com/mfonseca/fluxo/internal/http/auth"
)

type Handler struct {
	svc *goal.Service
}

func NewHandler(svc *goal.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/{id}/contribute", h.contribute)
	r.Delete("/{id}", h.delete)
}

type goalResponse struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Target  decimal.Decimal `json:"target"`
	Current decimal.Decimal `json:"current"`
	Percent float64         `json:"percent"`
}

func toResponse(g *goal.Goal) goalResponse {
	return goalResponse{
		ID:      g.ID,
		Name:    g.Name,
		Target:  g.Target,
		Current: g.Current,
		Percent: g.Percent(),
	}
}

type createGoalRequest struct {
	Name    string          `json:"name"`
	Target  decimal.Decimal `json:"target"`
	Current decimal.Decimal `json:"current"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g, err := h.svc.Create(r.Context(), goal.CreateParams{
		Scope:   scope,
		Name:    req.Name,
		Target:  req.Target,
		Current: req.Current,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(g))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.svc.List(r.Context(), scope)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]goalResponse, len(rows))
	for i, g := range rows {
		resp[i] = toResponse(g)
	}

	writeJSON(w, http.StatusOK, resp)
}

type contributeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) contribute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g, err := h.svc.Contribute(r.Context(), id, req.Amount)
	if err != nil {
		if errors.Is(err, goal.ErrNotFound) {
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	writeJSON(w, http.StatusOK, toResponse(g))
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

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
