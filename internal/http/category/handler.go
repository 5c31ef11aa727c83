package category

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/category"
	"github.com/mfonseca/fluxo/internal/http/auth"
	"github.com/mfonseca/fluxo/internal/obligation"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type categoryResponse struct {
	ID      uuid.UUID  `json:"id"`
	GroupID *uuid.UUID `json:"group_id,omitempty"`
	Name    string     `json:"name"`
	Color   string     `json:"color,omitempty"`
}

func toResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:      c.ID,
		GroupID: c.GroupID,
		Name:    c.Name,
		Color:   c.Color,
	}
}

type createCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), category.CreateParams{
		Scope: scope,
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		if errors.Is(err, category.ErrDuplicate) {
			http.Error(w, "category already exists", http.StatusConflict)
			return
		}

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	writeJSON(w, http.StatusCreated, toResponse(c))
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

	resp := make([]categoryResponse, len(rows))
	for i, c := range rows {
		resp[i] = toResponse(c)
	}

	writeJSON(w, http.StatusOK, resp)
}

type updateCategoryRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	c, ok := h.fetch(w, r)
	if !ok {
		return
	}

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Name != nil {
		c.Name = *req.Name
	}

	if req.Color != nil {
		c.Color = *req.Color
	}

	if err := h.svc.Update(r.Context(), c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.fetch(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), c.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) (*category.Category, bool) {
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

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, category.ErrNotFound) {
			http.Error(w, "category not found", http.StatusNotFound)
			return nil, false
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return nil, false
	}

	if !inScope(scope, c) {
		http.Error(w, "category not found", http.StatusNotFound)
		return nil, false
	}

	return c, true
}

func inScope(scope obligation.Scope, c *category.Category) bool {
	if c.GroupID != nil {
		return scope.GroupID != nil && *scope.GroupID == *c.GroupID
	}

	return c.OwnerID == scope.OwnerID
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
