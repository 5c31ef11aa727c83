package card

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/card"
	"github.com/mfonseca/fluxo/internal/http/auth"
)

type Handler struct {
	svc *card.Service
}

func NewHandler(svc *card.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

type cardResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ClosingDay *int      `json:"closing_day,omitempty"`
}

type createCardRequest struct {
	Name       string `json:"name"`
	ClosingDay *int   `json:"closing_day,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), card.CreateParams{
		OwnerID:    auth.UserID(r.Context()),
		Name:       req.Name,
		ClosingDay: req.ClosingDay,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, cardResponse{ID: c.ID, Name: c.Name, ClosingDay: c.ClosingDay})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]cardResponse, len(rows))
	for i, c := range rows {
		resp[i] = cardResponse{ID: c.ID, Name: c.Name, ClosingDay: c.ClosingDay}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, card.ErrNotFound) {
			http.Error(w, "card not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if c.OwnerID != auth.UserID(r.Context()) {
		http.Error(w, "card not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, cardResponse{ID: c.ID, Name: c.Name, ClosingDay: c.ClosingDay})
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
