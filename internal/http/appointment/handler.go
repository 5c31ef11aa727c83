package appointment

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/appointment"
	"github.com/mfonseca/fluxo/internal/http/auth"
	"github.com/mfonseca/fluxo/internal/obligation"
)

type Handler struct {
	svc *appointment.Service
}

func NewHandler(svc *appointment.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type appointmentResponse struct {
	ID        uuid.UUID  `json:"id"`
	GroupID   *uuid.UUID `json:"group_id,omitempty"`
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	Date      string     `json:"date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toResponse(a *appointment.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:        a.ID,
		GroupID:   a.GroupID,
		Title:     a.Title,
		Notes:     a.Notes,
		Date:      a.Date.Format(time.DateOnly),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type createAppointmentRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
	Date  string `json:"date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	a, err := h.svc.Create(r.Context(), appointment.CreateParams{
		Scope: scope,
		Title: req.Title,
		Notes: req.Notes,
		Date:  date,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(a))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, err := auth.ScopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filter := appointment.ListFilter{Scope: scope}

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

	rows, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]appointmentResponse, len(rows))
	for i, a := range rows {
		resp[i] = toResponse(a)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	a, ok := h.fetch(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toResponse(a))
}

type updateAppointmentRequest struct {
	Title *string `json:"title,omitempty"`
	Notes *string `json:"notes,omitempty"`
	Date  *string `json:"date,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	a, ok := h.fetch(w, r)
	if !ok {
		return
	}

	var req updateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Title != nil {
		a.Title = *req.Title
	}

	if req.Notes != nil {
		a.Notes = *req.Notes
	}

	if req.Date != nil {
		t, err := time.Parse(time.DateOnly, *req.Date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		a.Date = t
	}

	if err := h.svc.Update(r.Context(), a); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(a))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	a, ok := h.fetch(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), a.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) (*appointment.Appointment, bool) {
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

	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return nil, false
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return nil, false
	}

	if !inScope(scope, a) {
		http.Error(w, "appointment not found", http.StatusNotFound)
		return nil, false
	}

	return a, true
}

func inScope(scope obligation.Scope, a *appointment.Appointment) bool {
	if a.GroupID != nil {
		return scope.GroupID != nil && *scope.GroupID == *a.GroupID
	}

	return a.OwnerID == scope.OwnerID
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
