// Package agenda serves the combined day view: obligations due on a date
// next to the appointments scheduled for it.
package agenda

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/fluxo/internal/appointment"
	"github.com/mfonseca/fluxo/internal/http/auth"
	"github.com/mfonseca/fluxo/internal/obligation"
)

type Handler struct {
	obligations  *obligation.Service
	appointments *appointment.Service
}

func NewHandler(obligations *obligation.Service, appointments *appointment.Service) *Handler {
	return &Handler{obligations: obligations, appointments: appointments}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.day)
}

type dueResponse struct {
	ID          uuid.UUID                `json:"id"`
	Kind        obligation.Kind          `json:"kind"`
	Amount      decimal.Decimal          `json:"amount"`
	Category    string                   `json:"category"`
	Description string                   `json:"description,omitempty"`
	Recurrence  obligation.Recurrence    `json:"recurrence"`
	Method      obligation.PaymentMethod `json:"payment_method"`
	IsPaid      bool                     `json:"is_paid"`
}

type appointmentResponse struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Notes string    `json:"notes,omitempty"`
}

type dayResponse struct {
	Date         string                `json:"date"`
	Due          []dueResponse         `json:"due"`
	Appointments []appointmentResponse `json:"appointments"`
}

func (h *Handler) day(w http.ResponseWriter, r *http.Request) {
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

	due, err := h.obligations.DueOn(r.Context(), scope, target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	appts, err := h.appointments.OnDate(r.Context(), scope, target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := dayResponse{
		Date:         target.Format(time.DateOnly),
		Due:          make([]dueResponse, len(due)),
		Appointments: make([]appointmentResponse, len(appts)),
	}

	for i, o := range due {
		resp.Due[i] = dueResponse{
			ID:          o.ID,
			Kind:        o.Kind,
			Amount:      o.Amount,
			Category:    o.Category,
			Description: o.Description,
			Recurrence:  o.Recurrence,
			Method:      o.PaymentMethod,
			IsPaid:      o.IsPaid,
		}
	}

	for i, a := range appts {
		resp.Appointments[i] = appointmentResponse{
			ID:    a.ID,
			Title: a.Title,
			Notes: a.Notes,
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
