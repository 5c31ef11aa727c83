package group

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/group"
	"github.com/mfonseca/fluxo/internal/http/auth"
)

type Handler struct {
	svc *group.Service
}

func NewHandler(svc *group.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}/members", h.listMembers)
	r.Post("/{id}/invites", h.invite)
	r.Get("/invites", h.listInvites)
	r.Post("/invites/{id}/accept", h.accept)
	r.Post("/invites/{id}/decline", h.decline)
}

type groupResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	OwnerID uuid.UUID `json:"owner_id"`
}

type createGroupRequest struct {
	Name string `json:"name"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g, err := h.svc.Create(r.Context(), req.Name, auth.UserID(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, groupResponse{ID: g.ID, Name: g.Name, OwnerID: g.OwnerID})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListMine(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]groupResponse, len(rows))
	for i, g := range rows {
		resp[i] = groupResponse{ID: g.ID, Name: g.Name, OwnerID: g.OwnerID}
	}

	writeJSON(w, http.StatusOK, resp)
}

type memberResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	rows, err := h.svc.ListMembers(r.Context(), groupID, auth.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, group.ErrNotMember) {
			http.Error(w, "not a group member", http.StatusForbidden)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	resp := make([]memberResponse, len(rows))
	for i, m := range rows {
		resp[i] = memberResponse{UserID: m.UserID, JoinedAt: m.JoinedAt}
	}

	writeJSON(w, http.StatusOK, resp)
}

type inviteResponse struct {
	ID        uuid.UUID          `json:"id"`
	GroupID   uuid.UUID          `json:"group_id"`
	GroupName string             `json:"group_name,omitempty"`
	Email     string             `json:"email"`
	Status    group.InviteStatus `json:"status"`
}

type createInviteRequest struct {
	Email string `json:"email"`
}

func (h *Handler) invite(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req createInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Invite(r.Context(), groupID, auth.UserID(r.Context()), req.Email)
	if err != nil {
		if errors.Is(err, group.ErrNotMember) {
			http.Error(w, "not a group member", http.StatusForbidden)
			return
		}

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	writeJSON(w, http.StatusCreated, inviteResponse{
		ID:      inv.ID,
		GroupID: inv.GroupID,
		Email:   inv.Email,
		Status:  inv.Status,
	})
}

func (h *Handler) listInvites(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListInvites(r.Context(), auth.Email(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]inviteResponse, len(rows))
	for i, inv := range rows {
		resp[i] = inviteResponse{
			ID:        inv.ID,
			GroupID:   inv.GroupID,
			GroupName: inv.GroupName,
			Email:     inv.Email,
			Status:    inv.Status,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Accept(r.Context(), id, auth.UserID(r.Context()), auth.Email(r.Context())); err != nil {
		if errors.Is(err, group.ErrInviteNotFound) {
			http.Error(w, "invite not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decline(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Decline(r.Context(), id, auth.Email(r.Context())); err != nil {
		if errors.Is(err, group.ErrInviteNotFound) {
			http.Error(w, "invite not found", http.StatusNotFound)
			return
		}

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
