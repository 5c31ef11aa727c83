package auth

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/group"
)

// GroupGuard rejects requests that select a group scope the caller is
// not a member of. It runs after Middleware.
func GroupGuard(groups *group.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s := r.URL.Query().Get("group_id"); s != "" {
				groupID, err := uuid.Parse(s)
				if err != nil {
					http.Error(w, "invalid group_id", http.StatusBadRequest)
					return
				}

				if err := groups.EnsureMember(r.Context(), groupID, UserID(r.Context())); err != nil {
					if errors.Is(err, group.ErrNotMember) {
						http.Error(w, "not a group member", http.StatusForbidden)
						return
					}

					http.Error(w, "internal error", http.StatusInternalServerError)

					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
