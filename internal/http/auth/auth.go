// Package auth provides the bearer token middleware and the request
// scope helpers shared by the API handlers.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/obligation"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	emailKey
)

// Claims is the token payload issued by the identity provider. The
// subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Middleware validates the Authorization bearer token and places the
// user id and email into the request context.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := parseToken(token, secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				http.Error(w, "invalid token subject", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, emailKey, claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseToken(token, secret string) (*Claims, error) {
	claims := new(Claims)

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}

		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	if !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	return claims, nil
}

// UserID returns the authenticated user id stored by Middleware.
func UserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userIDKey).(uuid.UUID)
	return id
}

// Email returns the authenticated user email stored by Middleware.
func Email(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}

// ScopeFromRequest builds the data scope for the request: personal by
// default, or a shared group when the group_id query parameter is set.
func ScopeFromRequest(r *http.Request) (obligation.Scope, error) {
	scope := obligation.Scope{OwnerID: UserID(r.Context())}

	if s := r.URL.Query().Get("group_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return obligation.Scope{}, fmt.Errorf("invalid group_id: %w", err)
		}

		scope.GroupID = &id
	}

	return scope, nil
}
