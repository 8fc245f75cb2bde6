// internal/auth/middleware.go

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/finlove/finlove-backend/internal/common/utils"
)

// UserStatus is the minimal account state the middleware needs
type UserStatus struct {
	Verified bool
	Banned   bool
	Admin    bool
}

// UserStore looks up account state for middleware checks
type UserStore interface {
	GetUserStatus(ctx context.Context, userID int64) (*UserStatus, error)
}

// Middleware provides authentication middleware
type Middleware struct {
	service Service
	store   UserStore
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(service Service, store UserStore) *Middleware {
	return &Middleware{
		service: service,
		store:   store,
	}
}

// Authenticate verifies the JWT access token and puts the user ID into the
// request context. Banned accounts are rejected here so no deeper layer has
// to re-check the flag.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		claims, err := m.service.ValidateToken(r.Context(), token)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if claims.Type != "access" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token type")
			return
		}

		status, err := m.store.GetUserStatus(r.Context(), claims.UserID)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unknown account")
			return
		}
		if status.Banned {
			utils.RespondWithError(w, http.StatusForbidden, "Account is banned")
			return
		}

		ctx := context.WithValue(r.Context(), "userID", claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireVerified ensures the user has confirmed their university email.
// Must run after Authenticate.
func (m *Middleware) RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value("userID").(int64)
		if !ok {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		status, err := m.store.GetUserStatus(r.Context(), userID)
		if err != nil {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}

		if !status.Verified {
			utils.RespondWithError(w, http.StatusForbidden, "Please verify your university email first")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin restricts a route to admin accounts. Must run after Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value("userID").(int64)
		if !ok {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		status, err := m.store.GetUserStatus(r.Context(), userID)
		if err != nil {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}

		if !status.Admin {
			utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
