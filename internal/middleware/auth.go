package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/chameleon/server/internal/models"
	"github.com/chameleon/server/internal/repository"
)

type contextKey string

const (
	// UserContextKey carries the authenticated user through the request
	UserContextKey contextKey = "user"

	// UserIDHeader names the caller from the fixed user directory. There are
	// no credentials; identity switching in the client is the login model.
	UserIDHeader = "X-User-ID"
)

// GetUserFromContext retrieves the authenticated user from request context
func GetUserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// UserAuth resolves the X-User-ID header against the user directory and puts
// the user on the request context. Paths in skipPaths (exact, or prefix when
// ending in "*") pass through unauthenticated, as do non-API routes.
func UserAuth(userRepo repository.UserRepo, skipPaths []string) func(http.Handler) http.Handler {
	skipSet := make(map[string]bool)
	for _, p := range skipPaths {
		skipSet[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if skipSet[path] {
				next.ServeHTTP(w, r)
				return
			}
			for p := range skipSet {
				if strings.HasSuffix(p, "*") && strings.HasPrefix(path, strings.TrimSuffix(p, "*")) {
					next.ServeHTTP(w, r)
					return
				}
			}

			// Only authenticate API routes
			if !strings.HasPrefix(path, "/api") {
				next.ServeHTTP(w, r)
				return
			}

			userID := r.Header.Get(UserIDHeader)
			if userID == "" {
				writeAuthError(w, http.StatusUnauthorized, "User ID is required.")
				return
			}

			user, err := userRepo.GetByID(r.Context(), userID)
			if err != nil {
				writeAuthError(w, http.StatusInternalServerError, "Internal server error.")
				return
			}
			if user == nil {
				writeAuthError(w, http.StatusUnauthorized, "Unknown user.")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}
