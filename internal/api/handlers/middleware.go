package handlers

import (
	"net/http"

	"github.com/securevote/securevote-be/internal/auth"
	"github.com/securevote/securevote-be/internal/models"
)

// RequireRole rejects API calls without a session (401) or whose role is
// not listed (403). With no roles any signed-in user passes.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.ClaimsFromContext(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			if len(roles) > 0 && !hasRole(claims.Role, roles) {
				writeError(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(role models.Role, roles []models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// currentUser returns the session identity. Routes behind RequireRole
// always have one.
func currentUser(r *http.Request) (models.User, error) {
	claims, err := auth.ClaimsFromContext(r.Context())
	if err != nil {
		return models.User{}, err
	}
	return claims.User(), nil
}
