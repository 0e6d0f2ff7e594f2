package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"rev-saas-api/internal/service"
)

type contextKey string

const (
	userIDContextKey   contextKey = "userID"
	agencyIDContextKey contextKey = "agencyID"
	roleContextKey     contextKey = "role"
)

// AuthMiddleware enforces agency-staff JWT auth on the HTTP layer. Auth
// itself is a declared external collaborator (spec.md §1) — this exists
// only so a request can be scoped to the agency that issued it.
type AuthMiddleware struct {
	jwt *service.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(jwt *service.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAuth enforces the presence of a valid bearer token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorizedJSON(w, "missing Authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorizedJSON(w, "invalid Authorization header format")
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			unauthorizedJSON(w, "empty token")
			return
		}

		claims, err := m.jwt.ParseToken(tokenStr)
		if err != nil {
			unauthorizedJSON(w, "invalid or expired token")
			return
		}
		if claims.UserID == "" {
			unauthorizedJSON(w, "invalid token: missing user_id")
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, claims.UserID)
		ctx = context.WithValue(ctx, agencyIDContextKey, claims.AgencyID)
		ctx = context.WithValue(ctx, roleContextKey, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin enforces the presence of the admin role. Must run after
// RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RoleFromContext(r.Context()) != "admin" {
			unauthorizedJSON(w, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorizedJSON(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// UserIDFromContext returns the user ID stored by the auth middleware, or "" if not present.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userIDContextKey).(string)
	return v
}

// AgencyIDFromContext returns the agency ID stored by the auth middleware, or "" if not present.
func AgencyIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(agencyIDContextKey).(string)
	return v
}

// RoleFromContext returns the role stored by the auth middleware, or "" if not present.
func RoleFromContext(ctx context.Context) string {
	v, _ := ctx.Value(roleContextKey).(string)
	return v
}
