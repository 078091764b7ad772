package middleware

import (
	"fmt"
	"net/http"

	"github.com/edigital/workdesk-backend/internal/domain/user"
	"github.com/edigital/workdesk-backend/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}

			// a missing role claim is treated as an operational role
			roleStr, _ := claims["role"].(string)

			role := user.Role(roleStr)
			if !user.HasPermission(role, permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
