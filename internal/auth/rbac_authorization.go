package auth

import (
	"log/slog"
	"net/http"
)

// RBACAuthorization builds role-gating middleware. It assumes the
// session middleware already placed the user in the request context.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

func (ra *RBACAuthorization) requireRole(check func(Role) bool, label string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !check(user.Role) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
					"user_id", user.ID,
					"role", user.Role,
					"required", label)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireManager gates a route to managers and admins.
func (ra *RBACAuthorization) RequireManager() func(http.Handler) http.Handler {
	return ra.requireRole(Role.CanManageIncidents, "manager")
}

// RequireAdmin gates a route to admins.
func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.requireRole(Role.IsAdmin, "admin")
}
