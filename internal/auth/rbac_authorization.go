package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/transport"
)

// RBACAuthorization gates whole route groups by role. Services still run the
// policy for every operation; these checks only reject obviously wrong callers early.
type RBACAuthorization struct {
	*transport.BaseHandler
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{BaseHandler: transport.NewBaseHandler(logger)}
}

func (ra *RBACAuthorization) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok {
				ra.Logger.WarnContext(r.Context(), "authorization check failed: caller not found in context")
				ra.HandleServiceError(w, r, internal.ErrUnauthenticated)
				return
			}

			if !caller.HasRole(roles...) {
				ra.Logger.WarnContext(r.Context(), "access denied: role not allowed",
					"user_id", caller.UserID,
					"role", caller.Role,
					"required_roles", roles)
				ra.HandleServiceError(w, r, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.RequireRoles(RoleAdmin)
}

// RequireReviewer admits the roles that review and approve invoices.
func (ra *RBACAuthorization) RequireReviewer() func(http.Handler) http.Handler {
	return ra.RequireRoles(RoleAdmin, RolePayrollManager)
}
