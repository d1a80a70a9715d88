package middleware

import (
	"net/http"

	"github.com/frahmantamala/invoice-management/internal/auth"
	"github.com/frahmantamala/invoice-management/pkg/logger"
)

// CallerContext tags the request logger with the resolved caller. It must run
// after the auth middleware; anonymous requests pass through untouched.
func CallerContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := auth.CallerFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "user_id", caller.UserID, "role", string(caller.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
