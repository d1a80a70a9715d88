package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/transport"
	"github.com/frahmantamala/invoice-management/pkg/logger"
)

// RecoveryMiddleware turns a panic into the standard 500 envelope. The panic
// value is logged, never returned to the client; the trace id is, so the two
// can be matched up.
func RecoveryMiddleware(lg *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(lg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.From(r.Context()).Error("panic recovered",
						"error", rec,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					appErr := internal.NewInternalError("internal server error", fmt.Errorf("panic: %v", rec))
					if traceID := internal.TraceIDFromContext(r.Context()); traceID != "" {
						appErr = appErr.WithDetails(map[string]string{"trace_id": traceID})
					}
					base.HandleServiceError(w, r, appErr)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
