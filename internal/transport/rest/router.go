package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/invoice-management/internal/auth"
	"github.com/frahmantamala/invoice-management/internal/category"
	"github.com/frahmantamala/invoice-management/internal/invoice"
	"github.com/frahmantamala/invoice-management/internal/notification"
	"github.com/frahmantamala/invoice-management/internal/settings"
	"github.com/frahmantamala/invoice-management/internal/transport/middleware"
	"github.com/frahmantamala/invoice-management/internal/transport/swagger"
	"github.com/frahmantamala/invoice-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups the per-domain HTTP handlers mounted under /api/v1.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Invoice      *invoice.Handler
	Settings     *settings.Handler
	Notification *notification.Handler
	Category     *category.Handler
}

// Options carries the transport settings the router needs from config.
type Options struct {
	// OpenAPIPath may be empty to skip serving the document and Swagger UI.
	OpenAPIPath    string
	AllowedOrigins string
}

// RegisterAllRoutes wires middleware and every route.
func RegisterAllRoutes(router chi.Router, db *sql.DB, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRBACAuthorization(logger)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if opts.OpenAPIPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, opts.OpenAPIPath)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Get("/ping", healthHandler.Ping)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.CallerContext)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/me", h.User.GetCurrentUser)
				ur.With(rbac.RequireAdmin()).Get("/", h.User.ListEmployees)
			})

			pr.Route("/categories", func(cr chi.Router) {
				cr.Get("/", h.Category.GetCategories)
				cr.With(rbac.RequireAdmin()).Post("/", h.Category.CreateCategory)
			})

			pr.Route("/invoices", func(ir chi.Router) {
				ir.Get("/", h.Invoice.ListInvoices)
				ir.Post("/", h.Invoice.CreateInvoice)
				ir.Get("/summary", h.Invoice.Summary)
				ir.With(rbac.RequireAdmin()).Get("/export", h.Invoice.ExportInvoices)
				ir.Get("/{id}", h.Invoice.GetInvoice)
				ir.Put("/{id}", h.Invoice.UpdateInvoice)
				ir.With(rbac.RequireReviewer()).Patch("/{id}/status", h.Invoice.UpdateInvoiceStatus)
			})

			pr.Route("/settings", func(sr chi.Router) {
				sr.Get("/payment-schedules", h.Settings.ListPaymentSchedules)

				sr.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Post("/payment-schedules", h.Settings.CreatePaymentSchedule)
					ar.Put("/payment-schedules/{id}", h.Settings.UpdatePaymentSchedule)
					ar.Get("/deadlines", h.Settings.ListDeadlineSettings)
					ar.Post("/deadlines", h.Settings.CreateDeadlineSetting)
					ar.Put("/deadlines/{id}", h.Settings.UpdateDeadlineSetting)
				})
			})

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.Notification.List)
				nr.Post("/", h.Notification.Create)
				nr.Post("/read-all", h.Notification.MarkAllAsRead)
				nr.Patch("/{id}/read", h.Notification.MarkAsRead)
			})
		})
	})
}
