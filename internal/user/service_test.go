package user_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/auth"
	notificationDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/notification"
	userDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/user"
	"github.com/frahmantamala/invoice-management/internal/transport"
	"github.com/frahmantamala/invoice-management/internal/user"
	userPostgres "github.com/frahmantamala/invoice-management/internal/user/postgres"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

var _ = Describe("User Service", func() {
	var (
		db      *gorm.DB
		service *user.Service
		ctx     context.Context
		admin   = auth.Caller{UserID: "u-admin", Role: auth.RoleAdmin}
		payroll = auth.Caller{UserID: "u-payroll", Role: auth.RolePayrollManager}
		alice   = auth.Caller{UserID: "u-alice", Role: auth.RoleUser}
	)

	name := func(s string) *string { return &s }

	BeforeEach(func() {
		var err error
		ctx = context.Background()

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(&userDatamodel.User{}, &notificationDatamodel.Notification{})).To(Succeed())

		users := []userDatamodel.User{
			{ID: "u-admin", Email: "admin@example.com", Name: name("Ada Admin"), PasswordHash: "x", Role: string(auth.RoleAdmin)},
			{ID: "u-payroll", Email: "payroll@example.com", Name: name("Pat Payroll"), PasswordHash: "x", Role: string(auth.RolePayrollManager)},
			{ID: "u-alice", Email: "alice@example.com", Name: name("Alice"), PasswordHash: "x", Role: string(auth.RoleUser)},
			{ID: "u-zed", Email: "zed@example.com", PasswordHash: "x", Role: string(auth.RoleUser)},
		}
		Expect(db.Create(&users).Error).To(Succeed())

		now := time.Now().UTC()
		notes := []notificationDatamodel.Notification{
			{ID: "n-1", UserID: "u-alice", Message: "one", CreatedAt: now},
			{ID: "n-2", UserID: "u-alice", Message: "two", CreatedAt: now},
			{ID: "n-3", UserID: "u-alice", Message: "three", Read: true, CreatedAt: now},
			{ID: "n-4", UserID: "u-zed", Message: "four", Read: true, CreatedAt: now},
		}
		Expect(db.Create(&notes).Error).To(Succeed())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo := userPostgres.NewUserRepository(db, sqlx.NewDb(sqlDB, "sqlite3"))
		service = user.NewService(repo, slogger)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("GetCurrentUser", func() {
		It("returns the caller's own profile", func() {
			u, err := service.GetCurrentUser(ctx, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Email).To(Equal("alice@example.com"))
			Expect(u.Role).To(Equal(auth.RoleUser))
			Expect(u.DisplayName()).To(Equal("Alice"))
		})

		It("requires a caller", func() {
			_, err := service.GetCurrentUser(ctx, auth.Caller{})
			Expect(errors.Is(err, internal.ErrUnauthenticated)).To(BeTrue())
		})

		It("reports a caller whose row is gone", func() {
			_, err := service.GetCurrentUser(ctx, auth.Caller{UserID: "u-deleted", Role: auth.RoleUser})
			Expect(errors.Is(err, user.ErrUserNotFound)).To(BeTrue())
		})
	})

	Describe("ListEmployees", func() {
		It("lists every user with unread counts ordered by display name", func() {
			employees, err := service.ListEmployees(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(employees).To(HaveLen(4))

			ids := make([]string, len(employees))
			unread := map[string]int64{}
			for i, e := range employees {
				ids[i] = e.ID
				unread[e.ID] = e.UnreadCount
			}
			Expect(ids).To(Equal([]string{"u-admin", "u-alice", "u-payroll", "u-zed"}))
			Expect(unread).To(Equal(map[string]int64{"u-admin": 0, "u-alice": 2, "u-payroll": 0, "u-zed": 0}))
		})

		It("is restricted to admins", func() {
			for _, c := range []auth.Caller{payroll, alice} {
				_, err := service.ListEmployees(ctx, c)
				Expect(errors.Is(err, internal.ErrForbidden)).To(BeTrue())
			}
		})
	})

	Describe("Handler", func() {
		var handler *user.Handler

		BeforeEach(func() {
			handler = user.NewHandler(transport.NewBaseHandler(nil), service)
		})

		It("serves GET /users/me", func() {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req = req.WithContext(auth.ContextWithCaller(req.Context(), alice))
			w := httptest.NewRecorder()

			handler.GetCurrentUser(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"email":"alice@example.com"`))
			Expect(w.Body.String()).NotTo(ContainSubstring("password"))
		})

		It("maps a forbidden directory read to 403", func() {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			req = req.WithContext(auth.ContextWithCaller(req.Context(), payroll))
			w := httptest.NewRecorder()

			handler.ListEmployees(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})
})
