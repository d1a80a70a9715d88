package category_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/invoice-management/internal/auth"
	"github.com/frahmantamala/invoice-management/internal/category"
	categoryPostgres "github.com/frahmantamala/invoice-management/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/category"
	"github.com/frahmantamala/invoice-management/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *category.Handler
		admin   = auth.Caller{UserID: "admin-1", Role: auth.RoleAdmin}
		user    = auth.Caller{UserID: "user-1", Role: auth.RoleUser}
	)

	asCaller := func(req *http.Request, c auth.Caller) *http.Request {
		return req.WithContext(auth.ContextWithCaller(req.Context(), c))
	}

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(&categoryDatamodel.Category{})).To(Succeed())

		repo := categoryPostgres.NewCategoryRepository(db)
		handler = category.NewHandler(transport.NewBaseHandler(slogger), category.NewService(repo, slogger))

		for _, c := range []*category.Category{category.NewCategory("Development"), category.NewCategory("Testing")} {
			Expect(db.Create(category.ToDataModel(c)).Error).To(Succeed())
		}
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("should handle GET /categories request successfully", func() {
		req := asCaller(httptest.NewRequest(http.MethodGet, "/categories", nil), user)
		w := httptest.NewRecorder()

		handler.GetCategories(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Categories).To(HaveLen(2))
		Expect(response.Categories[0].Name).To(Equal("Development"))
		Expect(response.Categories[0].ID).NotTo(BeEmpty())
	})

	It("should return 401 without a caller", func() {
		w := httptest.NewRecorder()
		handler.GetCategories(w, httptest.NewRequest(http.MethodGet, "/categories", nil))
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should create a category for an admin", func() {
		req := asCaller(httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"Design"}`)), admin)
		w := httptest.NewRecorder()

		handler.CreateCategory(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var created category.Category
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.Name).To(Equal("Design"))
	})

	It("should map a duplicate name to 409", func() {
		req := asCaller(httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"testing"}`)), admin)
		w := httptest.NewRecorder()

		handler.CreateCategory(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("DUPLICATE_CATEGORY_NAME"))
	})

	It("should reject a malformed body", func() {
		req := asCaller(httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{`)), admin)
		w := httptest.NewRecorder()

		handler.CreateCategory(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
