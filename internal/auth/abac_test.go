package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Policy", func() {
	var (
		user    = Caller{UserID: "u-1", Role: RoleUser}
		other   = Caller{UserID: "u-2", Role: RoleUser}
		payroll = Caller{UserID: "u-3", Role: RolePayrollManager}
		admin   = Caller{UserID: "u-4", Role: RoleAdmin}
		owned   = Resource{OwnerID: "u-1"}
	)

	allowed := func(action Action, c Caller, res Resource) bool {
		return Authorize(action, c, res) == nil
	}

	ginkgo.It("rejects anonymous callers as unauthenticated", func() {
		err := Authorize(ActionCreateInvoice, Caller{}, Resource{})
		gomega.Expect(errors.Is(err, internal.ErrUnauthenticated)).To(gomega.BeTrue())
	})

	ginkgo.It("denies unknown actions", func() {
		err := Authorize(Action("invoice:delete"), admin, Resource{})
		gomega.Expect(errors.Is(err, internal.ErrForbidden)).To(gomega.BeTrue())
	})

	ginkgo.DescribeTable("decision matrix",
		func(action Action, c Caller, res Resource, expected bool) {
			gomega.Expect(allowed(action, c, res)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("anyone may create an invoice", ActionCreateInvoice, user, Resource{}, true),
		ginkgo.Entry("owner may view", ActionViewInvoice, user, owned, true),
		ginkgo.Entry("another user may not view", ActionViewInvoice, other, owned, false),
		ginkgo.Entry("payroll may view any invoice", ActionViewInvoice, payroll, owned, true),
		ginkgo.Entry("owner may edit", ActionEditInvoice, user, owned, true),
		ginkgo.Entry("admin may edit any invoice", ActionEditInvoice, admin, owned, true),
		ginkgo.Entry("payroll may not edit someone else's invoice", ActionEditInvoice, payroll, owned, false),
		ginkgo.Entry("owner may not change status", ActionChangeInvoiceStatus, user, owned, false),
		ginkgo.Entry("payroll may change status", ActionChangeInvoiceStatus, payroll, owned, true),
		ginkgo.Entry("admin may change status", ActionChangeInvoiceStatus, admin, owned, true),
		ginkgo.Entry("user may not list all invoices", ActionListAllInvoices, user, Resource{}, false),
		ginkgo.Entry("payroll may list all invoices", ActionListAllInvoices, payroll, Resource{}, true),
		ginkgo.Entry("payroll may not export", ActionExportInvoices, payroll, Resource{}, false),
		ginkgo.Entry("admin may export", ActionExportInvoices, admin, Resource{}, true),
		ginkgo.Entry("payroll may not manage settings", ActionManageSettings, payroll, Resource{}, false),
		ginkgo.Entry("admin may manage settings", ActionManageSettings, admin, Resource{}, true),
		ginkgo.Entry("anyone may view settings", ActionViewSettings, user, Resource{}, true),
		ginkgo.Entry("user may notify themselves", ActionCreateNotification, user, owned, true),
		ginkgo.Entry("user may not notify others", ActionCreateNotification, other, owned, false),
		ginkgo.Entry("admin may notify anyone", ActionCreateNotification, admin, owned, true),
		ginkgo.Entry("owner may mark read", ActionMarkNotification, user, owned, true),
		ginkgo.Entry("payroll may not mark others read", ActionMarkNotification, payroll, owned, false),
		ginkgo.Entry("only admin lists users", ActionListUsers, payroll, Resource{}, false),
		ginkgo.Entry("an empty owner never matches", ActionEditInvoice, Caller{UserID: "x", Role: RoleUser}, Resource{}, false),
	)
})

var _ = ginkgo.Describe("RBACAuthorization", func() {
	var (
		rbac *RBACAuthorization
		next http.Handler
	)

	ginkgo.BeforeEach(func() {
		rbac = NewRBACAuthorization(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
	})

	serve := func(mw func(http.Handler) http.Handler, c *Caller) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if c != nil {
			req = req.WithContext(ContextWithCaller(req.Context(), *c))
		}
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)
		return rec.Code
	}

	ginkgo.It("returns 401 without a caller", func() {
		gomega.Expect(serve(rbac.RequireAdmin(), nil)).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("returns 403 for the wrong role", func() {
		gomega.Expect(serve(rbac.RequireAdmin(), &Caller{UserID: "u", Role: RolePayrollManager})).To(gomega.Equal(http.StatusForbidden))
	})

	ginkgo.It("lets reviewers through", func() {
		gomega.Expect(serve(rbac.RequireReviewer(), &Caller{UserID: "u", Role: RolePayrollManager})).To(gomega.Equal(http.StatusTeapot))
		gomega.Expect(serve(rbac.RequireReviewer(), &Caller{UserID: "u", Role: RoleAdmin})).To(gomega.Equal(http.StatusTeapot))
		gomega.Expect(serve(rbac.RequireReviewer(), &Caller{UserID: "u", Role: RoleUser})).To(gomega.Equal(http.StatusForbidden))
	})
})
